package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"floattrack/pkg/core/extract"
)

// ActionRepo handles the corporate_actions table. Append-only: every
// extraction that reports an action inserts a new row, with no
// deduplication against prior rows (re-parses are gated by the filing
// processed flag instead).
type ActionRepo struct{}

func NewActionRepo() *ActionRepo {
	return &ActionRepo{}
}

// Insert appends one detected event.
func (r *ActionRepo) Insert(ctx context.Context, tickerID string, action extract.CorporateAction, source, filingURL string) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	actionDate, err := time.Parse("2006-01-02", action.ActionDate)
	if err != nil {
		return fmt.Errorf("invalid action date %q: %w", action.ActionDate, err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO corporate_actions
		   (id, ticker_id, action_type, action_date, description,
		    shares_before, shares_after, split_ratio, impact_description, source, filing_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.New().String(), tickerID, action.ActionType, actionDate, action.Description,
		action.SharesBefore, action.SharesAfter, action.SplitRatio, action.ImpactDescription,
		source, filingURL)
	if err != nil {
		return fmt.Errorf("failed to insert corporate action: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"floattrack/pkg/core/extract"
	"floattrack/pkg/models"
)

// FilingRepo handles the sec_filings table.
type FilingRepo struct{}

func NewFilingRepo() *FilingRepo {
	return &FilingRepo{}
}

// UpsertMany inserts filing descriptors keyed by accession number. An
// existing row is left untouched so a re-sync never resets the processed
// flag. Returns how many rows were newly inserted.
func (r *FilingRepo) UpsertMany(ctx context.Context, tickerID string, descriptors []models.FilingDescriptor) (int, error) {
	pool := GetPool()
	if pool == nil {
		return 0, fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO sec_filings (id, ticker_id, filing_type, filing_date, accession_number, filing_url, processed)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		ON CONFLICT (accession_number) DO NOTHING`

	inserted := 0
	for _, d := range descriptors {
		tag, err := pool.Exec(ctx, query,
			uuid.New().String(), tickerID, d.FilingType, d.FilingDate, d.AccessionNumber, d.URL)
		if err != nil {
			return inserted, fmt.Errorf("failed to upsert filing %s: %w", d.AccessionNumber, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// Unprocessed returns filings awaiting extraction, newest first. limit <= 0
// returns all of them.
func (r *FilingRepo) Unprocessed(ctx context.Context, tickerID string, limit int) ([]models.Filing, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT id, ticker_id, filing_type, filing_date, accession_number, filing_url, processed
	          FROM sec_filings
	          WHERE ticker_id = $1 AND processed = false
	          ORDER BY filing_date DESC`
	args := []interface{}{tickerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed filings: %w", err)
	}
	defer rows.Close()

	var filings []models.Filing
	for rows.Next() {
		var f models.Filing
		if err := rows.Scan(&f.ID, &f.TickerID, &f.FilingType, &f.FilingDate, &f.AccessionNumber, &f.URL, &f.Processed); err != nil {
			return nil, fmt.Errorf("failed to scan filing row: %w", err)
		}
		filings = append(filings, f)
	}
	return filings, rows.Err()
}

// MarkProcessed flips the processed flag and stores the merged extraction
// record for audit, even when every field is null.
func (r *FilingRepo) MarkProcessed(ctx context.Context, filingID string, parsed extract.Record) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	payload, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("failed to marshal parsed data: %w", err)
	}

	_, err = pool.Exec(ctx,
		`UPDATE sec_filings SET processed = true, parsed_data = $2 WHERE id = $1`,
		filingID, payload)
	if err != nil {
		return fmt.Errorf("failed to mark filing processed: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"floattrack/pkg/models"
)

// TickerRepo handles the tickers table. Tickers are created on first
// reference by symbol and never deleted.
type TickerRepo struct{}

func NewTickerRepo() *TickerRepo {
	return &TickerRepo{}
}

// FindBySymbol looks up a ticker by its upper-cased symbol. A missing row
// is reported via ok=false, not an error.
func (r *TickerRepo) FindBySymbol(ctx context.Context, symbol string) (models.Ticker, bool, error) {
	pool := GetPool()
	if pool == nil {
		return models.Ticker{}, false, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT id, symbol, company_name, exchange, sector, last_updated
	          FROM tickers WHERE symbol = $1`

	var t models.Ticker
	err := pool.QueryRow(ctx, query, strings.ToUpper(symbol)).Scan(
		&t.ID, &t.Symbol, &t.CompanyName, &t.Exchange, &t.Sector, &t.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticker{}, false, nil
		}
		return models.Ticker{}, false, fmt.Errorf("ticker lookup failed: %w", err)
	}
	return t, true, nil
}

// GetOrCreate resolves a symbol to a ticker row, inserting one on first
// reference and bumping last_updated on every call.
func (r *TickerRepo) GetOrCreate(ctx context.Context, symbol string) (models.Ticker, error) {
	t, ok, err := r.FindBySymbol(ctx, symbol)
	if err != nil {
		return models.Ticker{}, err
	}
	if ok {
		_, err = GetPool().Exec(ctx,
			`UPDATE tickers SET last_updated = $2 WHERE id = $1`, t.ID, time.Now())
		if err != nil {
			return models.Ticker{}, fmt.Errorf("failed to touch ticker: %w", err)
		}
		return t, nil
	}

	t = models.Ticker{
		ID:          uuid.New().String(),
		Symbol:      strings.ToUpper(symbol),
		LastUpdated: time.Now(),
	}
	_, err = GetPool().Exec(ctx,
		`INSERT INTO tickers (id, symbol, last_updated) VALUES ($1, $2, $3)
		 ON CONFLICT (symbol) DO NOTHING`,
		t.ID, t.Symbol, t.LastUpdated)
	if err != nil {
		return models.Ticker{}, fmt.Errorf("failed to create ticker: %w", err)
	}

	// Re-read so a concurrent creator's row wins over our candidate id.
	t, _, err = r.FindBySymbol(ctx, symbol)
	return t, err
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"floattrack/pkg/core/reconcile"
	"floattrack/pkg/models"
)

// HistoricalRepo handles the historical_data table: at most one row per
// (ticker, date), written with merge semantics so no writer clobbers
// columns it does not own.
type HistoricalRepo struct{}

func NewHistoricalRepo() *HistoricalRepo {
	return &HistoricalRepo{}
}

// RecentPrices returns up to limit price observations, newest first,
// restricted to rows where price is present.
func (r *HistoricalRepo) RecentPrices(ctx context.Context, tickerID string, limit int) ([]reconcile.PricePoint, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx,
		`SELECT date, price FROM historical_data
		 WHERE ticker_id = $1 AND price IS NOT NULL
		 ORDER BY date DESC LIMIT $2`,
		tickerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []reconcile.PricePoint
	for rows.Next() {
		var p reconcile.PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// PriceOn returns the price stored for the exact date, or nil when the
// row is missing or its price is null.
func (r *HistoricalRepo) PriceOn(ctx context.Context, tickerID string, date time.Time) (*float64, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var price *float64
	err := pool.QueryRow(ctx,
		`SELECT price FROM historical_data WHERE ticker_id = $1 AND date = $2`,
		tickerID, date).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query exact-date price: %w", err)
	}
	return price, nil
}

// UpsertShareData applies the filing-derived columns to the (ticker, date)
// row. Update-else-insert, deliberately not insert-on-conflict: an update
// touching only these four columns can never null out a price populated by
// a market-data adapter.
func (r *HistoricalRepo) UpsertShareData(ctx context.Context, tickerID string, date time.Time, data models.ShareData) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	tag, err := pool.Exec(ctx,
		`UPDATE historical_data
		 SET outstanding_shares = $3, float_shares = $4, market_cap = $5, source = $6
		 WHERE ticker_id = $1 AND date = $2`,
		tickerID, date, data.OutstandingShares, data.FloatShares, data.MarketCap, data.Source)
	if err != nil {
		return fmt.Errorf("failed to update historical data: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO historical_data (ticker_id, date, outstanding_shares, float_shares, market_cap, source)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tickerID, date, data.OutstandingShares, data.FloatShares, data.MarketCap, data.Source)
	if err != nil {
		return fmt.Errorf("failed to insert historical data: %w", err)
	}
	return nil
}

// UpsertMarketBar applies a market-data observation with the same
// update-else-insert discipline, touching only the columns the source
// actually provided.
func (r *HistoricalRepo) UpsertMarketBar(ctx context.Context, tickerID string, bar models.MarketBar) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	sets := []string{"source = $3"}
	args := []interface{}{tickerID, bar.Date, bar.Source}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if bar.Price != nil {
		add("price", *bar.Price)
	}
	if bar.FloatShares != nil {
		add("float_shares", *bar.FloatShares)
	}
	if bar.OutstandingShares != nil {
		add("outstanding_shares", *bar.OutstandingShares)
	}
	if bar.MarketCap != nil {
		add("market_cap", *bar.MarketCap)
	}

	query := fmt.Sprintf(
		`UPDATE historical_data SET %s WHERE ticker_id = $1 AND date = $2`,
		strings.Join(sets, ", "))
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update market bar: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO historical_data (ticker_id, date, price, float_shares, outstanding_shares, market_cap, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tickerID, bar.Date, bar.Price, bar.FloatShares, bar.OutstandingShares, bar.MarketCap, bar.Source)
	if err != nil {
		return fmt.Errorf("failed to insert market bar: %w", err)
	}
	return nil
}

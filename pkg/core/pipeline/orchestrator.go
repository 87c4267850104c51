// Package pipeline drives the filing extraction & reconciliation engine:
// for each unprocessed filing it normalizes the document, runs the pattern
// and completion extractors, merges their records, reconciles units,
// upserts historical data and marks the filing processed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"floattrack/pkg/core/document"
	"floattrack/pkg/core/extract"
	"floattrack/pkg/core/reconcile"
	"floattrack/pkg/models"
)

// ErrTickerNotFound fails the whole invocation before any filing is
// touched; every other error kind is confined to a single filing.
var ErrTickerNotFound = errors.New("ticker not found")

// TickerStore resolves tracked entities by symbol.
type TickerStore interface {
	// FindBySymbol returns ok=false (not an error) when the symbol is
	// untracked.
	FindBySymbol(ctx context.Context, symbol string) (models.Ticker, bool, error)
}

// FilingStore lists unprocessed filings and records extraction outcomes.
type FilingStore interface {
	Unprocessed(ctx context.Context, tickerID string, limit int) ([]models.Filing, error)
	// MarkProcessed sets processed=true and stores the merged record for
	// audit, exactly once per filing.
	MarkProcessed(ctx context.Context, filingID string, parsed extract.Record) error
}

// HistoryStore reads price history and upserts filing-derived share data.
type HistoryStore interface {
	// RecentPrices returns up to limit rows with non-null price,
	// reverse-chronological.
	RecentPrices(ctx context.Context, tickerID string, limit int) ([]reconcile.PricePoint, error)
	// PriceOn returns the price for the exact date, or nil when absent.
	PriceOn(ctx context.Context, tickerID string, date time.Time) (*float64, error)
	// UpsertShareData updates the (ticker, date) row in place, inserting
	// only when no row exists, and never touches columns outside data.
	UpsertShareData(ctx context.Context, tickerID string, date time.Time, data models.ShareData) error
}

// ActionStore appends detected corporate-action events.
type ActionStore interface {
	Insert(ctx context.Context, tickerID string, action extract.CorporateAction, source, filingURL string) error
}

// DocumentFetcher retrieves a filing document by URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// AIExtractor is the completion-based extraction strategy.
type AIExtractor interface {
	Extract(ctx context.Context, filingType, excerpt string) (*extract.Record, error)
}

// Summary is the aggregated outcome of one invocation. Callers never see
// per-filing errors, only counter deltas.
type Summary struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
}

// Pipeline wires the collaborator capabilities around the extractors.
type Pipeline struct {
	tickers   TickerStore
	filings   FilingStore
	history   HistoryStore
	actions   ActionStore
	fetcher   DocumentFetcher
	ai        AIExtractor
	heuristic extract.HeuristicExtractor
}

// New creates a pipeline. ai may be nil; extraction then runs on pattern
// rules alone and every filing tallies one service error.
func New(tickers TickerStore, filings FilingStore, history HistoryStore, actions ActionStore, fetcher DocumentFetcher, ai AIExtractor) *Pipeline {
	return &Pipeline{
		tickers: tickers,
		filings: filings,
		history: history,
		actions: actions,
		fetcher: fetcher,
		ai:      ai,
	}
}

// ProcessFilings attempts every unprocessed filing for the symbol, one at
// a time, up to limit (limit <= 0 means all). Each filing is attempted at
// most once per run: recoverable failures still mark it processed, only a
// panic leaves it eligible for a future run.
func (p *Pipeline) ProcessFilings(ctx context.Context, symbol string, limit int) (Summary, error) {
	ticker, ok, err := p.tickers.FindBySymbol(ctx, symbol)
	if err != nil {
		return Summary{}, fmt.Errorf("ticker lookup failed: %w", err)
	}
	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	filings, err := p.filings.Unprocessed(ctx, ticker.ID, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list unprocessed filings: %w", err)
	}

	summary := Summary{Total: len(filings)}
	if len(filings) == 0 {
		log.Printf("[pipeline] no unprocessed filings for %s", ticker.Symbol)
		return summary, nil
	}

	log.Printf("[pipeline] processing %d filings for %s", len(filings), ticker.Symbol)

	for _, filing := range filings {
		marked, hadError := p.attempt(ctx, ticker.ID, filing)
		if marked {
			summary.Processed++
		}
		if hadError {
			summary.Errors++
		}
	}

	return summary, nil
}

// attempt runs one filing inside the per-filing failure boundary. A panic
// is the defined fatal path: the filing stays unprocessed for a future
// run and the loop continues.
func (p *Pipeline) attempt(ctx context.Context, tickerID string, filing models.Filing) (marked, hadError bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[pipeline] fatal failure on filing %s: %v", filing.AccessionNumber, r)
			marked = false
			hadError = true
		}
	}()
	return p.processOne(ctx, tickerID, filing)
}

func (p *Pipeline) processOne(ctx context.Context, tickerID string, filing models.Filing) (marked, hadError bool) {
	log.Printf("[pipeline] processing %s filed %s", filing.FilingType, filing.FilingDate.Format("2006-01-02"))

	text := ""
	if filing.URL != "" {
		raw, err := p.fetcher.Fetch(ctx, filing.URL)
		if err != nil {
			// Document unreachable: extraction proceeds on empty
			// text and yields all-null fields.
			log.Printf("[pipeline] fetch failed for %s: %v", filing.URL, err)
			hadError = true
		} else {
			text = document.Normalize(raw)
		}
	}
	excerpt := document.SelectSections(text)

	// The completion call depends only on the excerpt, so it overlaps
	// with the pattern pass over the full text. Filings themselves stay
	// strictly sequential.
	var (
		aiRecord *extract.Record
		aiErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if p.ai == nil {
			aiErr = &extract.ServiceError{Err: errors.New("no completion provider configured")}
			return nil
		}
		aiRecord, aiErr = p.ai.Extract(gctx, filing.FilingType, excerpt)
		return nil
	})
	heur := p.heuristic.Extract(text)
	_ = g.Wait()

	if aiErr != nil {
		log.Printf("[pipeline] AI extraction failed for %s: %v", filing.AccessionNumber, aiErr)
		hadError = true
		aiRecord = nil
	}
	if heur.SplitDetected {
		log.Printf("[pipeline] split language detected (%s) in %s", heur.SplitRatio, filing.AccessionNumber)
	}

	merged := extract.Merge([]extract.Sourced{
		{Source: "ai", Precedence: extract.PrecedenceAI, Record: aiRecord},
		{Source: "heuristic", Precedence: extract.PrecedenceHeuristic, Record: &heur.Record},
	})

	if err := p.reconcileFloat(ctx, tickerID, filing, &merged); err != nil {
		log.Printf("[pipeline] price lookup failed for %s: %v", filing.AccessionNumber, err)
		hadError = true
	}

	if p.persistShareData(ctx, tickerID, filing, merged) {
		hadError = true
	}
	if p.persistActions(ctx, tickerID, filing, merged) {
		hadError = true
	}

	if err := p.filings.MarkProcessed(ctx, filing.ID, merged); err != nil {
		log.Printf("[pipeline] failed to mark filing %s processed: %v", filing.AccessionNumber, err)
		return false, true
	}
	return true, hadError
}

// reconcileFloat converts a dollar-denominated float into shares when the
// share count is otherwise unknown. An unresolved conversion is not an
// error; only the price lookup itself can fail.
func (p *Pipeline) reconcileFloat(ctx context.Context, tickerID string, filing models.Filing, merged *extract.Record) error {
	if merged.PublicFloatUSD == nil || merged.FloatShares != nil {
		return nil
	}

	points, err := p.history.RecentPrices(ctx, tickerID, reconcile.MaxPriceLookback)
	if err != nil {
		return err
	}

	target := merged.FloatDate()
	if target.IsZero() {
		target = filing.FilingDate
	}
	merged.FloatShares = reconcile.SharesFromFloatUSD(*merged.PublicFloatUSD, points, target)
	return nil
}

// persistShareData writes the historical row for the filing date. Skipped
// entirely when the extraction recovered no share counts. Returns true
// when a write failed.
func (p *Pipeline) persistShareData(ctx context.Context, tickerID string, filing models.Filing, merged extract.Record) bool {
	if merged.OutstandingShares == nil && merged.FloatShares == nil {
		return false
	}

	failed := false
	var marketCap *float64
	if merged.OutstandingShares != nil {
		// Exact-date only: market cap is meaningful only when price
		// and share count are contemporaneous.
		price, err := p.history.PriceOn(ctx, tickerID, filing.FilingDate)
		if err != nil {
			log.Printf("[pipeline] exact-date price lookup failed: %v", err)
			failed = true
		} else {
			marketCap = reconcile.MarketCap(*merged.OutstandingShares, price)
		}
	}

	data := models.ShareData{
		OutstandingShares: merged.OutstandingShares,
		FloatShares:       merged.FloatShares,
		MarketCap:         marketCap,
		Source:            "SEC " + filing.FilingType,
	}
	if err := p.history.UpsertShareData(ctx, tickerID, filing.FilingDate, data); err != nil {
		log.Printf("[pipeline] historical data write failed for %s: %v", filing.FilingDate.Format("2006-01-02"), err)
		failed = true
	}
	return failed
}

// persistActions inserts one row per merged action. A failed insert never
// blocks the remaining ones. Returns true when any insert failed.
func (p *Pipeline) persistActions(ctx context.Context, tickerID string, filing models.Filing, merged extract.Record) bool {
	source := "SEC " + filing.FilingType
	failed := false
	for _, action := range merged.CorporateActions {
		if err := p.actions.Insert(ctx, tickerID, action, source, filing.URL); err != nil {
			log.Printf("[pipeline] corporate action insert failed (%s %s): %v", action.ActionType, action.ActionDate, err)
			failed = true
		}
	}
	return failed
}

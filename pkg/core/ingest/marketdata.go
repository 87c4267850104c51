package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"floattrack/pkg/models"
)

// PriceSeriesSource is one market-data provider. Sources degrade to an
// empty series when unconfigured so the syncer can merge whatever is
// available.
type PriceSeriesSource interface {
	Name() string
	Series(ctx context.Context, symbol string) ([]models.MarketBar, error)
}

// HistorySink persists merged market bars.
type HistorySink interface {
	UpsertMarketBar(ctx context.Context, tickerID string, bar models.MarketBar) error
}

// =============================================================================
// FINNHUB
// =============================================================================

// FinnhubSource fetches the company profile (for share counts) plus one
// year of daily candles.
type FinnhubSource struct {
	APIKey     string
	httpClient *http.Client
}

func NewFinnhubSource(apiKey string) *FinnhubSource {
	return &FinnhubSource{
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *FinnhubSource) Name() string { return "finnhub" }

type finnhubProfile struct {
	ShareOutstanding float64 `json:"shareOutstanding"` // reported in millions
}

type finnhubCandles struct {
	Close      []float64 `json:"c"`
	Timestamps []int64   `json:"t"`
	Status     string    `json:"s"`
}

func (s *FinnhubSource) Series(ctx context.Context, symbol string) ([]models.MarketBar, error) {
	if s.APIKey == "" {
		return nil, nil
	}

	var profile finnhubProfile
	profileURL := fmt.Sprintf("https://finnhub.io/api/v1/stock/profile2?symbol=%s&token=%s",
		url.QueryEscape(symbol), url.QueryEscape(s.APIKey))
	if err := getJSON(ctx, s.httpClient, profileURL, &profile); err != nil {
		return nil, fmt.Errorf("finnhub profile: %w", err)
	}

	now := time.Now().Unix()
	oneYearAgo := now - 365*24*60*60
	candleURL := fmt.Sprintf("https://finnhub.io/api/v1/stock/candle?symbol=%s&resolution=D&from=%d&to=%d&token=%s",
		url.QueryEscape(symbol), oneYearAgo, now, url.QueryEscape(s.APIKey))

	var candles finnhubCandles
	if err := getJSON(ctx, s.httpClient, candleURL, &candles); err != nil {
		return nil, fmt.Errorf("finnhub candles: %w", err)
	}

	var shares *int64
	if profile.ShareOutstanding > 0 {
		n := int64(math.Round(profile.ShareOutstanding * 1e6))
		shares = &n
	}

	bars := make([]models.MarketBar, 0, len(candles.Close))
	for i := range candles.Close {
		if i >= len(candles.Timestamps) {
			break
		}
		price := candles.Close[i]
		day := time.Unix(candles.Timestamps[i], 0).UTC().Truncate(24 * time.Hour)
		bar := models.MarketBar{
			Date:              day,
			Price:             &price,
			FloatShares:       shares,
			OutstandingShares: shares,
			Source:            s.Name(),
		}
		if shares != nil {
			mc := float64(*shares) * price
			bar.MarketCap = &mc
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// =============================================================================
// ALPHAVANTAGE
// =============================================================================

/// AlphaVantageSource fetches the daily close series. Price-only: its bars
// never carry share counts.
type AlphaVantageSource struct {
	APIKey     string
	httpClient *http.Client
}

func NewAlphaVantageSource(apiKey string) *AlphaVantageSource {
	return &AlphaVantageSource{
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

type alphaVantageDaily struct {
	Series map[string]map[string]string `json:"Time Series (Daily)"`
}

func (s *AlphaVantageSource) Series(ctx context.Context, symbol string) ([]models.MarketBar, error) {
	if s.APIKey == "" {
		return nil, nil
	}

	seriesURL := fmt.Sprintf("https://www.alphavantage.co/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s",
		url.QueryEscape(symbol), url.QueryEscape(s.APIKey))

	var daily alphaVantageDaily
	if err := getJSON(ctx, s.httpClient, seriesURL, &daily); err != nil {
		return nil, fmt.Errorf("alphavantage daily: %w", err)
	}

	var bars []models.MarketBar
	for dateStr, values := range daily.Series {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(values["4. close"], 64)
		if err != nil {
			continue
		}
		bars = append(bars, models.MarketBar{
			Date:   day,
			Price:  &price,
			Source: s.Name(),
		})
	}
	return bars, nil
}

// =============================================================================
// SYNCER
// =============================================================================

// MarketDataSyncer fetches all configured sources in parallel, merges
// their series per date and upserts the result.
type MarketDataSyncer struct {
	// sources in priority order: on a date collision the earlier
	// source's bar wins.
	sources []PriceSeriesSource
	tickers TickerDirectory
	history HistorySink
}

func NewMarketDataSyncer(tickers TickerDirectory, history HistorySink, sources ...PriceSeriesSource) *MarketDataSyncer {
	return &MarketDataSyncer{sources: sources, tickers: tickers, history: history}
}

// Sync pulls and stores the merged series for a symbol, returning the
// number of data points written.
func (s *MarketDataSyncer) Sync(ctx context.Context, symbol string) (int, error) {
	ticker, err := s.tickers.GetOrCreate(ctx, symbol)
	if err != nil {
		return 0, err
	}

	series := make([][]models.MarketBar, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, source := range s.sources {
		g.Go(func() error {
			bars, err := source.Series(gctx, symbol)
			if err != nil {
				// One provider failing must not sink the other.
				log.Printf("[marketdata] %s fetch failed for %s: %v", source.Name(), symbol, err)
				return nil
			}
			series[i] = bars
			return nil
		})
	}
	_ = g.Wait()

	merged := MergeSeries(series...)
	written := 0
	for _, bar := range merged {
		if err := s.history.UpsertMarketBar(ctx, ticker.ID, bar); err != nil {
			log.Printf("[marketdata] upsert failed for %s %s: %v", symbol, bar.Date.Format("2006-01-02"), err)
			continue
		}
		written++
	}
	return written, nil
}

// MergeSeries deduplicates bars by date. Earlier series take priority, so
// the caller lists richer sources first.
func MergeSeries(series ...[]models.MarketBar) []models.MarketBar {
	byDate := make(map[string]models.MarketBar)
	for _, bars := range series {
		for _, bar := range bars {
			key := bar.Date.Format("2006-01-02")
			if _, exists := byDate[key]; !exists {
				byDate[key] = bar
			}
		}
	}

	merged := make([]models.MarketBar, 0, len(byDate))
	for _, bar := range byDate {
		merged = append(merged, bar)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

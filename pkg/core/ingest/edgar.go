// Package ingest provides the collaborator adapters: SEC EDGAR filing
// listing, rate-limited document fetching and market-data price series.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"floattrack/pkg/models"
)

const (
	secSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	secTickersURL     = "https://www.sec.gov/files/company_tickers.json"
	secArchiveURL     = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"

	// UserAgent is required by SEC fair-access guidelines.
	UserAgent = "FloatTrack/1.0 (contact@example.com)"

	// SEC allows at most 10 requests per second.
	secRequestsPerSecond = 10
)

// filingForms are the form types relevant to share structure.
var filingForms = map[string]bool{
	"10-K": true, "10-Q": true, "8-K": true,
	"S-1": true, "S-3": true,
	"424B1": true, "424B2": true, "424B3": true, "424B4": true, "424B5": true,
}

// secCompanyInfo is the submissions API response. Filing attributes come
// back as parallel arrays.
type secCompanyInfo struct {
	CIK     json.Number `json:"cik"`
	Name    string      `json:"name"`
	Filings struct {
		Recent secRecentFilings `json:"recent"`
	} `json:"filings"`
}

type secRecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// EDGARClient talks to the SEC EDGAR APIs under a shared rate limiter.
type EDGARClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewEDGARClient() *EDGARClient {
	return &EDGARClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(secRequestsPerSecond), secRequestsPerSecond),
	}
}

func (c *EDGARClient) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SEC API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SEC API returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SEC response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse SEC response: %w", err)
	}
	return nil
}

// LookupCIK resolves a ticker symbol to its zero-padded 10-digit CIK via
// the SEC company_tickers mapping.
func (c *EDGARClient) LookupCIK(ctx context.Context, symbol string) (string, error) {
	var mapping map[string]struct {
		CIK    int64  `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := c.getJSON(ctx, secTickersURL, &mapping); err != nil {
		return "", err
	}

	upper := strings.ToUpper(symbol)
	for _, entry := range mapping {
		if entry.Ticker == upper {
			return fmt.Sprintf("%010d", entry.CIK), nil
		}
	}
	return "", fmt.Errorf("no CIK found for ticker %s", symbol)
}

// ListFilings returns share-structure-relevant filing descriptors for the
// CIK, newest first, denormalized from the submissions parallel arrays.
func (c *EDGARClient) ListFilings(ctx context.Context, cik string) ([]models.FilingDescriptor, error) {
	cik = fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))

	var info secCompanyInfo
	if err := c.getJSON(ctx, fmt.Sprintf(secSubmissionsURL, cik), &info); err != nil {
		return nil, err
	}

	recent := info.Filings.Recent
	cikTrimmed := strings.TrimLeft(cik, "0")

	var descriptors []models.FilingDescriptor
	for i := range recent.AccessionNumber {
		if !filingForms[recent.Form[i]] {
			continue
		}
		filingDate, err := time.Parse("2006-01-02", recent.FilingDate[i])
		if err != nil {
			continue
		}

		accessionNoDashes := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		descriptors = append(descriptors, models.FilingDescriptor{
			FilingType:      recent.Form[i],
			FilingDate:      filingDate,
			AccessionNumber: recent.AccessionNumber[i],
			URL:             fmt.Sprintf(secArchiveURL, cikTrimmed, accessionNoDashes, recent.PrimaryDocument[i]),
		})
	}
	return descriptors, nil
}

// TickerDirectory resolves symbols to ticker rows, creating them on first
// reference.
type TickerDirectory interface {
	GetOrCreate(ctx context.Context, symbol string) (models.Ticker, error)
}

// FilingCatalog stores filing descriptors keyed by accession number.
type FilingCatalog interface {
	UpsertMany(ctx context.Context, tickerID string, descriptors []models.FilingDescriptor) (int, error)
}

// FilingSyncer pulls the EDGAR filing list for a symbol into the catalog.
type FilingSyncer struct {
	client  *EDGARClient
	tickers TickerDirectory
	catalog FilingCatalog
}

func NewFilingSyncer(client *EDGARClient, tickers TickerDirectory, catalog FilingCatalog) *FilingSyncer {
	return &FilingSyncer{client: client, tickers: tickers, catalog: catalog}
}

// Sync lists filings for the symbol and upserts them as unprocessed rows.
// Returns how many descriptors were seen and how many were new.
func (s *FilingSyncer) Sync(ctx context.Context, symbol string) (total, inserted int, err error) {
	ticker, err := s.tickers.GetOrCreate(ctx, symbol)
	if err != nil {
		return 0, 0, err
	}

	cik, err := s.client.LookupCIK(ctx, symbol)
	if err != nil {
		return 0, 0, err
	}

	descriptors, err := s.client.ListFilings(ctx, cik)
	if err != nil {
		return 0, 0, err
	}

	inserted, err = s.catalog.UpsertMany(ctx, ticker.ID, descriptors)
	return len(descriptors), inserted, err
}

// Package models holds the row types shared between the store, the
// ingestion adapters and the processing pipeline.
package models

import "time"

// Ticker is a tracked entity. Created on first reference by symbol and
// never deleted.
type Ticker struct {
	ID          string
	Symbol      string
	CompanyName *string
	Exchange    *string
	Sector      *string
	LastUpdated time.Time
}

// Filing is one regulatory document reference from the sec_filings table.
type Filing struct {
	ID              string
	TickerID        string
	FilingType      string // "10-K", "10-Q", "8-K", ...
	FilingDate      time.Time
	AccessionNumber string
	URL             string
	Processed       bool
}

// FilingDescriptor is the listing-collaborator shape: what the EDGAR sync
// knows about a filing before it has a database row.
type FilingDescriptor struct {
	FilingType      string
	FilingDate      time.Time
	AccessionNumber string
	URL             string
}

// ShareData carries the filing-derived columns of one historical_data row.
// Nil fields are written as NULL; columns outside this set (notably price)
// are never touched by a filing-derived write.
type ShareData struct {
	OutstandingShares *int64
	FloatShares       *int64
	MarketCap         *float64
	Source            string
}

// MarketBar is one per-date observation from a market-data provider.
// Nil fields are omitted from the write so a price-only source never
// clobbers share counts recovered from filings.
type MarketBar struct {
	Date              time.Time
	Price             *float64
	FloatShares       *int64
	OutstandingShares *int64
	MarketCap         *float64
	Source            string
}

// Package reconcile converts between dollar-denominated and
// share-denominated float using nearest-date price lookups.
package reconcile

import (
	"math"
	"time"
)

// PricePoint is one dated price observation. Callers supply points in
// reverse-chronological order, which fixes the tie-break below.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// MaxPriceLookback caps how many recent observations a reconciliation
// considers.
const MaxPriceLookback = 100

// NearestPrice selects the observation whose date minimizes absolute day
// distance to target. A strictly smaller distance is required to displace
// the current best, so with reverse-chronological input the more recent of
// two equidistant observations wins.
func NearestPrice(points []PricePoint, target time.Time) (PricePoint, bool) {
	if len(points) == 0 {
		return PricePoint{}, false
	}

	best := points[0]
	bestDist := dayDistance(points[0].Date, target)
	for _, p := range points[1:] {
		if d := dayDistance(p.Date, target); d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, true
}

// SharesFromFloatUSD converts a dollar-denominated public float into a
// share count using the nearest available price. Returns nil when no
// price history exists or the nearest price is not strictly positive;
// that is an unresolved field, not an error.
func SharesFromFloatUSD(usd float64, points []PricePoint, target time.Time) *int64 {
	nearest, ok := NearestPrice(points, target)
	if !ok || nearest.Price <= 0 {
		return nil
	}
	shares := int64(math.Round(usd / nearest.Price))
	return &shares
}

// MarketCap derives market capitalization from a contemporaneous price.
// Exact-date only: the caller passes nil when no price exists for the
// filing date, and the result stays nil.
func MarketCap(outstandingShares int64, exactPrice *float64) *float64 {
	if exactPrice == nil {
		return nil
	}
	mc := float64(outstandingShares) * *exactPrice
	return &mc
}

func dayDistance(a, b time.Time) int {
	d := a.Truncate(24*time.Hour).Sub(b.Truncate(24*time.Hour)) / (24 * time.Hour)
	if d < 0 {
		d = -d
	}
	return int(d)
}

package reconcile

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNearestPricePicksClosestDate(t *testing.T) {
	target := day("2024-03-01")
	points := []PricePoint{
		{Date: day("2024-02-28"), Price: 3.00}, // 2 days away
		{Date: day("2024-02-20"), Price: 2.00}, // 10 days away
	}

	nearest, ok := NearestPrice(points, target)
	if !ok {
		t.Fatal("expected a nearest price")
	}
	if nearest.Price != 3.00 {
		t.Errorf("expected the 2-day-away observation, got %+v", nearest)
	}
}

func TestNearestPriceTieBreakMoreRecentWins(t *testing.T) {
	target := day("2024-03-01")
	// Equidistant: 2 days after and 2 days before. Reverse-chronological
	// input means the more recent observation is scanned first and a tie
	// never displaces it.
	points := []PricePoint{
		{Date: day("2024-03-03"), Price: 5.00},
		{Date: day("2024-02-28"), Price: 7.00},
	}

	nearest, ok := NearestPrice(points, target)
	if !ok {
		t.Fatal("expected a nearest price")
	}
	if nearest.Price != 5.00 {
		t.Errorf("tie must resolve to the more recent date, got %+v", nearest)
	}
}

func TestSharesFromFloatUSD(t *testing.T) {
	target := day("2024-03-01")
	points := []PricePoint{
		{Date: day("2024-02-28"), Price: 3.00},
		{Date: day("2024-02-20"), Price: 2.00},
	}

	shares := SharesFromFloatUSD(6000000, points, target)
	if shares == nil {
		t.Fatal("expected a share count")
	}
	if *shares != 2000000 {
		t.Errorf("expected 2000000 shares, got %d", *shares)
	}
}

func TestSharesFromFloatUSDNoHistory(t *testing.T) {
	if got := SharesFromFloatUSD(6000000, nil, day("2024-03-01")); got != nil {
		t.Errorf("expected nil without price history, got %d", *got)
	}
}

func TestSharesFromFloatUSDNonPositivePrice(t *testing.T) {
	points := []PricePoint{{Date: day("2024-02-28"), Price: 0}}
	if got := SharesFromFloatUSD(6000000, points, day("2024-03-01")); got != nil {
		t.Errorf("expected nil for zero price, got %d", *got)
	}
}

func TestSharesFromFloatUSDRounds(t *testing.T) {
	points := []PricePoint{{Date: day("2024-02-28"), Price: 3.00}}
	shares := SharesFromFloatUSD(1000000, points, day("2024-03-01"))
	if shares == nil {
		t.Fatal("expected a share count")
	}
	if *shares != 333333 {
		t.Errorf("expected rounded 333333, got %d", *shares)
	}
}

func TestMarketCapExactDateOnly(t *testing.T) {
	price := 2.50
	mc := MarketCap(48000000, &price)
	if mc == nil || *mc != 120000000 {
		t.Errorf("expected 120000000, got %v", mc)
	}

	if MarketCap(48000000, nil) != nil {
		t.Error("no exact-date price must yield nil market cap")
	}
}

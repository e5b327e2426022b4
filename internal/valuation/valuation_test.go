package valuation

import (
	"math"
	"testing"

	"stockfolio/internal/holdings"
	"stockfolio/internal/quote"
)

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestValue_PricedHolding(t *testing.T) {
	h := holdings.Holding{ID: "1", Symbol: "AAPL", Shares: 10, CostPerShare: 150}
	q := quote.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: fptr(200), Currency: sptr("USD")}

	p := Value(h, q)
	if p.CostBasis != 1500 {
		t.Fatalf("costBasis: %v", p.CostBasis)
	}
	if p.MarketValue == nil || *p.MarketValue != 2000 {
		t.Fatalf("marketValue: %+v", p.MarketValue)
	}
	if p.PL == nil || *p.PL != 500 {
		t.Fatalf("pl: %+v", p.PL)
	}
	if p.PLPercent == nil || !almost(*p.PLPercent, 100.0/3) {
		t.Fatalf("plPercent: %+v", p.PLPercent)
	}
	if FormatSigned(*p.PLPercent) != "+33.33" {
		t.Fatalf("formatted plPercent: %q", FormatSigned(*p.PLPercent))
	}
	if p.Name != "Apple Inc." || p.Currency != "USD" {
		t.Fatalf("display fields: %+v", p)
	}
}

func TestValue_ZeroCostBasisGuardsDivision(t *testing.T) {
	h := holdings.Holding{ID: "1", Symbol: "XYZ", Shares: 5, CostPerShare: 0}
	q := quote.Quote{Symbol: "XYZ", Price: fptr(10)}

	p := Value(h, q)
	if p.CostBasis != 0 {
		t.Fatalf("costBasis: %v", p.CostBasis)
	}
	if p.MarketValue == nil || *p.MarketValue != 50 {
		t.Fatalf("marketValue: %+v", p.MarketValue)
	}
	if p.PL == nil || *p.PL != 50 {
		t.Fatalf("pl: %+v", p.PL)
	}
	if p.PLPercent != nil {
		t.Fatalf("plPercent must be absent when cost basis is zero, got %v", *p.PLPercent)
	}
}

func TestValue_MissingPriceIsAbsentNotZero(t *testing.T) {
	h := holdings.Holding{ID: "1", Symbol: "AAPL", Shares: 10, CostPerShare: 150}

	// Symbol entirely missing from the mapping behaves as all-absent.
	p := Value(h, quote.Quote{})
	if p.CostBasis != 1500 {
		t.Fatalf("costBasis must always be defined: %v", p.CostBasis)
	}
	if p.MarketValue != nil || p.PL != nil || p.PLPercent != nil {
		t.Fatalf("derived fields must be absent without a price: %+v", p)
	}
	if p.Name != "AAPL" || p.Currency != DefaultCurrency {
		t.Fatalf("display fallbacks: %+v", p)
	}
}

func TestValuate_TotalsAlwaysDefined(t *testing.T) {
	list := []holdings.Holding{
		{ID: "1", Symbol: "AAPL", Shares: 10, CostPerShare: 150},
		{ID: "2", Symbol: "MISSING", Shares: 4, CostPerShare: 25},
	}
	quotes := map[string]quote.Quote{
		"AAPL": {Symbol: "AAPL", Price: fptr(200)},
		// MISSING has no price: counts as zero in the aggregate only.
	}

	positions, totals := Valuate(list, quotes)
	if len(positions) != 2 {
		t.Fatalf("positions: %d", len(positions))
	}
	if positions[1].MarketValue != nil {
		t.Fatalf("per-position absent must stay absent: %+v", positions[1])
	}
	if totals.Cost != 1600 {
		t.Fatalf("totalCost: %v", totals.Cost)
	}
	if totals.Value != 2000 {
		t.Fatalf("totalValue: %v", totals.Value)
	}
	if totals.PL != 400 {
		t.Fatalf("totalPl: %v", totals.PL)
	}
	if !almost(totals.PLPercent, 25) {
		t.Fatalf("totalPlPercent: %v", totals.PLPercent)
	}
}

func TestValuate_EmptyListZeroTotals(t *testing.T) {
	positions, totals := Valuate(nil, nil)
	if len(positions) != 0 {
		t.Fatalf("positions: %+v", positions)
	}
	if totals.Cost != 0 || totals.Value != 0 || totals.PL != 0 || totals.PLPercent != 0 {
		t.Fatalf("totals must be zero for empty list: %+v", totals)
	}
}

func TestValuate_ZeroTotalCostZeroPercent(t *testing.T) {
	list := []holdings.Holding{{ID: "1", Symbol: "XYZ", Shares: 5, CostPerShare: 0}}
	quotes := map[string]quote.Quote{"XYZ": {Symbol: "XYZ", Price: fptr(10)}}

	_, totals := Valuate(list, quotes)
	if totals.PLPercent != 0 {
		t.Fatalf("aggregate chooses defined zero over absence: %v", totals.PLPercent)
	}
	if totals.Value != 50 || totals.PL != 50 {
		t.Fatalf("totals: %+v", totals)
	}
}

func TestFormatSigned(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{500, "+500.00"},
		{33.333333, "+33.33"},
		{-12.5, "-12.50"},
		{0, "0.00"},
		{-0.001, "0.00"}, // rounds to zero: no sign, no "-0.00"
		{0.005, "+0.01"},
	}
	for _, c := range cases {
		if got := FormatSigned(c.in); got != c.want {
			t.Fatalf("FormatSigned(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

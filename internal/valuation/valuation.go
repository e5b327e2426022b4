// Package valuation derives presentation-ready numbers from holdings
// and a quote mapping. Every path is total: absent inputs propagate as
// absent outputs, never as an error, and division by a zero cost basis
// is guarded.
package valuation

import (
	"github.com/shopspring/decimal"

	"stockfolio/internal/holdings"
	"stockfolio/internal/quote"
)

// DefaultCurrency is assumed when a quote carries no currency code.
const DefaultCurrency = "USD"

// Position is a holding with its derived fields for one refresh cycle.
// MarketValue, PL and PLPercent are nil when the current price is
// unknown; nil is deliberately distinguishable from a true zero so the
// UI can render a placeholder instead of a misleading "0".
type Position struct {
	Holding     holdings.Holding `json:"holding"`
	Name        string           `json:"name"`
	Currency    string           `json:"currency"`
	CostBasis   float64          `json:"costBasis"`
	MarketValue *float64         `json:"marketValue"`
	PL          *float64         `json:"pl"`
	PLPercent   *float64         `json:"plPercent"`
}

// Totals aggregates the whole holdings list. Unlike per-position fields
// these are always defined: an always-visible summary row must never
// render "absent", so missing market values count as zero in the sum
// (a lower bound) and PLPercent is zero when the cost basis is zero.
type Totals struct {
	Cost      float64 `json:"totalCost"`
	Value     float64 `json:"totalValue"`
	PL        float64 `json:"totalPl"`
	PLPercent float64 `json:"totalPlPercent"`
}

var hundred = decimal.NewFromInt(100)

// Value derives a single position from a holding and its quote. A zero
// Quote (symbol not in the mapping) behaves as all-absent.
func Value(h holdings.Holding, q quote.Quote) Position {
	shares := decimal.NewFromFloat(h.Shares)
	cost := shares.Mul(decimal.NewFromFloat(h.CostPerShare))

	p := Position{
		Holding:   h,
		Name:      h.Symbol,
		Currency:  DefaultCurrency,
		CostBasis: cost.InexactFloat64(),
	}
	if q.Name != "" {
		p.Name = q.Name
	}
	if q.Currency != nil {
		p.Currency = *q.Currency
	}
	if q.Price == nil {
		return p
	}

	mv := shares.Mul(decimal.NewFromFloat(*q.Price))
	pl := mv.Sub(cost)
	p.MarketValue = f(mv)
	p.PL = f(pl)
	if cost.IsPositive() {
		p.PLPercent = f(pl.Div(cost).Mul(hundred))
	}
	return p
}

// Valuate derives all positions and the aggregate totals. Holdings are
// never mutated; positions come back in holdings order.
func Valuate(list []holdings.Holding, quotes map[string]quote.Quote) ([]Position, Totals) {
	positions := make([]Position, 0, len(list))
	totalCost := decimal.Zero
	totalValue := decimal.Zero

	for _, h := range list {
		p := Value(h, quotes[h.Symbol])
		positions = append(positions, p)
		totalCost = totalCost.Add(decimal.NewFromFloat(p.CostBasis))
		if p.MarketValue != nil {
			totalValue = totalValue.Add(decimal.NewFromFloat(*p.MarketValue))
		}
	}

	totalPL := totalValue.Sub(totalCost)
	totals := Totals{
		Cost:  totalCost.InexactFloat64(),
		Value: totalValue.InexactFloat64(),
		PL:    totalPL.InexactFloat64(),
	}
	if totalCost.IsPositive() {
		totals.PLPercent = totalPL.Div(totalCost).Mul(hundred).InexactFloat64()
	}
	return positions, totals
}

// FormatSigned renders a value to two decimal places with an explicit
// leading "+" for positive values, "-" magnitude for negatives, and no
// sign for zero (including values that round to zero).
func FormatSigned(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	switch {
	case d.IsZero():
		return d.Abs().StringFixed(2)
	case d.IsPositive():
		return "+" + d.StringFixed(2)
	default:
		return d.StringFixed(2)
	}
}

func f(d decimal.Decimal) *float64 {
	v := d.InexactFloat64()
	return &v
}

// Package holdings manages the user's recorded positions: the list
// itself, its on-device persistence, and file import/export.
package holdings

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Holding is a user-recorded position. Symbols are stored uppercase.
// Holdings are never edited in place: they are created, removed, or
// replaced wholesale by an import.
type Holding struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	CostPerShare float64 `json:"costPerShare"`
}

// New validates and builds a holding with a fresh ID.
func New(symbol string, shares, costPerShare float64) (Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Holding{}, errors.New("symbol is required")
	}
	if shares <= 0 {
		return Holding{}, errors.New("shares must be positive")
	}
	if costPerShare < 0 {
		return Holding{}, errors.New("cost per share cannot be negative")
	}
	return Holding{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Shares:       shares,
		CostPerShare: costPerShare,
	}, nil
}

// Symbols returns the distinct uppercase symbols across the holdings
// list plus any ad-hoc watch symbols, preserving first appearance.
func Symbols(list []Holding, watch ...string) []string {
	out := make([]string, 0, len(list)+len(watch))
	seen := make(map[string]struct{}, len(list)+len(watch))
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, h := range list {
		add(h.Symbol)
	}
	for _, w := range watch {
		add(w)
	}
	return out
}

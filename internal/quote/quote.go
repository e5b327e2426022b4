package quote

import (
	"context"
)

// Quote is the normalized market data for a single ticker symbol.
// Price, PreviousClose and Currency are nil when the upstream did not
// supply them; callers must only null-check these fields, never the
// presence of a requested symbol in a mapping.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         *float64 `json:"price"`
	PreviousClose *float64 `json:"previousClose"`
	Currency      *string  `json:"currency"`
}

// Source fetches raw quotes for a batch of symbols from an upstream
// provider. Implementations reduce the upstream schema to Quote but make
// no completeness guarantee; that is the Normalizer's job.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) ([]Quote, error)
}

// Placeholder returns the record synthesized for a symbol the upstream
// knows nothing about: name falls back to the symbol, everything else
// absent.
func Placeholder(symbol string) Quote {
	return Quote{Symbol: symbol, Name: symbol}
}

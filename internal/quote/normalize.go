package quote

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// MaxSymbols caps a single lookup. Symbols beyond the cap are silently
// dropped rather than failing the request.
const MaxSymbols = 50

// Result is a complete quote mapping: Data holds exactly one entry per
// symbol in Symbols, which echoes the effective (cleaned, capped) list
// the lookup used.
type Result struct {
	Symbols []string         `json:"symbols"`
	Data    map[string]Quote `json:"data"`
}

// Normalizer turns a symbol list into a uniformly shaped Result,
// insulating callers from upstream schema quirks and partial failures.
type Normalizer struct {
	src Source
	log zerolog.Logger
}

func NewNormalizer(src Source, log zerolog.Logger) *Normalizer {
	return &Normalizer{src: src, log: log.With().Str("component", "normalizer").Logger()}
}

// CleanSymbols trims, drops blanks, uppercases, dedupes preserving first
// occurrence, and caps the list at MaxSymbols. Whitespace-only entries
// never count toward the cap.
func CleanSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == MaxSymbols {
			break
		}
	}
	return out
}

// Lookup performs exactly one upstream fetch for the full cleaned symbol
// list and returns a Result whose mapping covers every requested symbol.
// Symbols the upstream omitted come back as placeholders. Errors are one
// of ErrNoSymbols, *UpstreamError, or *FetchError.
func (n *Normalizer) Lookup(ctx context.Context, symbols []string) (*Result, error) {
	syms := CleanSymbols(symbols)
	if len(syms) == 0 {
		return nil, ErrNoSymbols
	}

	quotes, err := n.src.Fetch(ctx, syms)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, &FetchError{Err: err}
	}

	requested := make(map[string]struct{}, len(syms))
	for _, s := range syms {
		requested[s] = struct{}{}
	}

	data := make(map[string]Quote, len(syms))
	for _, q := range quotes {
		sym := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if sym == "" {
			continue
		}
		// Address upstream records by uppercase form; records for
		// symbols nobody asked for are discarded.
		if _, ok := requested[sym]; !ok {
			n.log.Debug().Str("symbol", sym).Msg("dropping unrequested upstream record")
			continue
		}
		q.Symbol = sym
		if strings.TrimSpace(q.Name) == "" {
			q.Name = sym
		}
		data[sym] = q
	}

	// Completeness: every requested symbol gets an entry, even when the
	// upstream omitted or errored on it.
	for _, s := range syms {
		if _, ok := data[s]; !ok {
			data[s] = Placeholder(s)
		}
	}

	return &Result{Symbols: syms, Data: data}, nil
}

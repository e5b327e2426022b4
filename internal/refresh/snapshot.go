// Package refresh owns the application state for the refresh pipeline:
// an immutable snapshot advanced by pure reducers, a manager that is
// the single logical writer, and a poller that re-triggers the pipeline
// on a fixed interval.
package refresh

import (
	"time"

	"stockfolio/internal/holdings"
	"stockfolio/internal/quote"
)

// Snapshot is a fully-formed view of the tracker state. Readers always
// see a complete prior state; no component mutates a snapshot in place.
type Snapshot struct {
	Holdings    []holdings.Holding
	Quotes      map[string]quote.Quote
	RefreshedAt time.Time
}

// AddHolding returns a new snapshot with h appended.
func AddHolding(s Snapshot, h holdings.Holding) Snapshot {
	next := make([]holdings.Holding, 0, len(s.Holdings)+1)
	next = append(next, s.Holdings...)
	next = append(next, h)
	s.Holdings = next
	return s
}

// RemoveHolding returns a new snapshot without the holding with the
// given id. Removing an unknown id is a no-op.
func RemoveHolding(s Snapshot, id string) Snapshot {
	next := make([]holdings.Holding, 0, len(s.Holdings))
	for _, h := range s.Holdings {
		if h.ID != id {
			next = append(next, h)
		}
	}
	s.Holdings = next
	return s
}

// ReplaceHoldings returns a new snapshot with the list replaced
// wholesale (import overwrite).
func ReplaceHoldings(s Snapshot, list []holdings.Holding) Snapshot {
	next := make([]holdings.Holding, len(list))
	copy(next, list)
	s.Holdings = next
	return s
}

// ReplaceQuotes returns a new snapshot with the quote mapping replaced
// wholesale. Partial merges of two refresh results are not a thing:
// whichever refresh completes later wins in full.
func ReplaceQuotes(s Snapshot, res *quote.Result, at time.Time) Snapshot {
	next := make(map[string]quote.Quote, len(res.Data))
	for k, v := range res.Data {
		next[k] = v
	}
	s.Quotes = next
	s.RefreshedAt = at
	return s
}

package cache

import (
	"context"
	"sync"
	"time"

	"stockfolio/internal/quote"
)

// entry stores the cached quote for a single symbol with expiry.
type entry struct {
	expiresAt time.Time
	quote     quote.Quote
}

// Source caches quotes per symbol for a TTL. It requests only missing
// symbols from the underlying source and combines cached + fresh
// results. When the upstream fails but at least one requested symbol is
// cached, the cached subset is returned instead of the error.
type Source struct {
	S        quote.Source
	TTL      time.Duration
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry // key: symbol
}

func (c *Source) Name() string { return c.S.Name() }

// Fetch returns quotes for requested symbols using the cache when valid.
func (c *Source) Fetch(ctx context.Context, symbols []string) ([]quote.Quote, error) {
	if c.S == nil || c.TTL <= 0 {
		return c.S.Fetch(ctx, symbols)
	}

	now := time.Now()

	cached := make(map[string]quote.Quote, len(symbols))
	missing := make([]string, 0, len(symbols))

	c.mu.RLock()
	for _, s := range symbols {
		if e, ok := c.items[s]; ok && now.Before(e.expiresAt) {
			cached[s] = e.quote
			continue
		}
		missing = append(missing, s)
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return ordered(symbols, cached, nil), nil
	}

	fresh, err := c.S.Fetch(ctx, missing)
	if err != nil {
		// Partial availability beats failing the whole refresh.
		if len(cached) > 0 {
			return ordered(symbols, cached, nil), nil
		}
		return nil, err
	}

	bySymbol := make(map[string]quote.Quote, len(fresh))
	for _, q := range fresh {
		bySymbol[q.Symbol] = q
	}

	expiry := now.Add(c.TTL)
	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]entry, len(bySymbol))
	}
	for sym, q := range bySymbol {
		c.items[sym] = entry{expiresAt: expiry, quote: q}
	}
	c.evictLocked(now)
	c.mu.Unlock()

	// Merge from the snapshot taken in the first pass, not from
	// c.items: an eviction racing the upstream call must not drop a
	// quote that was valid when the request began.
	return ordered(symbols, cached, bySymbol), nil
}

// ordered assembles quotes in request order, preferring fresh over
// cached. Symbols present in neither map are skipped.
func ordered(symbols []string, cached, fresh map[string]quote.Quote) []quote.Quote {
	out := make([]quote.Quote, 0, len(symbols))
	for _, s := range symbols {
		if q, ok := fresh[s]; ok {
			out = append(out, q)
			continue
		}
		if q, ok := cached[s]; ok {
			out = append(out, q)
		}
	}
	return out
}

// evictLocked caps cache size best-effort: expired entries first, then
// arbitrary keys until under the limit. Caller holds c.mu.
func (c *Source) evictLocked(now time.Time) {
	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
		if len(c.items) <= c.MaxItems {
			return
		}
	}
	for k := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		delete(c.items, k)
	}
}

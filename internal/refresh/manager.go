package refresh

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stockfolio/internal/holdings"
	"stockfolio/internal/quote"
)

// HoldingsStore persists the holdings list across restarts.
type HoldingsStore interface {
	Load() ([]holdings.Holding, error)
	Save([]holdings.Holding) error
}

// Manager owns the current snapshot and is its only writer. Holdings
// mutations persist through the store before the snapshot advances;
// quote refreshes replace the mapping wholesale on success and leave
// the previous mapping untouched on failure.
type Manager struct {
	store HoldingsStore
	norm  *quote.Normalizer
	watch []string
	log   zerolog.Logger

	mu   sync.RWMutex
	snap Snapshot
}

type ManagerConfig struct {
	Store      HoldingsStore
	Normalizer *quote.Normalizer
	// Watch lists ad-hoc symbols tracked without a position.
	Watch []string
	Log   zerolog.Logger
}

// NewManager loads the persisted holdings and returns a manager ready
// to refresh.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	list, err := cfg.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading holdings: %w", err)
	}
	return &Manager{
		store: cfg.Store,
		norm:  cfg.Normalizer,
		watch: quote.CleanSymbols(cfg.Watch),
		log:   cfg.Log.With().Str("component", "refresh").Logger(),
		snap:  Snapshot{Holdings: list, Quotes: map[string]quote.Quote{}},
	}, nil
}

// Snapshot returns the current fully-formed state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Symbols returns the effective symbol set: distinct symbols across
// holdings plus the watch list.
func (m *Manager) Symbols() []string {
	return holdings.Symbols(m.Snapshot().Holdings, m.watch...)
}

// Add validates, persists and applies a new holding.
func (m *Manager) Add(symbol string, shares, costPerShare float64) (holdings.Holding, error) {
	h, err := holdings.New(symbol, shares, costPerShare)
	if err != nil {
		return holdings.Holding{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	next := AddHolding(m.snap, h)
	if err := m.store.Save(next.Holdings); err != nil {
		return holdings.Holding{}, err
	}
	m.snap = next
	m.log.Info().Str("symbol", h.Symbol).Float64("shares", h.Shares).Msg("holding added")
	return h, nil
}

// Remove deletes a holding by id. Returns false when the id is unknown.
func (m *Manager) Remove(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := RemoveHolding(m.snap, id)
	if len(next.Holdings) == len(m.snap.Holdings) {
		return false, nil
	}
	if err := m.store.Save(next.Holdings); err != nil {
		return false, err
	}
	m.snap = next
	m.log.Info().Str("id", id).Msg("holding removed")
	return true, nil
}

// Export writes the current holdings list to w.
func (m *Manager) Export(w io.Writer) error {
	return holdings.Export(w, m.Snapshot().Holdings)
}

// Import replaces the holdings list from r iff the payload is a JSON
// array; any other payload is a logged no-op. Returns whether the list
// was replaced.
func (m *Manager) Import(r io.Reader) (bool, error) {
	list, ok := holdings.Import(r, m.log)
	if !ok {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := ReplaceHoldings(m.snap, list)
	if err := m.store.Save(next.Holdings); err != nil {
		return false, err
	}
	m.snap = next
	m.log.Info().Int("count", len(list)).Msg("holdings replaced by import")
	return true, nil
}

// Refresh runs one cycle of the pipeline: collect the effective symbol
// set, look up quotes once, and replace the mapping wholesale. With no
// symbols to track the mapping is cleared without an upstream call. On
// lookup failure the previous mapping is retained so the user keeps
// seeing the last good data.
func (m *Manager) Refresh(ctx context.Context) error {
	syms := m.Symbols()
	if len(syms) == 0 {
		m.mu.Lock()
		m.snap = ReplaceQuotes(m.snap, &quote.Result{Data: map[string]quote.Quote{}}, time.Now())
		m.mu.Unlock()
		return nil
	}

	res, err := m.norm.Lookup(ctx, syms)
	if err != nil {
		m.log.Warn().Err(err).Strs("symbols", syms).Msg("refresh failed; keeping previous quotes")
		return err
	}

	m.mu.Lock()
	m.snap = ReplaceQuotes(m.snap, res, time.Now())
	m.mu.Unlock()
	m.log.Debug().Int("symbols", len(res.Symbols)).Msg("quotes refreshed")
	return nil
}

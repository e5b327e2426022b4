package refresh

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Poller re-runs the refresh pipeline on a fixed interval. Start and
// Stop are explicit, and Restart is the defined cancellation point used
// when the effective symbol set changes: the old schedule is fully
// drained before the new one begins, so a restarted poll cannot race a
// stale one.
type Poller struct {
	interval time.Duration
	run      func()
	log      zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewPoller(interval time.Duration, run func(), log zerolog.Logger) *Poller {
	return &Poller{
		interval: interval,
		run:      run,
		log:      log.With().Str("component", "poller").Logger(),
	}
}

// Start begins the schedule. Starting an already-started poller is a
// no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startLocked()
}

func (p *Poller) startLocked() {
	if p.cron != nil || p.interval <= 0 {
		return
	}
	c := cron.New()
	schedule := fmt.Sprintf("@every %s", p.interval)
	if _, err := c.AddFunc(schedule, p.run); err != nil {
		p.log.Error().Err(err).Str("schedule", schedule).Msg("failed to register poll job")
		return
	}
	c.Start()
	p.cron = c
	p.log.Info().Str("schedule", schedule).Msg("poller started")
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
	p.cron = nil
	p.log.Info().Msg("poller stopped")
}

// Restart cancels the current schedule and begins a fresh one, e.g.
// after the symbol set changed.
func (p *Poller) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.startLocked()
}

package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opsdash/opsdash/internal/observability/logger"
	"github.com/opsdash/opsdash/internal/period"
)

// Refresher re-fetches the health and overview data on a fixed interval so
// the UI's auto-refresh reads warm data. A tick that fires while the
// previous refresh is still in flight is skipped; overlapping refreshes were
// a known race in the old dashboard.
type Refresher struct {
	service  *Service
	interval time.Duration

	inFlight atomic.Bool
	skipped  atomic.Int64

	mu       sync.RWMutex
	snapshot *Snapshot
}

// Snapshot is the result of one background refresh.
type Snapshot struct {
	Health      HealthSnapshot `json:"health"`
	Stats       Stats          `json:"stats"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// NewRefresher creates a refresher over the dashboard service.
func NewRefresher(service *Service, interval time.Duration) *Refresher {
	return &Refresher{
		service:  service,
		interval: interval,
	}
}

// Run refreshes immediately and then on every interval tick until ctx is
// cancelled. Intended to be started as a goroutine from main.
func (r *Refresher) Run(ctx context.Context) {
	r.TryRefresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.TryRefresh(ctx)
		}
	}
}

// TryRefresh runs one refresh unless another one is already in flight, in
// which case it reports false and does nothing. Handlers may call it to
// force an early refresh without racing the timer.
func (r *Refresher) TryRefresh(ctx context.Context) bool {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.skipped.Add(1)
		slog.DebugContext(ctx, "refresh skipped, previous refresh still running",
			logger.Component("refresher"),
		)
		return false
	}
	defer r.inFlight.Store(false)

	today := period.Resolve(period.TokenToday, "", "", time.Now())
	snapshot := &Snapshot{
		Health:      r.service.Health(ctx),
		Stats:       r.service.Stats(ctx, today),
		RefreshedAt: time.Now(),
	}

	r.mu.Lock()
	r.snapshot = snapshot
	r.mu.Unlock()
	return true
}

// Snapshot returns the latest refresh result, nil before the first refresh
// completes.
func (r *Refresher) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// SkippedTicks reports how many ticks were dropped by the overlap guard.
func (r *Refresher) SkippedTicks() int64 {
	return r.skipped.Load()
}

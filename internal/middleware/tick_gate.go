package middleware

import (
	"sync"

	domrepo "volscan/internal/domain/repository"
)

// TickGate serializes the scan cycle's per-second work. The wall clock
// fires regardless of how long a tick takes, so a tick that arrives while
// the previous one is still running is dropped, not queued: a queued tick
// would compute against a window that has already moved on.
type TickGate struct {
	mu      sync.Mutex
	metrics domrepo.Metrics
}

// NewTickGate creates a gate recording skipped ticks through metrics.
func NewTickGate(metrics domrepo.Metrics) *TickGate {
	return &TickGate{metrics: metrics}
}

// Run executes fn if no other tick is in flight and reports whether it ran.
func (g *TickGate) Run(fn func()) bool {
	if !g.mu.TryLock() {
		if g.metrics != nil {
			g.metrics.RecordPhase("dropped")
		}
		return false
	}
	defer g.mu.Unlock()
	fn()
	return true
}

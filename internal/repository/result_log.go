package repository

import (
	"context"
	"sync"
	"time"

	"volscan/internal/domain/models"
)

// ResultLog is the HTTP layer's owned view over published results: the
// latest result plus a rolling window of history. It is updated only by
// consuming published events and is safe for concurrent readers.
type ResultLog struct {
	mu        sync.RWMutex
	retention time.Duration
	results   []*models.PerformerResult
	latest    *models.PerformerResult
	rev       int64 // unix millis of last publish, strictly increasing
}

// NewResultLog creates a result log keeping results for the given retention.
func NewResultLog(retention time.Duration) *ResultLog {
	return &ResultLog{retention: retention}
}

// Publish implements repository.ResultSink.
func (l *ResultLog) Publish(_ context.Context, r *models.PerformerResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.latest = r
	l.results = append(l.results, r)

	rev := r.At.UnixMilli()
	if rev <= l.rev {
		rev = l.rev + 1
	}
	l.rev = rev

	// drop expired history on write; volume is one result per minute
	cutoff := r.At.Add(-l.retention)
	i := 0
	for i < len(l.results) && l.results[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		l.results = append([]*models.PerformerResult(nil), l.results[i:]...)
	}
	return nil
}

func (l *ResultLog) Close() error { return nil }

// Latest returns the most recent result and its revision. The revision is
// strictly increasing across publishes; 0 means nothing published yet.
func (l *ResultLog) Latest() (*models.PerformerResult, int64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest, l.rev
}

// History returns published results newer than the given age, oldest first.
func (l *ResultLog) History(maxAge time.Duration, now time.Time) []*models.PerformerResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cutoff := now.Add(-maxAge)
	out := make([]*models.PerformerResult, 0, len(l.results))
	for _, r := range l.results {
		if !r.At.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

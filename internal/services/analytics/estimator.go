package analytics

import (
	"time"

	"volscan/internal/domain/models"
	"volscan/internal/domain/repository"
)

// Estimator computes the normalized-movement volatility score per symbol:
//
//	score = (sum |p[i]-p[i-1]| / mean(p)) * 100
//
// over samples inside the trailing window. It is a movement proxy, not a
// variance or ATR model.
type Estimator struct {
	window time.Duration
}

// NewEstimator creates an estimator over the given trailing window.
func NewEstimator(window time.Duration) *Estimator {
	return &Estimator{window: window}
}

// Scores recomputes the full score map from the current window. The caller
// discards the previous map; nothing is carried over between ticks, so the
// result always reflects exactly the current window.
func (e *Estimator) Scores(store repository.HistoryStore, now time.Time) models.ScoreMap {
	out := make(models.ScoreMap)
	for _, sym := range store.Symbols() {
		samples := store.Windowed(sym, e.window, now)
		if s, ok := e.score(samples); ok {
			out[sym] = s
		}
	}
	return out
}

// score returns (score, true) for >=2 samples, (0, false) otherwise.
// Fewer than two samples means the symbol is excluded from ranking this
// tick, not scored zero.
func (e *Estimator) score(samples []models.PriceSample) (float64, bool) {
	if len(samples) < 2 {
		return 0, false
	}
	var movement, sum float64
	for i, s := range samples {
		sum += s.Price
		if i > 0 {
			d := s.Price - samples[i-1].Price
			if d < 0 {
				d = -d
			}
			movement += d
		}
	}
	avg := sum / float64(len(samples))
	if avg == 0 {
		return 0, false
	}
	return movement / avg * 100, true
}

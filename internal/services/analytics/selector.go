package analytics

import (
	"math"

	"volscan/internal/domain/models"
)

// Selector applies the liquidity floor and picks the minute's winner.
// Ranking: score descending; scores within epsilon (absolute percentage
// points) are tied and break on volume descending. The selector itself
// never fails; "nothing qualified" is a valid empty result.
type Selector struct {
	minVolume float64
	epsilon   float64
}

// NewSelector creates a selector with the given liquidity floor and
// tie-break epsilon.
func NewSelector(minVolume, epsilon float64) *Selector {
	return &Selector{minVolume: minVolume, epsilon: epsilon}
}

// Select picks the rank-1 symbol. volume is looked up per symbol via the
// callback so the selector stays decoupled from the history store.
func (s *Selector) Select(scores models.ScoreMap, volume func(string) float64) models.Selection {
	var best models.Selection
	for sym, score := range scores {
		vol := volume(sym)
		if vol < s.minVolume {
			continue
		}
		if !best.Found || s.beats(score, vol, best.Score, best.Volume) {
			best = models.Selection{Symbol: sym, Score: score, Volume: vol, Found: true}
		}
	}
	if best.Found {
		best.Moves = int(math.Round(best.Score * 100))
	}
	return best
}

// beats reports whether (score, vol) outranks the current best.
func (s *Selector) beats(score, vol, bestScore, bestVol float64) bool {
	d := score - bestScore
	if d > s.epsilon {
		return true
	}
	if d < -s.epsilon {
		return false
	}
	// tied within epsilon: higher volume wins
	return vol > bestVol
}

package repository

import (
	"context"
	"time"

	"volscan/internal/domain/models"
)

// MarketSource pulls one point-in-time snapshot of all instruments for the
// configured quote currency.
type MarketSource interface {
	FetchTickers(ctx context.Context) ([]models.Ticker, error)
}

// HistoryStore is the rolling per-symbol price sample log. It is owned by
// the scan cycle; only the single scheduling timeline mutates it.
type HistoryStore interface {
	Append(symbol string, s models.PriceSample)
	SetVolume(symbol string, v float64)
	Volume(symbol string) float64
	Windowed(symbol string, d time.Duration, now time.Time) []models.PriceSample
	Symbols() []string
	Prune(maxAge time.Duration, now time.Time)
}

// ResultSink receives finalized per-minute results. Sinks own their own
// concurrency and must never reach back into scanner state.
type ResultSink interface {
	Publish(ctx context.Context, r *models.PerformerResult) error
	Close() error
}

type Metrics interface {
	RecordPhase(phase string)
	RecordError(kind string)
	RecordTopScore(symbol string, score float64)
	RecordWinner(symbol string, moves int)
	RecordLatency(op string, seconds float64)
}

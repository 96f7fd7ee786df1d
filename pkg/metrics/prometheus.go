package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	topScore     *prometheus.GaugeVec
	winnersTotal *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_ticks_total",
				Help: "Total scan cycle ticks by phase",
			},
			[]string{"phase"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_errors_total",
				Help: "Total errors by diagnostic kind",
			},
			[]string{"kind"},
		),
		topScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volscan_winner_score",
				Help: "Volatility score of the last minute winner",
			},
			[]string{"symbol"},
		),
		winnersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_winners_total",
				Help: "Minutes won per symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volscan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPhase counts one scan tick for the given phase.
func (r *Recorder) RecordPhase(phase string) {
	r.ticksTotal.WithLabelValues(phase).Inc()
}

// RecordError counts an error by diagnostic kind.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTopScore records the winning symbol's score.
func (r *Recorder) RecordTopScore(symbol string, score float64) {
	r.topScore.WithLabelValues(symbol).Set(score)
}

// RecordWinner counts a won minute for a symbol.
func (r *Recorder) RecordWinner(symbol string, _ int) {
	r.winnersTotal.WithLabelValues(symbol).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

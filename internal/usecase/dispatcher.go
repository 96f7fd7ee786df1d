package usecase

import (
	"context"
	"time"

	"volscan/internal/domain/models"
	drepo "volscan/internal/domain/repository"
	xlogger "volscan/pkg/logger"
)

// ResultDispatcher fans a finalized result out to every configured sink
// (result log, websocket hub, optionally Kafka). Sink failures are counted
// and logged but never reach the scan cycle: delivery is one-way.
type ResultDispatcher struct {
	sinks   []drepo.ResultSink
	metrics drepo.Metrics
	logger  *xlogger.Logger
}

// NewResultDispatcher creates a dispatcher over the given sinks.
func NewResultDispatcher(metrics drepo.Metrics, logger *xlogger.Logger, sinks ...drepo.ResultSink) *ResultDispatcher {
	return &ResultDispatcher{sinks: sinks, metrics: metrics, logger: logger}
}

// Dispatch publishes one result to all sinks.
func (d *ResultDispatcher) Dispatch(ctx context.Context, r *models.PerformerResult) {
	start := time.Now()
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, r); err != nil {
			d.metrics.RecordError("publish")
			if d.logger != nil {
				d.logger.Error("result publish failed", xlogger.String("symbol", r.Symbol), xlogger.Error(err))
			}
		}
	}
	d.metrics.RecordLatency("dispatch", time.Since(start).Seconds())
}

// Close closes all sinks.
func (d *ResultDispatcher) Close() {
	for _, sink := range d.sinks {
		_ = sink.Close()
	}
}

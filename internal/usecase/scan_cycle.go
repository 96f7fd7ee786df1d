package usecase

import (
	"context"
	"math"
	"time"

	"volscan/internal/domain/models"
	drepo "volscan/internal/domain/repository"
	mid "volscan/internal/middleware"
	"volscan/internal/services/analytics"
	xlogger "volscan/pkg/logger"
)

// ScanCycle is the 1 Hz driver behind the per-minute performer selection.
// Keyed off wall-clock seconds-within-minute:
//
//	second 0     reset:      clear scores and the error flag, prune history
//	seconds 1-58 accumulate: fetch snapshot, ingest, recompute scores
//	second 59    finalize:   rank, enrich, publish
//
// All mutable state is owned by the single tick timeline; the gate drops a
// tick when the previous one is still running, so there are never two
// concurrent mutators. On process start the cycle resynchronizes from the
// wall clock, which can produce a partial first minute.
type ScanCycle struct {
	source     drepo.MarketSource
	history    drepo.HistoryStore
	estimator  *analytics.Estimator
	selector   *analytics.Selector
	dispatcher *ResultDispatcher
	metrics    drepo.Metrics
	logger     *xlogger.Logger
	gate       *mid.TickGate
	classify   func(error) string

	retention time.Duration

	// minute accumulator, reset every 60 ticks
	scores   models.ScoreMap
	snapshot map[string]models.Ticker
	hasError bool

	stopCh  chan struct{}
	started bool
}

// NewScanCycle creates the scanner driver. classify maps fetch errors to a
// diagnostic kind (timeout/reset/malformed/fetch) for observability.
func NewScanCycle(
	source drepo.MarketSource,
	history drepo.HistoryStore,
	estimator *analytics.Estimator,
	selector *analytics.Selector,
	dispatcher *ResultDispatcher,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	classify func(error) string,
	retention time.Duration,
) *ScanCycle {
	return &ScanCycle{
		source:     source,
		history:    history,
		estimator:  estimator,
		selector:   selector,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		gate:       mid.NewTickGate(metrics),
		classify:   classify,
		retention:  retention,
		scores:     make(models.ScoreMap),
		snapshot:   make(map[string]models.Ticker),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the per-second loop. The ticker keeps wall-clock cadence;
// each fire runs in its own goroutine behind the gate so a slow fetch
// causes dropped ticks instead of a drifting schedule.
func (s *ScanCycle) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				now := time.Now()
				go func() {
					if !s.gate.Run(func() { s.Tick(ctx, now) }) {
						s.logger.Debug("tick dropped, previous tick still running")
					}
				}()
			}
		}
	}()
}

// Stop halts the loop. Terminal; the cycle is not restartable.
func (s *ScanCycle) Stop() {
	if !s.started {
		return
	}
	s.started = false
	close(s.stopCh)
}

// Tick runs one step of the reset/accumulate/finalize state machine for
// the given wall-clock instant. Callers must not overlap invocations.
func (s *ScanCycle) Tick(ctx context.Context, now time.Time) {
	switch sec := now.Second(); {
	case sec == 0:
		s.metrics.RecordPhase("reset")
		s.reset(now)
	case sec == 59:
		s.metrics.RecordPhase("finalize")
		s.finalize(ctx, now)
	default:
		s.metrics.RecordPhase("accumulate")
		s.accumulate(ctx, now)
	}
}

// reset starts a fresh minute. Samples are not cleared here; they age out
// independently through pruning.
func (s *ScanCycle) reset(now time.Time) {
	s.scores = make(models.ScoreMap)
	s.hasError = false
	s.history.Prune(s.retention, now)
}

func (s *ScanCycle) accumulate(ctx context.Context, now time.Time) {
	start := time.Now()
	tickers, err := s.source.FetchTickers(ctx)
	if err != nil {
		// sticky for the rest of the minute; the 1-second cadence is the
		// only retry mechanism
		s.hasError = true
		kind := s.classify(err)
		s.metrics.RecordError(kind)
		s.logger.Warn("snapshot fetch failed", xlogger.String("kind", kind), xlogger.Error(err))
		return
	}

	for _, t := range tickers {
		s.history.Append(t.Symbol, models.PriceSample{Price: t.LastPrice, ObservedAt: now})
		s.history.SetVolume(t.Symbol, t.Turnover24h)
		s.snapshot[t.Symbol] = t
	}

	s.scores = s.estimator.Scores(s.history, now)
	s.metrics.RecordLatency("accumulate", time.Since(start).Seconds())
}

// finalize ranks the minute and publishes the winner. A minute with any
// fetch failure publishes nothing, even when a valid winner was computed.
func (s *ScanCycle) finalize(ctx context.Context, now time.Time) {
	sel := s.selector.Select(s.scores, s.history.Volume)
	if !sel.Found {
		s.logger.Debug("no qualifying symbol this minute")
		return
	}
	if s.hasError {
		s.logger.Warn("result suppressed, minute saw a fetch failure",
			xlogger.String("symbol", sel.Symbol), xlogger.Int("moves", sel.Moves))
		return
	}

	// funding rate and turnover come from the last accumulated snapshot;
	// every ingested ticker already carries both, so no second fetch
	tk, ok := s.snapshot[sel.Symbol]
	if !ok {
		s.logger.Warn("winner missing from snapshot", xlogger.String("symbol", sel.Symbol))
		return
	}

	r := &models.PerformerResult{
		Symbol:      sel.Symbol,
		Moves:       sel.Moves,
		Turnover:    math.Round(tk.Turnover24h/1e6*100) / 100,
		FundingRate: math.Round(tk.FundingRate*100*1e4) / 1e4,
		At:          now,
	}
	s.dispatcher.Dispatch(ctx, r)
	s.metrics.RecordTopScore(sel.Symbol, sel.Score)
	s.metrics.RecordWinner(sel.Symbol, sel.Moves)
	s.logger.Info("minute winner published",
		xlogger.String("symbol", r.Symbol),
		xlogger.Int("moves", r.Moves),
		xlogger.Any("turnover_m", r.Turnover))
}

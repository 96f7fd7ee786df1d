package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"volscan/internal/domain/models"
	"volscan/internal/repository"
	"volscan/internal/services/analytics"
	xlogger "volscan/pkg/logger"
)

type fakeSource struct {
	tickers []models.Ticker
	err     error
}

func (f *fakeSource) FetchTickers(_ context.Context) ([]models.Ticker, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tickers, nil
}

type captureSink struct {
	published []*models.PerformerResult
}

func (c *captureSink) Publish(_ context.Context, r *models.PerformerResult) error {
	c.published = append(c.published, r)
	return nil
}

func (c *captureSink) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordPhase(string)             {}
func (nopMetrics) RecordError(string)             {}
func (nopMetrics) RecordTopScore(string, float64) {}
func (nopMetrics) RecordWinner(string, int)       {}
func (nopMetrics) RecordLatency(string, float64)  {}

func newTestCycle(t *testing.T, src *fakeSource) (*ScanCycle, *captureSink) {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "fatal", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	sink := &captureSink{}
	disp := NewResultDispatcher(nopMetrics{}, l, sink)
	cycle := NewScanCycle(
		src,
		repository.NewPriceHistory(),
		analytics.NewEstimator(60*time.Second),
		analytics.NewSelector(10_000_000, 0.0001),
		disp,
		nopMetrics{},
		l,
		func(error) string { return "fetch" },
		120*time.Second,
	)
	return cycle, sink
}

func minuteStart(min int) time.Time {
	return time.Date(2025, 3, 1, 12, min, 0, 0, time.UTC)
}

func TestFullMinutePublishesWinner(t *testing.T) {
	src := &fakeSource{}
	cycle, sink := newTestCycle(t, src)
	ctx := context.Background()
	base := minuteStart(0)

	cycle.Tick(ctx, base) // reset
	for i, p := range []float64{100, 101, 99} {
		src.tickers = []models.Ticker{{Symbol: "BTCUSDT", LastPrice: p, Turnover24h: 50_000_000, FundingRate: 0.0001}}
		cycle.Tick(ctx, base.Add(time.Duration(i+1)*time.Second))
	}
	cycle.Tick(ctx, base.Add(59*time.Second)) // finalize

	if len(sink.published) != 1 {
		t.Fatalf("expected 1 published result, got %d", len(sink.published))
	}
	r := sink.published[0]
	if r.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected winner %q", r.Symbol)
	}
	if r.Moves != 300 {
		t.Fatalf("expected moves=300, got %d", r.Moves)
	}
	if r.Turnover != 50.0 {
		t.Fatalf("expected turnover 50.00 millions, got %v", r.Turnover)
	}
	if r.FundingRate != 0.01 {
		t.Fatalf("expected funding 0.01%%, got %v", r.FundingRate)
	}
}

func TestFetchErrorSuppressesPublication(t *testing.T) {
	src := &fakeSource{}
	cycle, sink := newTestCycle(t, src)
	ctx := context.Background()
	base := minuteStart(0)

	cycle.Tick(ctx, base)
	src.tickers = []models.Ticker{{Symbol: "BTCUSDT", LastPrice: 100, Turnover24h: 50_000_000}}
	cycle.Tick(ctx, base.Add(1*time.Second))
	src.tickers[0].LastPrice = 103
	cycle.Tick(ctx, base.Add(2*time.Second))

	// one failed tick mid-minute makes the error sticky
	src.err = errors.New("connection reset by peer")
	cycle.Tick(ctx, base.Add(3*time.Second))
	src.err = nil
	src.tickers[0].LastPrice = 99
	cycle.Tick(ctx, base.Add(4*time.Second))

	cycle.Tick(ctx, base.Add(59*time.Second))
	if len(sink.published) != 0 {
		t.Fatalf("errored minute must publish nothing, got %d", len(sink.published))
	}
}

func TestResetClearsErrorBetweenMinutes(t *testing.T) {
	src := &fakeSource{}
	cycle, sink := newTestCycle(t, src)
	ctx := context.Background()

	// minute 0: fetch failure
	m0 := minuteStart(0)
	cycle.Tick(ctx, m0)
	src.err = errors.New("timeout")
	cycle.Tick(ctx, m0.Add(time.Second))
	cycle.Tick(ctx, m0.Add(59*time.Second))
	if len(sink.published) != 0 {
		t.Fatalf("minute 0 must be suppressed")
	}

	// minute 1: clean
	m1 := minuteStart(1)
	src.err = nil
	cycle.Tick(ctx, m1)
	for i, p := range []float64{200, 202} {
		src.tickers = []models.Ticker{{Symbol: "ETHUSDT", LastPrice: p, Turnover24h: 20_000_000}}
		cycle.Tick(ctx, m1.Add(time.Duration(i+1)*time.Second))
	}
	cycle.Tick(ctx, m1.Add(59*time.Second))

	if len(sink.published) != 1 {
		t.Fatalf("minute 1 must publish independently of minute 0, got %d", len(sink.published))
	}
	if sink.published[0].Symbol != "ETHUSDT" {
		t.Fatalf("unexpected winner %q", sink.published[0].Symbol)
	}
}

func TestNoQualifierPublishesNothing(t *testing.T) {
	src := &fakeSource{}
	cycle, sink := newTestCycle(t, src)
	ctx := context.Background()
	base := minuteStart(0)

	cycle.Tick(ctx, base)
	for i, p := range []float64{10, 11} {
		src.tickers = []models.Ticker{{Symbol: "TINYUSDT", LastPrice: p, Turnover24h: 5_000_000}}
		cycle.Tick(ctx, base.Add(time.Duration(i+1)*time.Second))
	}
	cycle.Tick(ctx, base.Add(59*time.Second))

	if len(sink.published) != 0 {
		t.Fatalf("below the liquidity floor nothing may publish, got %d", len(sink.published))
	}
}

func TestResetPrunesAgedSamples(t *testing.T) {
	src := &fakeSource{}
	cycle, _ := newTestCycle(t, src)
	ctx := context.Background()

	m0 := minuteStart(0)
	src.tickers = []models.Ticker{{Symbol: "BTCUSDT", LastPrice: 100, Turnover24h: 50_000_000}}
	cycle.Tick(ctx, m0.Add(time.Second))

	// three minutes later the sample is beyond 120s retention
	m3 := minuteStart(3)
	cycle.Tick(ctx, m3) // reset prunes
	if got := cycle.history.Windowed("BTCUSDT", time.Hour, m3); len(got) != 0 {
		t.Fatalf("expected aged samples pruned at reset, got %d", len(got))
	}
}

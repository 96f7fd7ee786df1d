package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	models "volscan/internal/domain/models"
	"volscan/internal/repository"
	"volscan/internal/service/cache"
	"volscan/internal/service/ratelimit"
	xlogger "volscan/pkg/logger"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*PerformerEchoHandler, *repository.ResultLog, *echo.Echo) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "fatal", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	log.AddCollector(&xlogger.CollectionConfig{MaxEntries: 16})

	rl := repository.NewResultLog(24 * time.Hour)
	h := NewPerformerEchoHandler(log, rl, cache.NewTTLCache(), ratelimit.New())

	e := echo.New()
	h.RegisterRoutes(e)
	return h, rl, e
}

func publish(t *testing.T, rl *repository.ResultLog, symbol string, at time.Time) int64 {
	t.Helper()
	err := rl.Publish(context.Background(), &models.PerformerResult{
		Symbol:      symbol,
		Moves:       250,
		Turnover:    42.5,
		FundingRate: 0.01,
		At:          at,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	_, rev := rl.Latest()
	return rev
}

func TestPerformerEmpty(t *testing.T) {
	_, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/performer", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data PerformerResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Current != nil {
		t.Fatalf("expected nil current, got %+v", body.Data.Current)
	}
	if len(body.Data.History) != 0 {
		t.Fatalf("expected empty history, got %d", len(body.Data.History))
	}
}

func TestPerformerReturnsCurrentAndHistory(t *testing.T) {
	_, rl, e := newTestHandler(t)
	now := time.Now()
	publish(t, rl, "BTCUSDT", now.Add(-time.Minute))
	publish(t, rl, "ETHUSDT", now)

	req := httptest.NewRequest(http.MethodGet, "/api/performer?hours=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data PerformerResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Current == nil || body.Data.Current.Symbol != "ETHUSDT" {
		t.Fatalf("unexpected current: %+v", body.Data.Current)
	}
	if len(body.Data.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(body.Data.History))
	}
}

func TestPerformerAfterFilter(t *testing.T) {
	_, rl, e := newTestHandler(t)
	now := time.Now()
	publish(t, rl, "OLDUSDT", now.Add(-10*time.Minute))
	publish(t, rl, "NEWUSDT", now)

	after := now.Add(-time.Minute).UTC().Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, "/api/performer?after="+after, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data PerformerResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.History) != 1 || body.Data.History[0].Symbol != "NEWUSDT" {
		t.Fatalf("unexpected history: %+v", body.Data.History)
	}
}

func TestPerformerHoursValidation(t *testing.T) {
	_, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/performer?hours=48", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("embedded status = %d, want 400", body.Status)
	}
}

func TestPollNoContentWhenNothingPublished(t *testing.T) {
	_, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/performer/poll", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestPollChangeCycle(t *testing.T) {
	_, rl, e := newTestHandler(t)
	rev := publish(t, rl, "BTCUSDT", time.Now())

	// stale cursor sees the result
	req := httptest.NewRequest(http.MethodGet, "/api/performer/poll?since=0", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data PollResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Rev != rev {
		t.Fatalf("rev = %d, want %d", body.Data.Rev, rev)
	}
	if body.Data.Result == nil || body.Data.Result.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected result: %+v", body.Data.Result)
	}

	// caught-up cursor gets 204
	req = httptest.NewRequest(http.MethodGet, "/api/performer/poll?since="+strconv.FormatInt(rev, 10), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestPollRateLimited(t *testing.T) {
	h, rl, e := newTestHandler(t)
	h.pollCapacity = 2
	h.pollRefill = 0
	publish(t, rl, "BTCUSDT", time.Now())

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/performer/poll?since=0", nil)
		req.RemoteAddr = "10.1.1.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		var body struct {
			Status int `json:"status"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		last = body.Status
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("embedded status = %d, want 429", last)
	}
}

func TestDiagnosticLogsServesCollected(t *testing.T) {
	h, _, e := newTestHandler(t)
	h.logger.Warn("ticker fetch failed")
	h.logger.Warn("ticker fetch failed")

	req := httptest.NewRequest(http.MethodGet, "/api/diagnostics/logs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []xlogger.CollectedEntry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("entries = %d, want 1 aggregated", len(body.Data))
	}
	if body.Data[0].Count != 2 {
		t.Fatalf("count = %d, want 2", body.Data[0].Count)
	}
}

func TestHealthz(t *testing.T) {
	_, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

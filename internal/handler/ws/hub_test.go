package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "volscan/internal/domain/models"
	xlogger "volscan/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "fatal", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewHub(log)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPushesPublishedResult(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)

	// wait for registration before publishing
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.RLock()
		n := len(h.clients)
		h.mu.RUnlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := &models.PerformerResult{Symbol: "BTCUSDT", Moves: 321, At: time.Now().UTC()}
	if err := h.Publish(context.Background(), want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.PerformerResult
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Symbol != "BTCUSDT" || got.Moves != 321 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestHubGreetsWithLatest(t *testing.T) {
	h, srv := newTestHub(t)
	if err := h.Publish(context.Background(), &models.PerformerResult{Symbol: "ETHUSDT", Moves: 100}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn := dial(t, srv)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.PerformerResult
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read greet: %v", err)
	}
	if got.Symbol != "ETHUSDT" {
		t.Fatalf("greet symbol = %q, want ETHUSDT", got.Symbol)
	}
}

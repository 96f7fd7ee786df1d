package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	models "volscan/internal/domain/models"
	xlogger "volscan/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	clientBuffer  = 16
	pingInterval  = 45 * time.Second
	pongWait      = 90 * time.Second
	greetDeadline = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: true,
}

type client struct {
	conn *websocket.Conn
	out  chan *models.PerformerResult
	done chan struct{}
}

// Hub pushes each published result to all connected WebSocket consumers.
// It is a delivery sink: slow clients are skipped, dead clients dropped.
type Hub struct {
	logger *xlogger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  *models.PerformerResult
	closed  bool
}

func NewHub(logger *xlogger.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Publish implements repository.ResultSink. A client whose buffer is full
// misses this result; it will catch up via the greet on reconnect.
func (h *Hub) Publish(_ context.Context, r *models.PerformerResult) error {
	h.mu.Lock()
	h.latest = r
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.out <- r:
		default:
		}
	}
	return nil
}

// Close disconnects all clients and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
	return nil
}

// Serve upgrades the connection and streams results until the client goes away.
func (h *Hub) Serve(c echo.Context) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "shutting down")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	cl := &client{conn: conn, out: make(chan *models.PerformerResult, clientBuffer), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	latest := h.latest
	h.mu.Unlock()

	// greet with the latest result so a fresh client has state immediately
	if latest != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(greetDeadline))
		_ = conn.WriteJSON(latest)
		_ = conn.SetWriteDeadline(time.Time{})
	}

	go h.writeLoop(cl)
	h.readLoop(cl)

	close(cl.done)
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
	return nil
}

func (h *Hub) writeLoop(cl *client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case r := <-cl.out:
			if err := cl.conn.WriteJSON(r); err != nil {
				return
			}
		case <-ping.C:
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.done:
			return
		}
	}
}

func (h *Hub) readLoop(cl *client) {
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

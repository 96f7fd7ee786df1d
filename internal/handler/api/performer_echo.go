package api

import (
	"encoding/json"
	"net/http"
	"time"

	models "volscan/internal/domain/models"
	"volscan/internal/repository"
	"volscan/internal/service/cache"
	"volscan/internal/service/ratelimit"
	xhttp "volscan/pkg/http"
	xlogger "volscan/pkg/logger"
	"volscan/pkg/util"

	"github.com/labstack/echo/v4"
)

const performerCacheTTL = time.Second

// PerformerEchoHandler exposes the scanner's published results over Echo.
type PerformerEchoHandler struct {
	logger  *xlogger.Logger
	log     *repository.ResultLog
	cache   cache.BytesCache
	limiter *ratelimit.Limiter

	// poll rate limit per client IP
	pollCapacity float64
	pollRefill   float64
}

func NewPerformerEchoHandler(logger *xlogger.Logger, log *repository.ResultLog, c cache.BytesCache, l *ratelimit.Limiter) *PerformerEchoHandler {
	return &PerformerEchoHandler{
		logger:       logger,
		log:          log,
		cache:        c,
		limiter:      l,
		pollCapacity: 5,
		pollRefill:   2,
	}
}

func (h *PerformerEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/performer", h.Performer)
	g.GET("/performer/poll", h.Poll)
	g.GET("/diagnostics/logs", h.DiagnosticLogs)
	e.GET("/healthz", h.Healthz)
}

// PerformerResponse is the query surface: the latest result plus the
// rolling history window.
type PerformerResponse struct {
	Current *models.PerformerResult   `json:"current"`
	History []*models.PerformerResult `json:"history"`
}

// Performer returns the latest result and recent history.
func (h *PerformerEchoHandler) Performer(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := "performer:" + c.QueryString()
	if b, ok, err := h.cache.GetBytes(key); err == nil && ok {
		return c.JSONBlob(http.StatusOK, b)
	} else if err != nil {
		h.logger.Warn("performer cache read failed", xlogger.Error(err))
	}

	current, _ := h.log.Latest()
	history := h.log.History(time.Duration(req.Hours)*time.Hour, time.Now())

	// optional lower bound; results are per-minute, so snap to minute start
	if req.After != "" {
		after, ok := xhttp.ParseTime(req.After)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("after must be RFC3339 or unix seconds"))
		}
		cutoff := util.MinuteStart(after)
		filtered := history[:0]
		for _, r := range history {
			if !r.At.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
		history = filtered
	}
	res := &PerformerResponse{Current: current, History: history}

	body, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    res,
	})
	if err != nil {
		h.logger.Error("performer response encode failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if err := h.cache.SetBytes(key, body, performerCacheTTL); err != nil {
		h.logger.Warn("performer cache write failed", xlogger.Error(err))
	}
	return c.JSONBlob(http.StatusOK, body)
}

// PollResponse carries one change-poll delivery. Rev is an opaque cursor
// the client echoes back as ?since= on the next poll.
type PollResponse struct {
	Result *models.PerformerResult `json:"result"`
	Rev    int64                   `json:"rev"`
}

// Poll returns 200 with the latest result when it is newer than the
// client's cursor, 204 otherwise.
func (h *PerformerEchoHandler) Poll(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), h.pollCapacity, h.pollRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("poll rate limit exceeded"))
	}

	req := &models.PollRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	latest, rev := h.log.Latest()
	if latest == nil || rev <= req.Since {
		return xhttp.NoContentResponse(c)
	}
	return xhttp.SuccessResponse(c, &PollResponse{Result: latest, Rev: rev})
}

// DiagnosticLogs exposes the in-memory warn/error buffer.
func (h *PerformerEchoHandler) DiagnosticLogs(c echo.Context) error {
	collector := h.logger.Collector()
	if collector == nil {
		return xhttp.SuccessResponse(c, []xlogger.CollectedEntry{})
	}
	return xhttp.SuccessResponse(c, collector.Entries())
}

func (h *PerformerEchoHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

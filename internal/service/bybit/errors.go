package bybit

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrMalformedResponse marks an upstream response missing required fields.
// It is handled exactly like any other fetch failure, never raised as a
// process fault.
var ErrMalformedResponse = errors.New("malformed response")

// ClassifyError maps a fetch error to a diagnostic kind. The kinds exist
// for observability only; every kind is handled identically by the cycle.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, syscall.ECONNRESET):
		return "reset"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	if strings.Contains(err.Error(), "connection reset") {
		return "reset"
	}
	return "fetch"
}

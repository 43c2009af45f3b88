package outcome

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
)

// Reason explains why a payload was discarded.
type Reason string

const (
	ReasonRateLimitBackoff Reason = "ratelimit_backoff"
	ReasonBufferOverflow   Reason = "buffer_overflow"
	ReasonNetworkError     Reason = "network_error"
	ReasonSendError        Reason = "send_error"
)

// Outcome is one discard event.
type Outcome struct {
	Category delivery.Category
	Reason   Reason
	Quantity int64
	At       time.Time
}

// Recorder stores discard outcomes. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Classify maps a delivery error to a discard reason.
// ok is false for nil errors and for 429 responses.
func Classify(err error) (reason Reason, ok bool) {
	if err == nil {
		return "", false
	}

	var httpErr *delivery.HTTPError
	switch {
	case errors.Is(err, delivery.ErrRateLimited):
		return ReasonRateLimitBackoff, true
	case errors.Is(err, delivery.ErrBufferFull):
		return ReasonBufferOverflow, true
	case errors.As(err, &httpErr):
		if httpErr.Code == http.StatusTooManyRequests {
			return "", false
		}
		return ReasonSendError, true
	case errors.Is(err, delivery.ErrTransport):
		return ReasonNetworkError, true
	default:
		return ReasonSendError, true
	}
}

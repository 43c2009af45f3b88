package delivery

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrRateLimited is matched by *RateLimitedError.
	ErrRateLimited = errors.New("envship: rate limited")

	// ErrBufferFull is returned when the in-flight limit is reached.
	ErrBufferFull = errors.New("envship: send buffer full")

	// ErrHTTPStatus is matched by *HTTPError.
	ErrHTTPStatus = errors.New("envship: http error")

	// ErrTransport is matched by *TransportError.
	ErrTransport = errors.New("envship: transport error")

	// ErrNoTransportConfigured indicates the dispatcher was built without a transport.
	// It is a programming error and must not be retried.
	ErrNoTransportConfigured = errors.New("envship: no transport configured")

	// ErrUnknownCategory is returned by ParseCategory.
	ErrUnknownCategory = errors.New("envship: unknown category")

	// ErrClosed is returned for sends issued after the client was closed.
	ErrClosed = errors.New("envship: client closed")
)

// RateLimitedError reports a send rejected because its category is suppressed.
type RateLimitedError struct {
	Category Category
	Until    time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("envship: %s requests locked until %s due to too many requests",
		e.Category, e.Until.UTC().Format(time.RFC3339Nano))
}

// Is matches ErrRateLimited.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Code   int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("envship: HTTP Error (%d): %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("envship: HTTP Error (%d)", e.Code)
}

// Is matches ErrHTTPStatus.
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// TransportError reports a network level failure (DNS, connect, TLS, timeout).
// No response headers are available for it.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("envship: transport error: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

package delivery

// Status classifies the outcome of a delivery attempt.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusRejectedLocally
	StatusHTTPError
	StatusTransportError
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRejectedLocally:
		return "rejected_locally"
	case StatusHTTPError:
		return "http_error"
	case StatusTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Header names the collector uses to communicate with the client.
const (
	HeaderRateLimits = "X-Sentry-Rate-Limits"
	HeaderRetryAfter = "Retry-After"
	HeaderError      = "X-Sentry-Error"
)

// RateLimitHeaders carries the raw rate-limit response headers.
// Both fields are empty when no response was received.
type RateLimitHeaders struct {
	// RateLimits is the structured x-sentry-rate-limits value.
	RateLimits string

	// RetryAfter is the simple retry-after value.
	RetryAfter string
}

// Empty reports whether neither header is present.
func (h RateLimitHeaders) Empty() bool {
	return h.RateLimits == "" && h.RetryAfter == ""
}

// Result is the outcome of one delivery attempt.
type Result struct {
	JobID    string
	Category Category
	Status   Status

	// Code is the HTTP status code, zero when no response was received.
	Code int

	// Detail is the collector's diagnostic (x-sentry-error) or a local reason.
	Detail string

	// RateLimits is populated for every received response, whatever its status.
	RateLimits RateLimitHeaders
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

package delivery

import (
	"net/http"

	"github.com/google/uuid"
)

// Job is a single delivery attempt.
// It is created by the dispatcher and never mutated afterwards; NewJob copies
// the body and header so later changes by the caller are not observed.
type Job struct {
	// ID correlates log lines for one attempt. It is not sent on the wire.
	ID string

	// Category is the payload kind.
	Category Category

	// URL is the collector endpoint. Any query string is dropped on send.
	URL string

	// Body is the serialized payload.
	Body []byte

	// Header holds per-job overrides. They win over transport defaults.
	Header http.Header
}

// NewJob creates a job with a fresh ID.
func NewJob(category Category, url string, body []byte, header http.Header) Job {
	b := make([]byte, len(body))
	copy(b, body)

	var h http.Header
	if header != nil {
		h = header.Clone()
	}

	return Job{
		ID:       uuid.NewString(),
		Category: category,
		URL:      url,
		Body:     b,
		Header:   h,
	}
}

// Size returns the body length in bytes.
func (j Job) Size() int {
	return len(j.Body)
}

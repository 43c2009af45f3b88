package transport

import (
	"net/http"

	"golang.org/x/time/rate"
)

// pacedRoundTripper holds each request until the limiter grants a token.
type pacedRoundTripper struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func newPacedRoundTripper(base http.RoundTripper, limiter *rate.Limiter) *pacedRoundTripper {
	return &pacedRoundTripper{base: base, limiter: limiter}
}

// RoundTrip waits for a token, then delegates to the base round tripper.
func (rt *pacedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := rt.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return rt.base.RoundTrip(req)
}

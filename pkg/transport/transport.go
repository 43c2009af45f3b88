package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"

	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/ratelimit"
)

const (
	// DefaultClientName identifies envship in the User-Agent and auth headers.
	DefaultClientName = "envship/" + Version

	// DefaultContentType is sent unless a caller overrides it.
	DefaultContentType = "application/x-sentry-envelope"

	// DefaultTimeout bounds one request of the built-in client.
	DefaultTimeout = 30 * time.Second

	// minCompressSize is the smallest body worth compressing.
	minCompressSize = 1024
)

// ErrCustomClient is returned by operations that need the built-in client.
var ErrCustomClient = errors.New("transport: operation not supported with a custom http client")

// Config configures an HTTPTransport.
type Config struct {
	// ClientName is sent as User-Agent. Default: DefaultClientName.
	ClientName string

	// AuthHeader is sent as X-Sentry-Auth when set.
	AuthHeader string

	// Headers are added to every request and override the identification headers.
	Headers http.Header

	// HTTPProxy and HTTPSProxy are explicit proxy URLs; see Resolver.
	HTTPProxy  string
	HTTPSProxy string

	// NoProxy overrides $no_proxy when set.
	NoProxy string

	// CACertsPath points to a PEM bundle used as the only TLS roots.
	CACertsPath string

	// Timeout bounds each request. Default: DefaultTimeout.
	Timeout time.Duration

	// Compress gzips bodies of 1 KiB or more.
	Compress bool

	// RequestsPerSecond paces outgoing requests when positive.
	RequestsPerSecond float64

	// Burst is the pacing burst size. Default: 1.
	Burst int
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient replaces the built-in client.
func WithHTTPClient(client HTTPClient) Option {
	return func(t *HTTPTransport) {
		t.custom = client
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithGetenv sets the environment lookup used for proxy resolution.
func WithGetenv(getenv func(string) string) Option {
	return func(t *HTTPTransport) {
		t.resolver.Getenv = getenv
	}
}

// builtin is the client assembled from Config.
type builtin struct {
	client *http.Client
	base   *http.Transport
}

// HTTPTransport delivers jobs over HTTP. It is safe for concurrent use.
type HTTPTransport struct {
	cfg      Config
	resolver Resolver
	limiter  *rate.Limiter
	logger   log.Logger

	custom  HTTPClient
	current atomic.Pointer[builtin]
}

// New creates a transport from cfg.
// It fails when the CA bundle cannot be loaded.
func New(cfg Config, opts ...Option) (*HTTPTransport, error) {
	if cfg.ClientName == "" {
		cfg.ClientName = DefaultClientName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	t := &HTTPTransport{
		cfg: cfg,
		resolver: Resolver{
			HTTPProxy:  cfg.HTTPProxy,
			HTTPSProxy: cfg.HTTPSProxy,
			NoProxy:    cfg.NoProxy,
		},
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if cfg.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	if t.custom == nil {
		b, err := t.build()
		if err != nil {
			return nil, err
		}
		t.current.Store(b)
	}

	return t, nil
}

// build assembles the built-in client from the current configuration.
func (t *HTTPTransport) build() (*builtin, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.Proxy = func(req *http.Request) (*url.URL, error) {
		return t.resolver.ProxyFor(req.URL)
	}

	if t.cfg.CACertsPath != "" {
		pool, err := loadCertPool(t.cfg.CACertsPath)
		if err != nil {
			return nil, err
		}
		base.TLSClientConfig = tlsConfig(pool)
	}

	var rt http.RoundTripper = base
	if t.limiter != nil {
		rt = newPacedRoundTripper(base, t.limiter)
	}

	return &builtin{
		client: &http.Client{Transport: rt, Timeout: t.cfg.Timeout},
		base:   base,
	}, nil
}

func (t *HTTPTransport) client() HTTPClient {
	if t.custom != nil {
		return t.custom
	}
	return t.current.Load().client
}

// ReloadCACerts re-reads the CA bundle and switches new connections to it.
// Idle connections made with the previous roots are closed.
func (t *HTTPTransport) ReloadCACerts() error {
	if t.custom != nil {
		return ErrCustomClient
	}
	next, err := t.build()
	if err != nil {
		return err
	}
	prev := t.current.Swap(next)
	if prev != nil {
		prev.base.CloseIdleConnections()
	}
	t.logger.Info("reloaded ca certificates", log.String("path", t.cfg.CACertsPath))
	return nil
}

// CACertsPath returns the configured CA bundle path.
func (t *HTTPTransport) CACertsPath() string {
	return t.cfg.CACertsPath
}

// CloseIdleConnections closes idle connections of the built-in client.
func (t *HTTPTransport) CloseIdleConnections() {
	if b := t.current.Load(); b != nil {
		b.base.CloseIdleConnections()
	}
}

// Send performs one delivery attempt.
//
// A 2xx response yields a nil error. Other responses yield *delivery.HTTPError
// and network failures *delivery.TransportError. The result carries the
// response's rate-limit headers whatever the status.
func (t *HTTPTransport) Send(ctx context.Context, job delivery.Job) (delivery.Result, error) {
	res := delivery.Result{JobID: job.ID, Category: job.Category}

	target, err := endpoint(job.URL)
	if err != nil {
		res.Status = delivery.StatusTransportError
		return res, &delivery.TransportError{Cause: err}
	}

	body, encoding := job.Body, ""
	if !t.preEncoded(job) {
		if body, encoding, err = t.encode(job.Body); err != nil {
			res.Status = delivery.StatusTransportError
			return res, &delivery.TransportError{Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		res.Status = delivery.StatusTransportError
		return res, &delivery.TransportError{Cause: fmt.Errorf("create request: %w", err)}
	}
	t.setHeaders(req, job, encoding)

	resp, err := t.client().Do(req)
	if err != nil {
		res.Status = delivery.StatusTransportError
		return res, &delivery.TransportError{Cause: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		t.logger.Debug("drain response body", log.JobID(job.ID), log.Err(err))
	}

	res.Code = resp.StatusCode
	res.RateLimits = ratelimit.HeadersFrom(resp.Header)

	if resp.StatusCode/100 == 2 {
		res.Status = delivery.StatusSuccess
		return res, nil
	}

	res.Status = delivery.StatusHTTPError
	res.Detail = resp.Header.Get(delivery.HeaderError)
	return res, &delivery.HTTPError{Code: resp.StatusCode, Detail: res.Detail}
}

// setHeaders layers identification headers, configured headers, then job overrides.
func (t *HTTPTransport) setHeaders(req *http.Request, job delivery.Job, encoding string) {
	req.Header.Set("User-Agent", t.cfg.ClientName)
	req.Header.Set("Content-Type", DefaultContentType)
	if t.cfg.AuthHeader != "" {
		req.Header.Set("X-Sentry-Auth", t.cfg.AuthHeader)
	}

	for k, vs := range t.cfg.Headers {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	for k, vs := range job.Header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}
}

// preEncoded reports whether a Content-Encoding is already set for job's body.
func (t *HTTPTransport) preEncoded(job delivery.Job) bool {
	return job.Header.Get("Content-Encoding") != "" || t.cfg.Headers.Get("Content-Encoding") != ""
}

func (t *HTTPTransport) encode(body []byte) ([]byte, string, error) {
	if !t.cfg.Compress || len(body) < minCompressSize {
		return body, "", nil
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, "", fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(body); err != nil {
		return nil, "", fmt.Errorf("gzip body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), "gzip", nil
}

// endpoint returns raw without its query string and fragment.
func endpoint(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse destination: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("destination %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("destination %q: missing host", raw)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

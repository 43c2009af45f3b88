package envship

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/dispatch"
	"github.com/bft-labs/envship/pkg/dsn"
	"github.com/bft-labs/envship/pkg/lifecycle"
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/transport"
)

// Client delivers telemetry payloads to one collector.
// It is Running from New until Close. Safe for concurrent use.
type Client struct {
	config     Config
	endpoint   string
	transport  *transport.HTTPTransport
	dispatcher *dispatch.Dispatcher
	lifecycle  *lifecycle.DefaultManager
	logger     log.Logger
	plugins    []Plugin

	cancel context.CancelFunc

	closeMu sync.Mutex
	drained bool
}

// New creates a running client. Plugins are initialized before it returns;
// if one fails, the ones already started are shut down and the error returned.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	parsed, err := dsn.Parse(cfg.DSN)
	if err != nil {
		return nil, err
	}
	endpoint := parsed.EnvelopeURL()
	if cfg.Tunnel != "" {
		endpoint = cfg.Tunnel
	}

	trOpts := []transport.Option{transport.WithLogger(logger)}
	if o.httpClient != nil {
		trOpts = append(trOpts, transport.WithHTTPClient(o.httpClient))
	}
	if o.getenv != nil {
		trOpts = append(trOpts, transport.WithGetenv(o.getenv))
	}
	tr, err := transport.New(transport.Config{
		ClientName:        cfg.ClientName,
		AuthHeader:        parsed.AuthHeader(cfg.ClientName),
		Headers:           toHeader(cfg.Headers),
		HTTPProxy:         cfg.HTTPProxy,
		HTTPSProxy:        cfg.HTTPSProxy,
		NoProxy:           cfg.NoProxy,
		CACertsPath:       cfg.CACertsPath,
		Timeout:           cfg.Timeout,
		Compress:          cfg.Compress,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}, trOpts...)
	if err != nil {
		return nil, err
	}

	var sendVia dispatch.Transport = tr
	if o.eventHandler != nil {
		sendVia = &observedTransport{next: tr, handler: o.eventHandler}
	}

	dispOpts := []dispatch.Option{
		dispatch.WithDestination(endpoint),
		dispatch.WithBufferSize(cfg.BufferSize),
		dispatch.WithLogger(logger),
	}
	if o.recorder != nil {
		dispOpts = append(dispOpts, dispatch.WithRecorder(o.recorder))
	}

	c := &Client{
		config:     cfg,
		endpoint:   endpoint,
		transport:  tr,
		dispatcher: dispatch.New(sendVia, dispOpts...),
		lifecycle:  lifecycle.NewManager(logger, &eventEmitter{handler: o.eventHandler}),
		logger:     logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	pluginCfg := PluginConfig{
		Endpoint:    endpoint,
		CACertsPath: cfg.CACertsPath,
		Transport:   tr,
		Logger:      logger,
	}
	for _, p := range o.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			c.shutdownPlugins()
			return nil, err
		}
		c.plugins = append(c.plugins, p)
		logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	logger.Debug("client ready",
		log.String("endpoint", endpoint),
		log.Int("buffer_size", cfg.BufferSize),
	)

	return c, nil
}

// Send delivers payload under category.
// After Close the returned future is settled with delivery.ErrClosed.
func (c *Client) Send(ctx context.Context, category delivery.Category, payload []byte) *delivery.Pending {
	return c.SendWithHeader(ctx, category, payload, nil)
}

// SendWithHeader is Send with per-request header overrides.
func (c *Client) SendWithHeader(ctx context.Context, category delivery.Category, payload []byte, header http.Header) *delivery.Pending {
	job := delivery.NewJob(category, c.endpoint, payload, header)

	if !c.lifecycle.Enter() {
		return delivery.Settled(delivery.Result{
			JobID:    job.ID,
			Category: category,
			Status:   delivery.StatusRejectedLocally,
		}, delivery.ErrClosed)
	}
	defer c.lifecycle.Leave()

	return c.dispatcher.SendJob(ctx, job)
}

// Close stops accepting sends and waits up to timeout for in-flight
// deliveries. A non-positive timeout selects Config.DrainTimeout. It reports
// whether everything drained. Later calls return the first result.
func (c *Client) Close(timeout time.Duration) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.lifecycle.State() == StateClosed {
		return c.drained
	}
	if timeout <= 0 {
		timeout = c.config.DrainTimeout
	}

	_ = c.lifecycle.TransitionTo(StateDraining, "Close() called")
	deadline := time.Now().Add(timeout)

	// Sends that passed Enter are still handing their job to the buffer.
	_ = c.lifecycle.WaitWithTimeout(timeout)

	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	c.drained = c.dispatcher.Close(remaining)

	c.cancel()
	c.shutdownPlugins()
	c.transport.CloseIdleConnections()

	reason := "drained"
	if !c.drained {
		reason = "drain timeout"
	}
	_ = c.lifecycle.TransitionTo(StateClosed, reason)

	return c.drained
}

// Status returns the current lifecycle state.
func (c *Client) Status() State {
	return c.lifecycle.State()
}

// Endpoint returns the URL payloads are delivered to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RateLimits returns the categories currently suppressed and until when.
func (c *Client) RateLimits() map[delivery.Category]time.Time {
	return c.dispatcher.Tracker().Snapshot()
}

// Pending returns the number of in-flight deliveries.
func (c *Client) Pending() int {
	return c.dispatcher.Buffer().Len()
}

func (c *Client) shutdownPlugins() {
	shutdownCtx := context.Background()
	for i := len(c.plugins) - 1; i >= 0; i-- {
		p := c.plugins[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			c.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
	c.plugins = nil
}

func toHeader(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

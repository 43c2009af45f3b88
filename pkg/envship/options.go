package envship

import (
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/outcome"
	"github.com/bft-labs/envship/pkg/transport"
)

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	httpClient   transport.HTTPClient
	logger       log.Logger
	eventHandler EventHandler
	recorder     outcome.Recorder
	plugins      []Plugin
	getenv       func(string) string
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithHTTPClient sets a custom HTTP client.
// Proxy, CA bundle and pacing settings then belong to that client.
func WithHTTPClient(client transport.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for client events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithRecorder reports discarded payloads to r.
func WithRecorder(r outcome.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithPlugin registers a plugin to be initialized when the client is created.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithGetenv sets the environment lookup used for proxy resolution.
func WithGetenv(getenv func(string) string) Option {
	return func(o *options) {
		o.getenv = getenv
	}
}

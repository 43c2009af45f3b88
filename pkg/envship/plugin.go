package envship

import (
	"context"

	"github.com/bft-labs/envship/pkg/log"
)

// Plugin extends a Client with optional behavior.
// Plugins are initialized in registration order when the client is created
// and shut down in reverse order when it is closed.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize starts the plugin. ctx is cancelled when the client closes.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// CertReloader swaps the TLS roots of a transport.
type CertReloader interface {
	ReloadCACerts() error
	CACertsPath() string
}

// PluginConfig is handed to plugins on Initialize.
type PluginConfig struct {
	// Endpoint is the URL payloads are delivered to.
	Endpoint string

	// CACertsPath is the configured CA bundle, if any.
	CACertsPath string

	// Transport reloads the CA bundle of the client's transport.
	Transport CertReloader

	Logger log.Logger
}

package envship

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bft-labs/envship/pkg/buffer"
	"github.com/bft-labs/envship/pkg/dsn"
	"github.com/bft-labs/envship/pkg/transport"
)

// Configuration errors.
var (
	ErrDSNRequired   = errors.New("envship: dsn is required")
	ErrInvalidTunnel = errors.New("envship: tunnel must be an absolute http(s) URL")
	ErrInvalidConfig = errors.New("envship: invalid configuration")
)

// Config holds the configuration of a Client.
// Use DefaultConfig to get a Config with sensible defaults.
type Config struct {
	// DSN identifies the project and collector. Required.
	DSN string

	// Tunnel, when set, replaces the envelope URL derived from the DSN.
	Tunnel string

	// ClientName is sent as User-Agent and in the auth header.
	// Default: transport.DefaultClientName
	ClientName string

	// BufferSize bounds concurrent in-flight deliveries.
	// Default: 30
	BufferSize int

	// DrainTimeout bounds Close when it is called with a non-positive timeout.
	// Default: 2 seconds
	DrainTimeout time.Duration

	// HTTPProxy and HTTPSProxy are explicit proxy URLs.
	// Empty values fall back to the http_proxy and https_proxy environment.
	HTTPProxy  string
	HTTPSProxy string

	// NoProxy overrides the no_proxy environment when set.
	NoProxy string

	// CACertsPath is a PEM bundle used as the only TLS roots.
	CACertsPath string

	// Timeout bounds one HTTP request.
	// Default: 30 seconds
	Timeout time.Duration

	// Compress gzips request bodies of 1 KiB or more.
	Compress bool

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64

	// Burst is the pacing burst size.
	// Default: 1
	Burst int

	// Headers are added to every request.
	Headers map[string]string
}

// DefaultConfig returns a Config with sensible default values.
// DSN must still be set.
func DefaultConfig() Config {
	return Config{
		ClientName:   transport.DefaultClientName,
		BufferSize:   buffer.DefaultLimit,
		DrainTimeout: buffer.DefaultDrainTimeout,
		Timeout:      transport.DefaultTimeout,
		Burst:        1,
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.ClientName == "" {
		c.ClientName = d.ClientName
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = d.DrainTimeout
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return ErrDSNRequired
	}
	if _, err := dsn.Parse(c.DSN); err != nil {
		return fmt.Errorf("envship: %w", err)
	}
	if c.Tunnel != "" {
		u, err := url.Parse(c.Tunnel)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidTunnel
		}
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer size must not be negative", ErrInvalidConfig)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidConfig)
	}
	return nil
}

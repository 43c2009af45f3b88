// Package envship delivers serialized telemetry payloads to a collector.
//
// Example usage:
//
//	cfg := envship.DefaultConfig()
//	cfg.DSN = "https://public@o1.ingest.example.com/42"
//	client, err := envship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(2 * time.Second)
//
//	client.Send(ctx, envship.CategoryError, envelope)
package envship

import (
	"github.com/bft-labs/envship/pkg/delivery"
	client "github.com/bft-labs/envship/pkg/envship"
)

// Config holds the configuration of a Client.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = client.Config

// Client delivers payloads to one collector.
type Client = client.Client

// Option configures optional behavior of a Client.
type Option = client.Option

// Category identifies the kind of payload being delivered.
type Category = delivery.Category

// Payload categories.
const (
	CategoryError       = delivery.CategoryError
	CategoryTransaction = delivery.CategoryTransaction
	CategorySession     = delivery.CategorySession
	CategoryAttachment  = delivery.CategoryAttachment
)

// New creates a running client.
func New(cfg Config, opts ...Option) (*Client, error) {
	return client.New(cfg, opts...)
}

// DefaultConfig returns a Config with sensible default values.
// DSN must be set before calling New.
func DefaultConfig() Config {
	return client.DefaultConfig()
}

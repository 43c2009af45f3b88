// Package envship provides an embeddable client that delivers serialized
// telemetry payloads (errors, transactions, sessions, attachments) to a
// collector.
//
// # Basic Usage
//
//	cfg := envship.DefaultConfig()
//	cfg.DSN = "https://public@o1.ingest.example.com/42"
//
//	client, err := envship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(2 * time.Second)
//
//	p := client.Send(ctx, delivery.CategoryError, envelope)
//	if _, err := p.Wait(ctx); err != nil {
//	    log.Printf("delivery failed: %v", err)
//	}
//
// Send never blocks on the network. It returns a [delivery.Pending] that is
// settled when the collector answers, or immediately when the payload is
// rejected locally (category suppressed by a server rate limit, or too many
// deliveries in flight).
//
// # Configuration
//
// Create a [Config] with at minimum DSN. All other fields have defaults set
// via [Config.SetDefaults]. Proxies follow the http_proxy, https_proxy and
// no_proxy environment unless set explicitly.
//
// # Dependency Injection
//
//	client, err := envship.New(cfg,
//	    envship.WithHTTPClient(mockClient),
//	    envship.WithLogger(customLogger),
//	    envship.WithRecorder(outcome.NewMemoryRecorder()),
//	)
//
// # Lifecycle States
//
// A Client is [StateRunning] from New, [StateDraining] while Close waits for
// in-flight deliveries and [StateClosed] afterwards. Sends after Close fail
// with [delivery.ErrClosed].
//
// # Plugins
//
//	import "github.com/bft-labs/envship/plugins/cawatcher"
//
//	client, err := envship.New(cfg, cawatcher.WithDefaultCAWatcher())
//
// # Version
//
// Current version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules.
package envship

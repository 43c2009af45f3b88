package cawatcher

import "github.com/bft-labs/envship/pkg/envship"

// WithCAWatcher returns an envship Option that reloads the CA bundle
// whenever the file at Config.CACertsPath changes.
//
// Usage:
//
//	c, err := envship.New(cfg,
//	    cawatcher.WithCAWatcher(cawatcher.Config{
//	        DebounceDelay: 500 * time.Millisecond,
//	    }),
//	)
func WithCAWatcher(cfg Config) envship.Option {
	plugin := New(cfg)
	return envship.WithPlugin(plugin)
}

// WithDefaultCAWatcher returns an envship Option that enables CA watching
// with default settings (debounce 250ms).
func WithDefaultCAWatcher() envship.Option {
	return WithCAWatcher(DefaultConfig())
}

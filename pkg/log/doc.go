// Package log provides the logging abstraction used by envship components.
//
// Components accept a [Logger] and default to [NoopLogger] so the library is
// silent unless the host application opts in. [ZerologAdapter] bridges to
// zerolog, which is what the envship CLI uses.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	d := dispatch.New(tr, dispatch.WithLogger(logger))
//
// Fields are typed key/value pairs built with the helpers in logger.go:
//
//	logger.Warn("rate limited",
//	    log.Category(delivery.CategoryError),
//	    log.Time("until", until),
//	)
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package log

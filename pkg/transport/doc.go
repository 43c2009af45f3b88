// Package transport performs single HTTP delivery attempts to the collector.
//
// [HTTPTransport.Send] posts a job's body, drains the response, classifies
// the outcome and hands back the rate-limit headers of every received
// response, including failed ones, so the caller can keep its rate-limit
// state current.
//
// The built-in client honours proxy settings (see [Resolver]), an optional
// PEM CA bundle, optional gzip compression and optional request pacing.
//
// # Usage
//
//	tr, err := transport.New(transport.Config{
//	    AuthHeader:  d.AuthHeader(transport.DefaultClientName),
//	    HTTPSProxy:  "http://proxy.internal:3128",
//	    CACertsPath: "/etc/envship/ca.pem",
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := tr.Send(ctx, job)
//
// # Custom Clients
//
// [WithHTTPClient] injects any [HTTPClient], for tests or for hosts that
// already own an http.Client. Proxy, CA and pacing settings are then the
// injected client's concern.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package transport

package transport

import (
	"net"
	"net/url"
	"os"
	"strings"
)

// Resolver picks the upstream proxy for a destination.
//
// Resolution order:
//
//   - no_proxy: a destination whose host or host:port ends with any entry
//     bypasses every proxy. This check wins over all other settings.
//   - http:  HTTPProxy, then $http_proxy
//   - https: HTTPSProxy, then HTTPProxy, then $https_proxy, then $http_proxy
type Resolver struct {
	HTTPProxy  string
	HTTPSProxy string

	// NoProxy replaces $no_proxy when non-empty.
	NoProxy string

	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string
}

// env reads the lower-case variable, falling back to upper-case.
func (r Resolver) env(name string) string {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(name); v != "" {
		return v
	}
	return getenv(strings.ToUpper(name))
}

// ProxyFor returns the proxy URL for dest, or nil for a direct connection.
func (r Resolver) ProxyFor(dest *url.URL) (*url.URL, error) {
	if dest == nil {
		return nil, nil
	}

	noProxy := r.NoProxy
	if noProxy == "" {
		noProxy = r.env("no_proxy")
	}
	if noProxy != "" && bypass(dest, noProxy) {
		return nil, nil
	}

	var proxy string
	switch dest.Scheme {
	case "http":
		proxy = firstNonEmpty(r.HTTPProxy, r.env("http_proxy"))
	case "https":
		proxy = firstNonEmpty(r.HTTPSProxy, r.HTTPProxy, r.env("https_proxy"), r.env("http_proxy"))
	}
	if proxy == "" {
		return nil, nil
	}
	return parseProxy(proxy)
}

func bypass(dest *url.URL, noProxy string) bool {
	host := dest.Hostname()
	port := dest.Port()
	if port == "" {
		port = defaultPort(dest.Scheme)
	}
	hostPort := net.JoinHostPort(host, port)

	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == "*" || strings.HasSuffix(host, entry) || strings.HasSuffix(hostPort, entry) {
			return true
		}
	}
	return false
}

func parseProxy(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return url.Parse(raw)
}

func defaultPort(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

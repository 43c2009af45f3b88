package transport

import (
	"net/url"
	"testing"
)

func TestResolver_ProxyFor(t *testing.T) {
	tests := []struct {
		name     string
		resolver Resolver
		env      map[string]string
		dest     string
		want     string
	}{
		{
			name: "no proxy configured",
			dest: "https://o1.ingest.example.com/api/1/envelope/",
			want: "",
		},
		{
			name:     "http uses explicit http proxy",
			resolver: Resolver{HTTPProxy: "http://explicit:3128"},
			env:      map[string]string{"http_proxy": "http://env:3128"},
			dest:     "http://example.com/",
			want:     "http://explicit:3128",
		},
		{
			name: "http falls back to env",
			env:  map[string]string{"http_proxy": "http://env:3128"},
			dest: "http://example.com/",
			want: "http://env:3128",
		},
		{
			name: "http ignores https_proxy",
			env:  map[string]string{"https_proxy": "http://secure:3128"},
			dest: "http://example.com/",
			want: "",
		},
		{
			name:     "https prefers explicit https proxy",
			resolver: Resolver{HTTPProxy: "http://plain:3128", HTTPSProxy: "http://secure:3128"},
			dest:     "https://example.com/",
			want:     "http://secure:3128",
		},
		{
			name:     "https falls back to explicit http proxy before env",
			resolver: Resolver{HTTPProxy: "http://plain:3128"},
			env:      map[string]string{"https_proxy": "http://env-secure:3128"},
			dest:     "https://example.com/",
			want:     "http://plain:3128",
		},
		{
			name: "https uses https_proxy env",
			env:  map[string]string{"https_proxy": "http://env-secure:3128", "http_proxy": "http://env:3128"},
			dest: "https://example.com/",
			want: "http://env-secure:3128",
		},
		{
			name: "https falls back to http_proxy env",
			env:  map[string]string{"http_proxy": "http://env:3128"},
			dest: "https://example.com/",
			want: "http://env:3128",
		},
		{
			name: "upper-case env names",
			env:  map[string]string{"HTTPS_PROXY": "http://upper:3128"},
			dest: "https://example.com/",
			want: "http://upper:3128",
		},
		{
			name:     "no_proxy host suffix wins over explicit config",
			resolver: Resolver{HTTPSProxy: "http://secure:3128"},
			env:      map[string]string{"no_proxy": "internal.net, example.com"},
			dest:     "https://o1.example.com/",
			want:     "",
		},
		{
			name: "no_proxy host:port match",
			env:  map[string]string{"no_proxy": "example.com:8989", "http_proxy": "http://env:3128"},
			dest: "http://example.com:8989/",
			want: "",
		},
		{
			name: "no_proxy port mismatch keeps proxy",
			env:  map[string]string{"no_proxy": "example.com:8989", "http_proxy": "http://env:3128"},
			dest: "http://other.org:8989/",
			want: "http://env:3128",
		},
		{
			name: "no_proxy blank entries ignored",
			env:  map[string]string{"no_proxy": "internal.net,,", "http_proxy": "http://env:3128"},
			dest: "http://example.com/",
			want: "http://env:3128",
		},
		{
			name:     "explicit NoProxy overrides env",
			resolver: Resolver{NoProxy: "example.com"},
			env:      map[string]string{"no_proxy": "other.org", "http_proxy": "http://env:3128"},
			dest:     "http://example.com/",
			want:     "",
		},
		{
			name:     "scheme-less proxy value",
			resolver: Resolver{HTTPProxy: "proxy.local:8080"},
			dest:     "http://example.com/",
			want:     "http://proxy.local:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.resolver
			env := tt.env
			r.Getenv = func(k string) string { return env[k] }

			dest, err := url.Parse(tt.dest)
			if err != nil {
				t.Fatal(err)
			}
			got, err := r.ProxyFor(dest)
			if err != nil {
				t.Fatalf("ProxyFor() error = %v", err)
			}

			gotStr := ""
			if got != nil {
				gotStr = got.String()
			}
			if gotStr != tt.want {
				t.Errorf("ProxyFor(%s) = %q, want %q", tt.dest, gotStr, tt.want)
			}
		})
	}
}

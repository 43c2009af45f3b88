package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bft-labs/envship/internal/cliconfig"
)

func TestReadPayloads(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	if err := os.WriteFile(a, []byte(`{"a":1}`), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := readPayloads([]string{a, "-"}, strings.NewReader("from stdin"))
	if err != nil {
		t.Fatalf("readPayloads() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].source != a || string(got[0].body) != `{"a":1}` {
		t.Errorf("payload[0] = %+v", got[0])
	}
	if got[1].source != "stdin" || string(got[1].body) != "from stdin" {
		t.Errorf("payload[1] = %+v", got[1])
	}

	got, err = readPayloads(nil, strings.NewReader("x"))
	if err != nil || len(got) != 1 || got[0].source != "stdin" {
		t.Errorf("readPayloads(nil) = %+v, %v", got, err)
	}

	if _, err := readPayloads([]string{filepath.Join(dir, "missing")}, nil); err == nil {
		t.Error("readPayloads() expected error for missing file")
	}
	if _, err := readPayloads([]string{"-"}, strings.NewReader("")); err == nil {
		t.Error("readPayloads() expected error for empty payload")
	}
}

func TestRunSend(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "all delivered", status: http.StatusOK},
		{name: "collector rejects", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			cfg := cliconfig.DefaultConfig()
			cfg.DSN = "https://public@o1.ingest.example.com/42"
			cfg.Tunnel = srv.URL + "/tunnel"
			cfg.NoProxy = "127.0.0.1"
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			payloads := []payload{
				{source: "one", body: []byte("1")},
				{source: "two", body: []byte("2")},
			}

			err := runSend(context.Background(), cfg, zerolog.Nop(), payloads)
			if (err != nil) != tt.wantErr {
				t.Errorf("runSend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := hits.Load(); got != 2 {
				t.Errorf("collector hits = %d, want 2", got)
			}
		})
	}
}

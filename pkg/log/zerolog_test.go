package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/envship/pkg/delivery"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf))

	until := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	adapter.Warn("rate limited",
		Category(delivery.CategoryError),
		Time("until", until),
		Int("code", 429),
		Bool("limited", true),
		Err(errors.New("boom")),
		JobID("abc"),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}

	checks := map[string]interface{}{
		"level":    "warn",
		"message":  "rate limited",
		"category": "error",
		"code":     float64(429),
		"limited":  true,
		"error":    "boom",
		"job_id":   "abc",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
	if _, ok := got["until"]; !ok {
		t.Error("until field missing")
	}
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	adapter.Debug("hidden")
	adapter.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	adapter.Error("shown")
	if buf.Len() == 0 {
		t.Error("expected error output")
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x", Err(errors.New("ignored")))
}

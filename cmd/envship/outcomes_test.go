package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

// stubRedis answers HGetAll from a fixed hash; every other command panics.
type stubRedis struct {
	redis.Cmdable
	key  string
	hash map[string]string
	err  error
}

func (s *stubRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(ctx, "hgetall", key)
	switch {
	case s.err != nil:
		cmd.SetErr(s.err)
	case key == s.key:
		cmd.SetVal(s.hash)
	default:
		cmd.SetVal(map[string]string{})
	}
	return cmd
}

func TestPrintTotals(t *testing.T) {
	rdb := &stubRedis{
		key: "team:total",
		hash: map[string]string{
			"transaction:send_error":    "2",
			"error:ratelimit_backoff":   "7",
			"error:buffer_overflow":     "1",
			"attachment:network_error":  "3",
			"session:ratelimit_backoff": "not-a-number",
		},
	}

	var out bytes.Buffer
	if err := printTotals(context.Background(), &out, rdb, "team"); err != nil {
		t.Fatalf("printTotals() error = %v", err)
	}

	want := "attachment:network_error\t3\n" +
		"error:buffer_overflow\t1\n" +
		"error:ratelimit_backoff\t7\n" +
		"transaction:send_error\t2\n"
	if out.String() != want {
		t.Errorf("printTotals() output = %q, want %q", out.String(), want)
	}
}

func TestPrintTotals_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := printTotals(context.Background(), &out, &stubRedis{key: "other:total"}, "team"); err != nil {
		t.Fatalf("printTotals() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("printTotals() output = %q, want empty", out.String())
	}
}

func TestPrintTotals_Error(t *testing.T) {
	boom := errors.New("connection reset")
	err := printTotals(context.Background(), &bytes.Buffer{}, &stubRedis{err: boom}, "team")
	if !errors.Is(err, boom) {
		t.Errorf("printTotals() error = %v, want %v", err, boom)
	}
}

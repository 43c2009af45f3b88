package outcome

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the key prefix used by RedisRecorder.
const DefaultRedisPrefix = "envship:outcomes"

// RedisRecorder increments Redis hash counters.
//
// Keys written per outcome:
//
//	{prefix}:total                  field "{category}:{reason}", never expires
//	{prefix}:minute:{200601021504}  same field, expires after the TTL
type RedisRecorder struct {
	rdb redis.Cmdable

	prefix string
	ttl    time.Duration
	bucket bool
}

// RedisOption configures a RedisRecorder.
type RedisOption func(*RedisRecorder)

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *RedisRecorder) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithRedisTTL sets the expiry of per-minute keys. Zero keeps them forever.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(r *RedisRecorder) { r.ttl = d }
}

// WithMinuteBuckets enables or disables the per-minute keys. Default: enabled.
func WithMinuteBuckets(enabled bool) RedisOption {
	return func(r *RedisRecorder) { r.bucket = enabled }
}

// NewRedisRecorder creates a recorder writing through rdb.
// A nil rdb yields a recorder that drops everything.
func NewRedisRecorder(rdb redis.Cmdable, opts ...RedisOption) *RedisRecorder {
	r := &RedisRecorder{
		rdb:    rdb,
		prefix: DefaultRedisPrefix,
		ttl:    24 * time.Hour,
		bucket: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record increments the counters of o in one pipeline.
func (r *RedisRecorder) Record(ctx context.Context, o Outcome) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	qty := o.Quantity
	if qty <= 0 {
		qty = 1
	}
	field := string(o.Category) + ":" + string(o.Reason)

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.totalKey(), field, qty)

	if r.bucket {
		key := r.minuteKey(at)
		pipe.HIncrBy(ctx, key, field, qty)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// Totals reads the cumulative counters, keyed by "{category}:{reason}".
func (r *RedisRecorder) Totals(ctx context.Context) (map[string]int64, error) {
	if r == nil || r.rdb == nil {
		return map[string]int64{}, nil
	}

	raw, err := r.rdb.HGetAll(ctx, r.totalKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("read outcome totals: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		var n int64
		if _, err := fmt.Sscan(v, &n); err != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}

func (r *RedisRecorder) totalKey() string {
	return r.prefix + ":total"
}

func (r *RedisRecorder) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
}

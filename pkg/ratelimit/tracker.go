package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
)

// Tracker is the single source of truth for category suppression.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	limits map[delivery.Category]time.Time
	clock  func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		limits: make(map[delivery.Category]time.Time),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DisabledUntil returns the time until which category is suppressed.
// The category's own entry wins over the wildcard; zero means never limited.
func (t *Tracker) DisabledUntil(category delivery.Category) time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if until, ok := t.limits[category]; ok {
		return until
	}
	return t.limits[delivery.CategoryAll]
}

// IsLimited reports whether category is suppressed right now.
func (t *Tracker) IsLimited(category delivery.Category) bool {
	return t.DisabledUntil(category).After(t.clock())
}

// Apply updates the table from response headers and reports whether any
// rate-limit information was present. The structured header takes
// precedence; retry-after is only used without it.
func (t *Tracker) Apply(h delivery.RateLimitHeaders) bool {
	now := t.clock()

	if strings.TrimSpace(h.RateLimits) != "" {
		limits := ParseRateLimits(h.RateLimits)

		t.mu.Lock()
		defer t.mu.Unlock()
		for _, lim := range limits {
			until := now.Add(lim.Delay)
			for _, c := range lim.Categories {
				t.limits[c] = until
			}
		}
		return true
	}

	if strings.TrimSpace(h.RetryAfter) != "" {
		until := now.Add(ParseRetryAfter(h.RetryAfter, now))

		t.mu.Lock()
		defer t.mu.Unlock()
		t.limits[delivery.CategoryAll] = until
		return true
	}

	return false
}

// Snapshot returns the entries that are still in the future.
func (t *Tracker) Snapshot() map[delivery.Category]time.Time {
	now := t.clock()

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[delivery.Category]time.Time, len(t.limits))
	for c, until := range t.limits {
		if until.After(now) {
			out[c] = until
		}
	}
	return out
}

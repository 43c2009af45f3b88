package ratelimit

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
)

// DefaultRetryAfter applies when a header carries no usable delay.
const DefaultRetryAfter = 60 * time.Second

// MaxDelay is the longest representable delay. Larger header values clamp to it.
const MaxDelay = time.Duration(math.MaxInt64)

// Limit is one parsed entry of the structured rate-limit header.
type Limit struct {
	// Delay is how long the categories stay suppressed.
	Delay time.Duration

	// Categories are the trackable categories named by the entry.
	// An entry without categories yields [delivery.CategoryAll].
	Categories []delivery.Category
}

// ParseRateLimits parses an x-sentry-rate-limits value.
//
// Entries are comma separated, each of the form
//
//	retry_after_ms:category;category:scope:reason_code
//
// scope and reason_code are ignored. Unknown categories are dropped. Blank
// entries are skipped.
func ParseRateLimits(value string) []Limit {
	var limits []Limit
	for _, entry := range strings.Split(strings.TrimSpace(value), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)

		delay := DefaultRetryAfter
		if ms, ok := parseCount(parts[0]); ok {
			delay = scale(ms, time.Millisecond)
		}

		var names []string
		if len(parts) > 1 {
			names = strings.Split(parts[1], ";")
		}

		lim := Limit{Delay: delay}
		explicit := false
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			explicit = true
			if c := delivery.Category(name); c.Trackable() {
				lim.Categories = append(lim.Categories, c)
			}
		}
		if !explicit {
			lim.Categories = []delivery.Category{delivery.CategoryAll}
		}

		limits = append(limits, lim)
	}
	return limits
}

// ParseRetryAfter parses a retry-after value given in seconds or as an HTTP date.
// Unparseable values yield DefaultRetryAfter.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if secs, ok := parseCount(value); ok {
		return scale(secs, time.Second)
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}

// HeadersFrom extracts the rate-limit headers from an HTTP response header.
func HeadersFrom(h http.Header) delivery.RateLimitHeaders {
	if h == nil {
		return delivery.RateLimitHeaders{}
	}
	return delivery.RateLimitHeaders{
		RateLimits: h.Get(delivery.HeaderRateLimits),
		RetryAfter: h.Get(delivery.HeaderRetryAfter),
	}
}

// parseCount parses a non-negative integer. Values past int64 saturate.
func parseCount(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && n > 0 {
			return n, true
		}
		return 0, false
	}
	return n, n >= 0
}

func scale(n int64, unit time.Duration) time.Duration {
	if n > int64(MaxDelay/unit) {
		return MaxDelay
	}
	return time.Duration(n) * unit
}

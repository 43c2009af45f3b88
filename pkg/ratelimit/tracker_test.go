package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTracker_StructuredHeaderWindow(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))

	if !tr.Apply(delivery.RateLimitHeaders{RateLimits: "60000:error;transaction::key"}) {
		t.Fatal("Apply() = false, want true")
	}

	clock.Advance(30 * time.Second)
	if !tr.IsLimited(delivery.CategoryError) {
		t.Error("error should be limited at 30s")
	}
	if !tr.IsLimited(delivery.CategoryTransaction) {
		t.Error("transaction should be limited at 30s")
	}
	if tr.IsLimited(delivery.CategorySession) {
		t.Error("session should not be limited")
	}

	clock.Advance(30*time.Second + time.Millisecond)
	if tr.IsLimited(delivery.CategoryError) {
		t.Error("error should not be limited at 60.001s")
	}
}

func TestTracker_RetryAfterAppliesToAll(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))

	if !tr.Apply(delivery.RateLimitHeaders{RetryAfter: "30"}) {
		t.Fatal("Apply() = false, want true")
	}

	clock.Advance(20 * time.Second)
	if !tr.IsLimited(delivery.CategorySession) {
		t.Error("session should be limited at 20s via all")
	}

	clock.Advance(10*time.Second + time.Millisecond)
	if tr.IsLimited(delivery.CategorySession) {
		t.Error("session should not be limited at 30.001s")
	}
}

func TestTracker_NewestEntryWins(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	start := clock.Now()

	tr.Apply(delivery.RateLimitHeaders{RateLimits: "120000:error"})
	tr.Apply(delivery.RateLimitHeaders{RateLimits: "5000:error"})

	want := start.Add(5 * time.Second)
	if got := tr.DisabledUntil(delivery.CategoryError); !got.Equal(want) {
		t.Errorf("DisabledUntil = %v, want %v", got, want)
	}

	clock.Advance(6 * time.Second)
	if tr.IsLimited(delivery.CategoryError) {
		t.Error("error should follow the newest, shorter window")
	}

	tr.Apply(delivery.RateLimitHeaders{RateLimits: "10000:error"})
	if !tr.IsLimited(delivery.CategoryError) {
		t.Error("error should be limited again after a new header")
	}
}

func TestTracker_WildcardFallback(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	start := clock.Now()

	tr.Apply(delivery.RateLimitHeaders{RateLimits: "10000::org"})

	want := start.Add(10 * time.Second)
	if got := tr.DisabledUntil(delivery.CategoryError); !got.Equal(want) {
		t.Errorf("DisabledUntil(error) = %v, want %v", got, want)
	}

	// A specific entry shadows the wildcard, even when shorter.
	tr.Apply(delivery.RateLimitHeaders{RateLimits: "1000:error"})
	if got := tr.DisabledUntil(delivery.CategoryError); !got.Equal(start.Add(time.Second)) {
		t.Errorf("DisabledUntil(error) = %v, want specific entry", got)
	}
	if got := tr.DisabledUntil(delivery.CategorySession); !got.Equal(want) {
		t.Errorf("DisabledUntil(session) = %v, want %v", got, want)
	}
}

func TestTracker_StructuredTakesPrecedence(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))

	tr.Apply(delivery.RateLimitHeaders{
		RateLimits: "1000:attachment",
		RetryAfter: "3600",
	})

	if tr.IsLimited(delivery.CategoryError) {
		t.Error("retry-after must be ignored when the structured header is present")
	}
	if !tr.IsLimited(delivery.CategoryAttachment) {
		t.Error("attachment should be limited")
	}
}

func TestTracker_HugeDelayStaysLimited(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))

	tr.Apply(delivery.RateLimitHeaders{RateLimits: "9999999999999:error::key"})

	if !tr.IsLimited(delivery.CategoryError) {
		t.Error("IsLimited(error) = false after a huge delay")
	}
	if until := tr.DisabledUntil(delivery.CategoryError); !until.After(clock.Now().Add(100 * 365 * 24 * time.Hour)) {
		t.Errorf("DisabledUntil(error) = %v, want far future", until)
	}
}

func TestTracker_UnknownCategoriesDropped(t *testing.T) {
	tr := NewTracker()

	if !tr.Apply(delivery.RateLimitHeaders{RateLimits: "60000:profile;replay:key"}) {
		t.Error("Apply() should report the header as present")
	}
	if n := len(tr.Snapshot()); n != 0 {
		t.Errorf("Snapshot() has %d entries, want 0", n)
	}
	if tr.IsLimited(delivery.CategoryError) {
		t.Error("unknown categories must not limit anything")
	}
}

func TestTracker_NoHeaders(t *testing.T) {
	tr := NewTracker()
	if tr.Apply(delivery.RateLimitHeaders{RateLimits: "  ", RetryAfter: ""}) {
		t.Error("Apply() = true for blank headers, want false")
	}
	if !tr.DisabledUntil(delivery.CategoryError).IsZero() {
		t.Error("DisabledUntil should be zero")
	}
}

func TestTracker_Snapshot(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))

	tr.Apply(delivery.RateLimitHeaders{RateLimits: "1000:error, 5000:session"})
	clock.Advance(2 * time.Second)

	snap := tr.Snapshot()
	if _, ok := snap[delivery.CategoryError]; ok {
		t.Error("expired entry should not be in snapshot")
	}
	if _, ok := snap[delivery.CategorySession]; !ok {
		t.Error("session should be in snapshot")
	}
}

func TestTracker_ConcurrentApply(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Apply(delivery.RateLimitHeaders{RateLimits: "60000:error"})
			_ = tr.IsLimited(delivery.CategoryError)
		}()
	}
	wg.Wait()

	if !tr.IsLimited(delivery.CategoryError) {
		t.Error("error should be limited")
	}
}

func TestParseRateLimits(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []Limit
	}{
		{
			name:  "single entry",
			value: "60000:error;transaction::key",
			want: []Limit{{Delay: time.Minute, Categories: []delivery.Category{
				delivery.CategoryError, delivery.CategoryTransaction,
			}}},
		},
		{
			name:  "empty categories mean all",
			value: "2000::org:quota",
			want:  []Limit{{Delay: 2 * time.Second, Categories: []delivery.Category{delivery.CategoryAll}}},
		},
		{
			name:  "bare delay",
			value: "2000",
			want:  []Limit{{Delay: 2 * time.Second, Categories: []delivery.Category{delivery.CategoryAll}}},
		},
		{
			name:  "non numeric delay defaults",
			value: "soon:session",
			want:  []Limit{{Delay: DefaultRetryAfter, Categories: []delivery.Category{delivery.CategorySession}}},
		},
		{
			name:  "multiple entries with spaces and blanks",
			value: " 1000:error , ,5000:attachment;bogus ",
			want: []Limit{
				{Delay: time.Second, Categories: []delivery.Category{delivery.CategoryError}},
				{Delay: 5 * time.Second, Categories: []delivery.Category{delivery.CategoryAttachment}},
			},
		},
		{
			name:  "huge delay clamps",
			value: "9999999999999:error::key",
			want:  []Limit{{Delay: MaxDelay, Categories: []delivery.Category{delivery.CategoryError}}},
		},
		{
			name:  "delay past int64 clamps",
			value: "99999999999999999999999:session",
			want:  []Limit{{Delay: MaxDelay, Categories: []delivery.Category{delivery.CategorySession}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRateLimits(tt.value)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseRateLimits() returned %d limits, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Delay != tt.want[i].Delay {
					t.Errorf("limit %d Delay = %v, want %v", i, got[i].Delay, tt.want[i].Delay)
				}
				if len(got[i].Categories) != len(tt.want[i].Categories) {
					t.Fatalf("limit %d Categories = %v, want %v", i, got[i].Categories, tt.want[i].Categories)
				}
				for j := range got[i].Categories {
					if got[i].Categories[j] != tt.want[i].Categories[j] {
						t.Errorf("limit %d Categories = %v, want %v", i, got[i].Categories, tt.want[i].Categories)
					}
				}
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"seconds", "30", 30 * time.Second},
		{"zero", "0", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past http date", now.Add(-time.Hour).Format(http.TimeFormat), 0},
		{"garbage", "later", DefaultRetryAfter},
		{"huge seconds clamp", "99999999999", MaxDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestHeadersFrom(t *testing.T) {
	h := http.Header{}
	h.Set("x-sentry-rate-limits", "1000:error")
	h.Set("retry-after", "5")

	got := HeadersFrom(h)
	if got.RateLimits != "1000:error" || got.RetryAfter != "5" {
		t.Errorf("HeadersFrom() = %+v", got)
	}
	if !HeadersFrom(nil).Empty() {
		t.Error("HeadersFrom(nil) should be empty")
	}
}

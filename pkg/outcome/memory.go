package outcome

import (
	"context"
	"sort"
	"sync"

	"github.com/bft-labs/envship/pkg/delivery"
)

// Key identifies one counter.
type Key struct {
	Category delivery.Category
	Reason   Reason
}

// MemoryRecorder keeps counters in memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	counts map[Key]int64
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{counts: make(map[Key]int64)}
}

// Record adds o.Quantity (at least 1) to the counter of o.
func (m *MemoryRecorder) Record(_ context.Context, o Outcome) error {
	qty := o.Quantity
	if qty <= 0 {
		qty = 1
	}

	m.mu.Lock()
	m.counts[Key{Category: o.Category, Reason: o.Reason}] += qty
	m.mu.Unlock()
	return nil
}

// Count returns the counter for category and reason.
func (m *MemoryRecorder) Count(category delivery.Category, reason Reason) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[Key{Category: category, Reason: reason}]
}

// Total returns the sum of all counters.
func (m *MemoryRecorder) Total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, n := range m.counts {
		total += n
	}
	return total
}

// Snapshot returns the non-zero counters sorted by category, then reason.
func (m *MemoryRecorder) Snapshot() []Outcome {
	m.mu.Lock()
	out := make([]Outcome, 0, len(m.counts))
	for k, n := range m.counts {
		out = append(out, Outcome{Category: k.Category, Reason: k.Reason, Quantity: n})
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

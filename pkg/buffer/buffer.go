package buffer

import (
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
)

const (
	// DefaultLimit is the in-flight limit used when none is given.
	DefaultLimit = 30

	// DefaultDrainTimeout bounds Drain when called with a non-positive timeout.
	DefaultDrainTimeout = 2 * time.Second
)

// Task performs one delivery.
type Task func() (delivery.Result, error)

// Buffer is a bounded set of in-flight tasks.
type Buffer struct {
	mu          sync.Mutex
	limit       int
	outstanding int

	// idle is closed whenever outstanding is zero.
	idle chan struct{}
}

// New creates a buffer admitting at most limit concurrent tasks.
// A non-positive limit selects DefaultLimit.
func New(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	idle := make(chan struct{})
	close(idle)
	return &Buffer{limit: limit, idle: idle}
}

// Limit returns the configured in-flight limit.
func (b *Buffer) Limit() int {
	return b.limit
}

// Len returns the number of outstanding tasks.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding
}

// IsReady reports whether another task would be admitted.
func (b *Buffer) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding < b.limit
}

// Add admits task and runs it in the background.
// It returns delivery.ErrBufferFull without running task when the limit is reached.
func (b *Buffer) Add(task Task) (*delivery.Pending, error) {
	b.mu.Lock()
	if b.outstanding >= b.limit {
		b.mu.Unlock()
		return nil, delivery.ErrBufferFull
	}
	if b.outstanding == 0 {
		b.idle = make(chan struct{})
	}
	b.outstanding++
	b.mu.Unlock()

	p := delivery.NewPending()
	go b.run(task, p)
	return p, nil
}

// run frees the slot before settling p, so a caller woken by p can Add at once.
func (b *Buffer) run(task Task, p *delivery.Pending) {
	res, err := call(task)
	b.release()
	p.Settle(res, err)
}

func call(task Task) (res delivery.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = delivery.Result{Status: delivery.StatusTransportError}
			err = fmt.Errorf("envship: delivery task panicked: %v", r)
		}
	}()
	return task()
}

func (b *Buffer) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.outstanding--
	if b.outstanding == 0 {
		close(b.idle)
	}
}

// Drain waits until no tasks are outstanding and reports whether that happened
// before timeout. A non-positive timeout selects DefaultDrainTimeout.
func (b *Buffer) Drain(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}

	b.mu.Lock()
	idle := b.idle
	b.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-idle:
		return true
	case <-timer.C:
		return false
	}
}

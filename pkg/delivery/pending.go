package delivery

import (
	"context"
	"sync"
)

// Pending is the future result of a submitted job.
// It is settled exactly once; later Settle calls are ignored.
type Pending struct {
	once   sync.Once
	done   chan struct{}
	result Result
	err    error
}

// NewPending creates an unsettled future.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Settled returns a future that is already resolved with result and err.
func Settled(result Result, err error) *Pending {
	p := NewPending()
	p.Settle(result, err)
	return p
}

// Settle resolves the future. It reports whether this call settled it.
func (p *Pending) Settle(result Result, err error) bool {
	settled := false
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
		settled = true
	})
	return settled
}

// Done is closed once the future is settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the future settles or ctx is done.
// A done ctx only stops the wait; the delivery itself keeps running.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while unsettled.
func (p *Pending) Result() (result Result, err error, ok bool) {
	select {
	case <-p.done:
		return p.result, p.err, true
	default:
		return Result{}, nil, false
	}
}

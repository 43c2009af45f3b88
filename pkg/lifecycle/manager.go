package lifecycle

import (
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/envship/pkg/log"
)

// Common lifecycle errors.
var (
	ErrNotRunning      = errors.New("not running")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrShutdownTimeout = errors.New("shutdown timeout")
)

// DefaultManager implements Manager. It starts in StateRunning.
type DefaultManager struct {
	mu           sync.RWMutex
	state        State
	wg           sync.WaitGroup
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewManager creates a new lifecycle manager.
func NewManager(logger log.Logger, emitter EventEmitter) *DefaultManager {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &DefaultManager{
		state:        StateRunning,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *DefaultManager) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Valid transitions are Running -> Draining and Draining -> Closed.
func (l *DefaultManager) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	// Validate transition
	switch oldState {
	case StateRunning:
		if newState != StateDraining {
			l.mu.Unlock()
			return ErrInvalidState
		}
	case StateDraining:
		if newState != StateClosed {
			l.mu.Unlock()
			return ErrInvalidState
		}
	default:
		l.mu.Unlock()
		return ErrNotRunning
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// Enter registers an in-progress call while running.
func (l *DefaultManager) Enter() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state != StateRunning {
		return false
	}
	l.wg.Add(1)
	return true
}

// Leave ends a call registered with Enter.
func (l *DefaultManager) Leave() {
	l.wg.Done()
}

// WaitWithTimeout waits for all entered calls to leave.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *DefaultManager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, calls still in progress",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}

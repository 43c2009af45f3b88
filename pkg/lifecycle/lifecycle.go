package lifecycle

import "time"

// State represents the lifecycle state of a client.
type State int

const (
	StateRunning State = iota
	StateDraining
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Manager manages the lifecycle state machine of a client.
type Manager interface {
	// State returns the current lifecycle state.
	State() State

	// TransitionTo attempts to transition to a new state.
	// Returns an error if the transition is not valid.
	TransitionTo(newState State, reason string) error

	// Enter registers an in-progress call. It returns false unless running;
	// a true result must be paired with Leave.
	Enter() bool

	// Leave ends a call registered with Enter.
	Leave()

	// WaitWithTimeout waits for all entered calls to leave.
	// Returns ErrShutdownTimeout if the timeout expires.
	WaitWithTimeout(timeout time.Duration) error
}

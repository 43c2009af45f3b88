package lifecycle

import (
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/envship/pkg/log"
)

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewManager(t *testing.T) {
	l := NewManager(nil, nil)

	if l.State() != StateRunning {
		t.Errorf("initial state = %v, want StateRunning", l.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "Running"},
		{StateDraining, "Draining"},
		{StateClosed, "Closed"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestManager_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"running to draining", StateRunning, StateDraining, nil},
		{"draining to closed", StateDraining, StateClosed, nil},
		{"running to closed", StateRunning, StateClosed, ErrInvalidState},
		{"running to running", StateRunning, StateRunning, ErrInvalidState},
		{"draining to running", StateDraining, StateRunning, ErrInvalidState},
		{"closed to running", StateClosed, StateRunning, ErrNotRunning},
		{"closed to draining", StateClosed, StateDraining, ErrNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewManager(log.NewNoopLogger(), nil)
			l.state = tt.from

			err := l.TransitionTo(tt.to, "test")

			if err != tt.wantErr {
				t.Errorf("TransitionTo() error = %v, want %v", err, tt.wantErr)
			}
			want := tt.to
			if tt.wantErr != nil {
				want = tt.from
			}
			if l.State() != want {
				t.Errorf("state = %v, want %v", l.State(), want)
			}
		})
	}
}

func TestManager_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewManager(log.NewNoopLogger(), emitter)

	_ = l.TransitionTo(StateDraining, "close requested")
	_ = l.TransitionTo(StateClosed, "drained")

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].previous != StateRunning || events[0].current != StateDraining {
		t.Errorf("event 0: got %v->%v, want Running->Draining", events[0].previous, events[0].current)
	}
	if events[1].current != StateClosed || events[1].reason != "drained" {
		t.Errorf("event 1: got %v (%s), want Closed (drained)", events[1].current, events[1].reason)
	}
}

func TestManager_Enter(t *testing.T) {
	l := NewManager(nil, nil)

	if !l.Enter() {
		t.Fatal("Enter() = false while running")
	}
	l.Leave()

	_ = l.TransitionTo(StateDraining, "test")
	if l.Enter() {
		t.Error("Enter() = true while draining")
	}
}

func TestManager_WaitWithTimeout_Success(t *testing.T) {
	l := NewManager(nil, nil)

	if !l.Enter() {
		t.Fatal("Enter() = false")
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Leave()
	}()

	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() = %v, want nil", err)
	}
}

func TestManager_WaitWithTimeout_Timeout(t *testing.T) {
	l := NewManager(nil, nil)

	l.Enter()
	// Never call Leave

	if err := l.WaitWithTimeout(10 * time.Millisecond); err != ErrShutdownTimeout {
		t.Errorf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}

	// Clean up
	l.Leave()
}

func TestManager_Concurrency(t *testing.T) {
	l := NewManager(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if l.Enter() {
					l.Leave()
				}
				_ = l.State()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.TransitionTo(StateDraining, "test")
	}()

	wg.Wait()

	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() = %v", err)
	}
}

// Package lifecycle provides the state machine of an envship client.
//
// A client is Running from construction. Close moves it to Draining, where
// new sends are refused while in-flight deliveries finish, and then to
// Closed.
//
// # Usage
//
//	manager := lifecycle.NewManager(logger, eventEmitter)
//
//	if !manager.Enter() {
//	    return ErrClosed
//	}
//	defer manager.Leave()
//
//	// Shutdown
//	_ = manager.TransitionTo(lifecycle.StateDraining, "close requested")
//	_ = manager.WaitWithTimeout(time.Second)
//	_ = manager.TransitionTo(lifecycle.StateClosed, "drained")
//
// # State Machine
//
// Valid state transitions:
//   - Running -> Draining
//   - Draining -> Closed
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle

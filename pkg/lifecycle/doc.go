// Package lifecycle tracks the run state of a background component.
//
// A component is started at most once. The manager validates transitions,
// owns the cancel function of the running goroutines, and counts workers so
// that a shutdown can be joined with a deadline.
//
//	m := lifecycle.NewManager(logger, emitter)
//	if err := m.TransitionTo(lifecycle.StateRunning, "started"); err != nil {
//	    return err
//	}
//	m.AddWorker()
//	go func() {
//	    defer m.WorkerDone()
//	    // ...
//	}()
//
// # State Machine
//
// Valid state transitions:
//   - Idle -> Running
//   - Running -> Stopping
//   - Stopping -> Stopped
//
// Stopped is terminal.
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package lifecycle

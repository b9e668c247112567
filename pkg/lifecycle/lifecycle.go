package lifecycle

import "time"

// State is the run state of a component.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when the state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Manager is the interface satisfied by DefaultManager.
type Manager interface {
	State() State
	TransitionTo(newState State, reason string) error
	WaitWithTimeout(timeout time.Duration) error
	AddWorker()
	WorkerDone()
}

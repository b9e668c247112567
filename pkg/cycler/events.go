package cycler

import (
	"time"

	"github.com/bft-labs/phasecycle/pkg/lifecycle"
)

// State is the run state of a cycler.
type State = lifecycle.State

// Run states re-exported for convenience.
const (
	StateIdle     = lifecycle.StateIdle
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateStopped  = lifecycle.StateStopped
)

// PhaseChangeEvent describes one toggle.
type PhaseChangeEvent struct {
	CyclerID string
	Previous Phase
	Current  Phase
	// Seq counts toggles starting at 1.
	Seq uint64
	// Cycle is the duration that elapsed before this toggle was due.
	Cycle time.Duration
	At    time.Time
}

// StateChangeEvent describes a run state transition.
type StateChangeEvent struct {
	CyclerID string
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives cycler notifications.
type EventHandler interface {
	OnPhaseChange(event PhaseChangeEvent)
	OnStateChange(event StateChangeEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnPhaseChange(PhaseChangeEvent) {}
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}

// stateEmitter adapts EventHandler to lifecycle.EventEmitter.
type stateEmitter struct {
	id      string
	handler EventHandler
}

func (e *stateEmitter) OnStateChange(previous, current lifecycle.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		CyclerID: e.id,
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

package cycler

import (
	"errors"

	"github.com/bft-labs/phasecycle/pkg/lifecycle"
)

// Errors returned by the cycler. Check them with errors.Is.
var (
	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = lifecycle.ErrAlreadyStarted

	// ErrNotRunning is returned by Handle.Stop when the loop is not running.
	ErrNotRunning = lifecycle.ErrNotRunning

	// ErrStopTimeout is returned by Handle.Stop when the loop does not exit in time.
	ErrStopTimeout = lifecycle.ErrShutdownTimeout

	// ErrInvalidPhase is returned by ParsePhase.
	ErrInvalidPhase = errors.New("invalid phase")
)

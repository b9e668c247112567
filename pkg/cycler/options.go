package cycler

import (
	"math/rand"
	"time"

	"github.com/bft-labs/phasecycle/pkg/lifecycle"
	"github.com/bft-labs/phasecycle/pkg/log"
)

// Default timing.
const (
	DefaultMinCycle     = 4 * time.Second
	DefaultMaxCycle     = 6 * time.Second
	DefaultPollInterval = time.Millisecond
)

// Option configures optional behavior of a Cycler.
type Option func(*options)

type options struct {
	id           string
	logger       log.Logger
	eventHandler EventHandler
	minCycle     time.Duration
	maxCycle     time.Duration
	pollInterval time.Duration
	redraw       bool
	rng          *rand.Rand
	stopTimeout  time.Duration
}

func defaultOptions() options {
	return options{
		logger:       log.NewNoopLogger(),
		minCycle:     DefaultMinCycle,
		maxCycle:     DefaultMaxCycle,
		pollInterval: DefaultPollInterval,
		stopTimeout:  lifecycle.ShutdownTimeout,
	}
}

// WithID sets the identifier used in log fields and events.
// A random UUID is used when not set.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for phase and state changes.
// Handlers are called synchronously from the cycler goroutine.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithCycleRange sets the half-open range [min, max) cycle durations are
// drawn from. A non-positive min is ignored; max <= min yields a fixed
// cycle of min.
func WithCycleRange(min, max time.Duration) Option {
	return func(o *options) {
		if min <= 0 {
			return
		}
		if max < min {
			max = min
		}
		o.minCycle = min
		o.maxCycle = max
	}
}

// WithPollInterval sets how often the loop checks whether the current cycle
// has elapsed. It bounds how late a toggle can fire.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithRedrawEachCycle draws a fresh cycle duration after every toggle
// instead of reusing the one drawn at start.
func WithRedrawEachCycle(redraw bool) Option {
	return func(o *options) {
		o.redraw = redraw
	}
}

// WithRand sets the random source used to draw cycle durations.
// The source is only used from the cycler goroutine.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithStopTimeout bounds how long Handle.Stop waits for the loop to exit.
func WithStopTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.stopTimeout = d
		}
	}
}

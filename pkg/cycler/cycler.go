package cycler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/phasecycle/pkg/lifecycle"
	"github.com/bft-labs/phasecycle/pkg/log"
	"github.com/bft-labs/phasecycle/pkg/queue"
)

// Cycler toggles between Red and Green in a background goroutine and
// publishes every toggle to its queue. Use New to create one and Start to
// run it.
type Cycler struct {
	id       string
	opts     options
	logger   log.Logger
	queue    *queue.Queue[Phase]
	runState *lifecycle.DefaultManager
	exited   chan struct{}

	// phase is written only by the loop goroutine.
	phase    atomic.Int32
	duration atomic.Int64
	toggles  atomic.Uint64
}

// New creates a cycler in the Red phase. It does not start the loop.
func New(opts ...Option) *Cycler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	c := &Cycler{
		id:     o.id,
		opts:   o,
		logger: o.logger,
		queue:  queue.New[Phase](),
		exited: make(chan struct{}),
	}
	c.runState = lifecycle.NewManager(o.logger, &stateEmitter{id: o.id, handler: o.eventHandler})
	c.phase.Store(int32(Red))
	return c
}

// ID returns the cycler identifier.
func (c *Cycler) ID() string {
	return c.id
}

// CurrentPhase returns a snapshot of the current phase. The value is not
// ordered against queue delivery: a waiter may still be handed an older
// phase after CurrentPhase already reports a newer one.
func (c *Cycler) CurrentPhase() Phase {
	return Phase(c.phase.Load())
}

// Duration returns the cycle duration in effect, or 0 before the loop has
// drawn one.
func (c *Cycler) Duration() time.Duration {
	return time.Duration(c.duration.Load())
}

// Toggles returns how many times the phase has changed.
func (c *Cycler) Toggles() uint64 {
	return c.toggles.Load()
}

// Status returns the run state.
func (c *Cycler) Status() State {
	return c.runState.State()
}

// Start launches the toggle loop and returns immediately. The loop runs until
// the returned handle is stopped or ctx is done. A second call returns
// ErrAlreadyStarted.
func (c *Cycler) Start(ctx context.Context) (*Handle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.runState.TransitionTo(StateRunning, "Start() called"); err != nil {
		return nil, ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.runState.SetCancel(cancel)

	c.runState.AddWorker()
	go func() {
		defer close(c.exited)
		defer c.runState.WorkerDone()
		defer cancel()

		c.run(runCtx)

		// Stop() owns the transition when it cancelled us; otherwise the
		// parent context ended the run.
		if err := c.runState.TransitionTo(StateStopping, "context done"); err == nil {
			_ = c.runState.TransitionTo(StateStopped, "loop exited")
		}
	}()

	return &Handle{c: c}, nil
}

// WaitForPhase blocks until target is delivered through the queue and
// returns it. Other phases received meanwhile are discarded. It blocks
// forever if target is never produced.
func (c *Cycler) WaitForPhase(target Phase) Phase {
	for {
		if p := c.queue.Receive(); p == target {
			return p
		}
	}
}

// WaitForPhaseContext is WaitForPhase with cancellation. It returns
// ctx.Err() if ctx is done before target is delivered.
func (c *Cycler) WaitForPhaseContext(ctx context.Context, target Phase) (Phase, error) {
	for {
		p, err := c.queue.ReceiveContext(ctx)
		if err != nil {
			return p, err
		}
		if p == target {
			return p, nil
		}
	}
}

// Pending returns the number of published phases no waiter has taken yet.
func (c *Cycler) Pending() int {
	return c.queue.Len()
}

func (c *Cycler) run(ctx context.Context) {
	iv := newInterval(c.opts.minCycle, c.opts.maxCycle, c.opts.rng)
	cycle := iv.draw()
	c.duration.Store(int64(cycle))

	c.logger.Info("cycler started",
		log.String("cycler", c.id),
		log.Stringer("phase", c.CurrentPhase()),
		log.Duration("cycle", cycle),
		log.Bool("redraw", c.opts.redraw),
	)

	ticker := time.NewTicker(c.opts.pollInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("cycler stopping",
				log.String("cycler", c.id),
				log.Uint64("toggles", c.toggles.Load()),
			)
			return
		case <-ticker.C:
		}

		if time.Since(last) < cycle {
			continue
		}

		c.toggle(cycle)
		last = time.Now()

		if c.opts.redraw {
			cycle = iv.draw()
			c.duration.Store(int64(cycle))
		}
	}
}

// toggle flips the phase and publishes the new value. The value sent is the
// one just stored, so a push never disagrees with the toggle behind it.
func (c *Cycler) toggle(cycle time.Duration) {
	prev := c.CurrentPhase()
	next := prev.Toggle()
	c.phase.Store(int32(next))
	c.queue.Send(next)
	seq := c.toggles.Add(1)

	c.logger.Debug("phase changed",
		log.String("cycler", c.id),
		log.Stringer("from", prev),
		log.Stringer("to", next),
		log.Uint64("seq", seq),
	)

	if c.opts.eventHandler != nil {
		c.opts.eventHandler.OnPhaseChange(PhaseChangeEvent{
			CyclerID: c.id,
			Previous: prev,
			Current:  next,
			Seq:      seq,
			Cycle:    cycle,
			At:       time.Now(),
		})
	}
}

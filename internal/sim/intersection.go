// Package sim drives vehicles through an intersection controlled by a phase
// cycler. Each vehicle blocks until the light reaches the configured phase,
// crosses, and queues up again.
package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/phasecycle/pkg/cycler"
	"github.com/bft-labs/phasecycle/pkg/lifecycle"
	"github.com/bft-labs/phasecycle/pkg/log"
)

// Light is the part of a cycler the intersection needs.
type Light interface {
	WaitForPhaseContext(ctx context.Context, target cycler.Phase) (cycler.Phase, error)
	CurrentPhase() cycler.Phase
}

// Config configures an intersection.
type Config struct {
	Vehicles    int
	CrossTime   time.Duration
	WaitFor     cycler.Phase
	StopTimeout time.Duration
}

// Intersection runs a fixed set of vehicle goroutines against one light.
type Intersection struct {
	light     Light
	cfg       Config
	logger    log.Logger
	runState  *lifecycle.DefaultManager
	crossings atomic.Uint64
}

// New creates an idle intersection.
func New(light Light, cfg Config, logger log.Logger) *Intersection {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = lifecycle.ShutdownTimeout
	}
	return &Intersection{
		light:    light,
		cfg:      cfg,
		logger:   logger,
		runState: lifecycle.NewManager(logger, nil),
	}
}

// Start launches one goroutine per vehicle and returns immediately.
func (in *Intersection) Start(ctx context.Context) error {
	if err := in.runState.TransitionTo(lifecycle.StateRunning, "intersection opened"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	in.runState.SetCancel(cancel)

	for i := 0; i < in.cfg.Vehicles; i++ {
		v := vehicle{
			id:     uuid.NewString()[:8],
			number: i + 1,
		}
		in.runState.AddWorker()
		go func() {
			defer in.runState.WorkerDone()
			in.drive(runCtx, v)
		}()
	}

	in.logger.Info("intersection open",
		log.Int("vehicles", in.cfg.Vehicles),
		log.Stringer("wait_for", in.cfg.WaitFor),
	)
	return nil
}

// Stop cancels every vehicle and waits for them to leave.
func (in *Intersection) Stop() error {
	if err := in.runState.TransitionTo(lifecycle.StateStopping, "intersection closing"); err != nil {
		return err
	}
	in.runState.Cancel()
	if err := in.runState.WaitWithTimeout(in.cfg.StopTimeout); err != nil {
		return err
	}
	return in.runState.TransitionTo(lifecycle.StateStopped, "all vehicles left")
}

// Crossings returns how many times any vehicle crossed.
func (in *Intersection) Crossings() uint64 {
	return in.crossings.Load()
}

type vehicle struct {
	id     string
	number int
}

func (in *Intersection) drive(ctx context.Context, v vehicle) {
	for {
		in.logger.Debug("vehicle waiting",
			log.String("vehicle", v.id),
			log.Int("number", v.number),
			log.Stringer("light", in.light.CurrentPhase()),
		)

		waitStart := time.Now()
		if _, err := in.light.WaitForPhaseContext(ctx, in.cfg.WaitFor); err != nil {
			if !errors.Is(err, context.Canceled) {
				in.logger.Warn("vehicle stopped waiting", log.String("vehicle", v.id), log.Err(err))
			}
			return
		}

		n := in.crossings.Add(1)
		in.logger.Info("vehicle crossing",
			log.String("vehicle", v.id),
			log.Int("number", v.number),
			log.Duration("waited", time.Since(waitStart)),
			log.Uint64("crossings", n),
		)

		if in.cfg.CrossTime <= 0 {
			continue
		}
		timer := time.NewTimer(in.cfg.CrossTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/phasecycle"
	"github.com/bft-labs/phasecycle/internal/cliconfig"
	"github.com/bft-labs/phasecycle/internal/configwatch"
	"github.com/bft-labs/phasecycle/internal/sim"
	"github.com/bft-labs/phasecycle/pkg/cycler"
	"github.com/bft-labs/phasecycle/pkg/log"
)

const longHelp = `
Simulate a two-phase traffic light and a set of vehicles waiting on it.

The light starts red and flips between red and green. Each cycle lasts a
duration drawn once from [min-cycle, max-cycle) unless --redraw is set.
Vehicles block until the light reaches --wait-for, cross, and queue again.
Configure via file ($HOME/.phasecycle/config.toml), PHASECYCLE_* env vars,
or flags, in increasing order of precedence.
`

var exampleUsage = strings.TrimSpace(`
  phasecycle --vehicles 4 --run-for 30s
  phasecycle --min-cycle 500ms --max-cycle 1s --redraw --log-level debug
  phasecycle --config ./phasecycle.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// phaseReporter logs every phase change at info level.
type phaseReporter struct {
	cycler.BaseEventHandler
	logger zerolog.Logger
}

func (r phaseReporter) OnPhaseChange(e cycler.PhaseChangeEvent) {
	r.logger.Info().
		Str("cycler", e.CyclerID).
		Stringer("phase", e.Current).
		Uint64("seq", e.Seq).
		Dur("cycle", e.Cycle).
		Msg("light changed")
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.NewLogger()

	root := &cobra.Command{
		Use:     "phasecycle",
		Short:   "Simulate a red/green traffic light and vehicles waiting for it",
		Long:    strings.TrimSpace(longHelp),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := phasecycle.CheckModuleVersions(); err != nil {
				return err
			}

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			cliconfig.ApplyLogLevel(cfg.LogLevel)
			logger.Info().Interface("config", cfg).Msg("configuration")

			return run(cmd.Context(), cfg, cfgFile, haveFile, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.phasecycle/config.toml)")
	root.Flags().DurationVar(&cfg.MinCycle, "min-cycle", cfg.MinCycle, "shortest cycle duration")
	root.Flags().DurationVar(&cfg.MaxCycle, "max-cycle", cfg.MaxCycle, "upper bound (exclusive) of the cycle duration")
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "how often the light checks whether its cycle elapsed")
	root.Flags().BoolVar(&cfg.Redraw, "redraw", cfg.Redraw, "draw a new cycle duration after every toggle")
	root.Flags().IntVar(&cfg.Vehicles, "vehicles", cfg.Vehicles, "number of vehicles waiting at the light")
	root.Flags().DurationVar(&cfg.CrossTime, "cross-time", cfg.CrossTime, "time a vehicle needs to cross before queuing again")
	root.Flags().StringVar(&cfg.WaitFor, "wait-for", cfg.WaitFor, "phase vehicles wait for (red or green)")
	root.Flags().DurationVar(&cfg.RunFor, "run-for", cfg.RunFor, "stop after this long (0 runs until interrupted)")
	root.Flags().DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "how long to wait for goroutines on shutdown")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload the log level when the config file changes")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("phasecycle")
		os.Exit(1)
	}
}

func run(parent context.Context, cfg cliconfig.Config, cfgFile string, haveFile bool, logger zerolog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	libLogger := log.NewZerologAdapterWithLogger(logger)

	light := cycler.New(
		cycler.WithLogger(libLogger),
		cycler.WithEventHandler(phaseReporter{logger: logger}),
		cycler.WithCycleRange(cfg.MinCycle, cfg.MaxCycle),
		cycler.WithPollInterval(cfg.PollInterval),
		cycler.WithRedrawEachCycle(cfg.Redraw),
		cycler.WithStopTimeout(cfg.StopTimeout),
	)

	handle, err := light.Start(ctx)
	if err != nil {
		return fmt.Errorf("start light: %w", err)
	}

	junction := sim.New(light, sim.Config{
		Vehicles:    cfg.Vehicles,
		CrossTime:   cfg.CrossTime,
		WaitFor:     cfg.Phase(),
		StopTimeout: cfg.StopTimeout,
	}, libLogger.With(log.String("component", "intersection")))

	if err := junction.Start(ctx); err != nil {
		_ = handle.Stop()
		return fmt.Errorf("start intersection: %w", err)
	}

	if cfg.WatchConfig {
		if !haveFile {
			logger.Warn().Str("path", cfgFile).Msg("config watching requested but no config file found")
		} else {
			w := configwatch.New(cfgFile, configwatch.DefaultDebounceDelay, libLogger, func(fc cliconfig.FileConfig) {
				if fc.LogLevel == "" {
					return
				}
				if cliconfig.ApplyLogLevel(fc.LogLevel) {
					logger.Info().Str("level", fc.LogLevel).Msg("log level updated")
				} else {
					logger.Warn().Str("level", fc.LogLevel).Msg("ignoring unknown log level")
				}
			})
			if err := w.Start(ctx); err != nil {
				logger.Warn().Err(err).Msg("config watcher disabled")
			} else {
				defer w.Stop()
			}
		}
	}

	var deadline <-chan time.Time
	if cfg.RunFor > 0 {
		timer := time.NewTimer(cfg.RunFor)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("received signal, stopping...")
	case <-deadline:
		logger.Info().Dur("run_for", cfg.RunFor).Msg("run time elapsed, stopping...")
	}

	var errs []error
	if err := junction.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop intersection: %w", err))
	}
	// A signal cancels the light's context too, so it may already be stopped.
	if err := handle.Stop(); err != nil && !errors.Is(err, cycler.ErrNotRunning) {
		errs = append(errs, fmt.Errorf("stop light: %w", err))
	} else {
		<-handle.Done()
	}

	logger.Info().
		Uint64("toggles", light.Toggles()).
		Uint64("crossings", junction.Crossings()).
		Stringer("phase", light.CurrentPhase()).
		Msg("simulation finished")

	return errors.Join(errs...)
}

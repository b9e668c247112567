package cliconfig

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/phasecycle/pkg/cycler"
	"github.com/bft-labs/phasecycle/pkg/lifecycle"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds CLI configuration for phasecycle.
type Config struct {
	MinCycle     time.Duration
	MaxCycle     time.Duration
	PollInterval time.Duration
	Redraw       bool

	Vehicles  int
	CrossTime time.Duration
	WaitFor   string

	RunFor      time.Duration
	StopTimeout time.Duration

	LogLevel    string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MinCycle:     cycler.DefaultMinCycle,
		MaxCycle:     cycler.DefaultMaxCycle,
		PollInterval: cycler.DefaultPollInterval,
		Vehicles:     2,
		CrossTime:    time.Second,
		WaitFor:      cycler.Green.String(),
		StopTimeout:  lifecycle.ShutdownTimeout,
		LogLevel:     zerolog.InfoLevel.String(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinCycle <= 0 {
		return fmt.Errorf("%w: min-cycle must be positive", ErrInvalidConfig)
	}
	if c.MaxCycle < c.MinCycle {
		return fmt.Errorf("%w: max-cycle %v is below min-cycle %v", ErrInvalidConfig, c.MaxCycle, c.MinCycle)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.PollInterval > c.MinCycle {
		return fmt.Errorf("%w: poll interval %v exceeds min-cycle %v", ErrInvalidConfig, c.PollInterval, c.MinCycle)
	}
	if c.Vehicles < 0 {
		return fmt.Errorf("%w: vehicles must not be negative", ErrInvalidConfig)
	}
	if c.CrossTime < 0 {
		return fmt.Errorf("%w: cross-time must not be negative", ErrInvalidConfig)
	}
	if c.RunFor < 0 {
		return fmt.Errorf("%w: run-for must not be negative", ErrInvalidConfig)
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("%w: stop-timeout must be positive", ErrInvalidConfig)
	}
	if _, err := cycler.ParsePhase(c.WaitFor); err != nil {
		return fmt.Errorf("%w: wait-for: %v", ErrInvalidConfig, err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Phase returns the parsed WaitFor phase. Call Validate first.
func (c *Config) Phase() cycler.Phase {
	p, _ := cycler.ParsePhase(c.WaitFor)
	return p
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// configSetter applies values while respecting flag precedence: a value is
// only applied if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an int from an environment value.
// Zero is a valid value here (e.g. no vehicles).
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

package cliconfig

import "os"

// EnvPrefix is the prefix of every environment variable read by ApplyEnvConfig.
const EnvPrefix = "PHASECYCLE_"

// ApplyEnvConfig applies PHASECYCLE_* environment variables to cfg, skipping
// flags in changed. Returns an error if a value has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("wait-for", env("WAIT_FOR"), &cfg.WaitFor)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("min-cycle", env("MIN_CYCLE"), &cfg.MinCycle); err != nil {
		return err
	}
	if err := s.setDuration("max-cycle", env("MAX_CYCLE"), &cfg.MaxCycle); err != nil {
		return err
	}
	if err := s.setDuration("poll", env("POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("cross-time", env("CROSS_TIME"), &cfg.CrossTime); err != nil {
		return err
	}
	if err := s.setDuration("run-for", env("RUN_FOR"), &cfg.RunFor); err != nil {
		return err
	}
	if err := s.setDuration("stop-timeout", env("STOP_TIMEOUT"), &cfg.StopTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("vehicles", env("VEHICLES"), &cfg.Vehicles); err != nil {
		return err
	}

	s.setBoolFromString("redraw", env("REDRAW"), &cfg.Redraw)
	s.setBoolFromString("watch-config", env("WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}

package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with string durations to keep the TOML readable.
type FileConfig struct {
	MinCycle     string `toml:"min_cycle"`
	MaxCycle     string `toml:"max_cycle"`
	PollInterval string `toml:"poll_interval"`
	Redraw       *bool  `toml:"redraw"`
	Vehicles     int    `toml:"vehicles"`
	CrossTime    string `toml:"cross_time"`
	WaitFor      string `toml:"wait_for"`
	RunFor       string `toml:"run_for"`
	StopTimeout  string `toml:"stop_timeout"`
	LogLevel     string `toml:"log_level"`
	WatchConfig  *bool  `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.phasecycle/config.toml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".phasecycle", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to cfg, skipping flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("wait-for", fc.WaitFor, &cfg.WaitFor)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"min-cycle", fc.MinCycle, &cfg.MinCycle},
		{"max-cycle", fc.MaxCycle, &cfg.MaxCycle},
		{"poll", fc.PollInterval, &cfg.PollInterval},
		{"cross-time", fc.CrossTime, &cfg.CrossTime},
		{"run-for", fc.RunFor, &cfg.RunFor},
		{"stop-timeout", fc.StopTimeout, &cfg.StopTimeout},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	s.setInt("vehicles", fc.Vehicles, &cfg.Vehicles)

	s.setBool("redraw", fc.Redraw, &cfg.Redraw)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

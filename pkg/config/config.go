// Package config loads cuprof settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Drift holds the baseline comparison thresholds, in percent.
type Drift struct {
	Minor    float64 `yaml:"minor"`
	Moderate float64 `yaml:"moderate"`
	Major    float64 `yaml:"major"`
}

// Config holds the CLI configuration.
type Config struct {
	Format          string `yaml:"format"`
	ComputeBudget   uint64 `yaml:"compute_budget"`
	LogBytesLimit   int    `yaml:"log_bytes_limit"`
	BaselineDir     string `yaml:"baseline_dir"`
	SparklineWindow int    `yaml:"sparkline_window"`
	LogLevel        string `yaml:"log_level"`
	Drift           Drift  `yaml:"drift"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:          "table",
		ComputeBudget:   200_000,
		LogBytesLimit:   10_000,
		SparklineWindow: 20,
		LogLevel:        "warn",
		Drift: Drift{
			Minor:    5,
			Moderate: 15,
			Major:    30,
		},
	}
}

// DefaultPath returns ~/.cuprof/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cuprof", "config.yaml")
	}
	return filepath.Join(home, ".cuprof", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.ComputeBudget == 0 {
		problems = append(problems, "compute_budget must be positive")
	}
	if c.LogBytesLimit <= 0 {
		problems = append(problems, "log_bytes_limit must be positive")
	}
	if c.SparklineWindow < 1 {
		problems = append(problems, "sparkline_window must be at least 1")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level: %v", err))
	}
	if !(c.Drift.Minor >= 0 && c.Drift.Minor <= c.Drift.Moderate && c.Drift.Moderate <= c.Drift.Major) {
		problems = append(problems, "drift thresholds must satisfy 0 <= minor <= moderate <= major")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Logger builds a logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

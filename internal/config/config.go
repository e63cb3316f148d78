/*
PURPOSE:
  Defines the configuration structure and loading logic for Bench Bot.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of workspace path, output directory, connection
    count, benchmark duration, target URL, and cooldown.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Warmup, sample interval, reserved cores and the load-generator binary
    name also want to be tunable rather than hard-coded.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing config file is not an error (defaults apply).

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults mirror the documented benchmark protocol (500 connections,
    30s duration, 5s cooldown).

USAGE:
  cfg, err := config.Load("bench_bot.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update Load() defaults.

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for Bench Bot.
type Config struct {
	Workspace   string `yaml:"workspace"`
	OutputDir   string `yaml:"output_dir"`
	Connections int    `yaml:"connections"`
	// Duration of each load test in seconds.
	Duration int    `yaml:"duration"`
	URL      string `yaml:"url"`
	// Cooldown between consecutive runs, letting hardware thermals settle.
	Cooldown time.Duration `yaml:"cooldown"`
	Warmup   time.Duration `yaml:"warmup"`
	// SampleInterval trades memory-sampling resolution for overhead.
	SampleInterval time.Duration `yaml:"sample_interval"`
	// ReservedCores are subtracted from the logical CPU count when sizing
	// the load generator's thread pool, leaving headroom for the harness.
	ReservedCores int    `yaml:"reserved_cores"`
	LoadGenBin    string `yaml:"loadgen_bin"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workspace:      ".",
		OutputDir:      ".",
		Connections:    500,
		Duration:       30,
		URL:            "http://127.0.0.1:3000",
		Cooldown:       5 * time.Second,
		Warmup:         1 * time.Second,
		SampleInterval: 100 * time.Millisecond,
		ReservedCores:  1,
		LoadGenBin:     "rewrk",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		defaults := []string{"bench_bot.yaml", "bench-bot.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

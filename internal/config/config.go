// Package config provides unified configuration loading for onebit.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"onebit/internal/protocol"
	"onebit/internal/sim"
)

// Config contains all onebit configuration settings.
type Config struct {
	// Simulation contains default parameters for simulation batches.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational and day-trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store contains settings for the batch results database.
	Store StoreConfig `json:"store" yaml:"store"`
}

// SimulationConfig holds the batch parameters commands fall back to when
// the corresponding flags are not given.
type SimulationConfig struct {
	// Protocol is the default protocol name or alias. Empty means the
	// protocol must be named on the command line.
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`

	// Agents is the number of agents per run.
	Agents int `json:"agents" yaml:"agents"`

	// Simulations is the number of independent runs per batch.
	Simulations int `json:"simulations" yaml:"simulations"`

	// Parallel is the number of concurrent runs. 0 uses one worker per
	// available CPU.
	Parallel int `json:"parallel" yaml:"parallel"`

	// Seed fixes the base seed for every batch. 0 draws a fresh seed per
	// batch, which is almost always what you want; set it only to make
	// repeated invocations bit-identical.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// LoggingConfig configures onebit's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" and "trace" enable day tracing to .onebit/trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures the batch results database.
type StoreConfig struct {
	// Enabled records completed batches to .onebit/runs.db for the
	// history command.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Protocol:    "",
			Agents:      100,
			Simulations: 1000,
			Parallel:    0,
			Seed:        0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Enabled: true,
		},
	}
}

// Load loads configuration for the given project root.
// Order: defaults -> root/.onebit/config.yaml -> environment variables
func Load(root string) (*Config, error) {
	config := Default()

	configPath := filepath.Join(root, ".onebit", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fileConfig, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Simulation.Protocol != "" {
		if _, err := protocol.Lookup(c.Simulation.Protocol); err != nil {
			return err
		}
	}

	if c.Simulation.Agents < 1 {
		return fmt.Errorf("agents must be at least 1, got %d", c.Simulation.Agents)
	}
	if c.Simulation.Agents > sim.MaxAgents {
		return fmt.Errorf("agents must be at most %d, got %d", sim.MaxAgents, c.Simulation.Agents)
	}

	if c.Simulation.Simulations < 1 {
		return fmt.Errorf("simulations must be at least 1, got %d", c.Simulation.Simulations)
	}

	if c.Simulation.Parallel < 0 {
		return fmt.Errorf("parallel must be non-negative, got %d", c.Simulation.Parallel)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ONEBIT_PROTOCOL"); v != "" {
		config.Simulation.Protocol = v
	}

	if v := os.Getenv("ONEBIT_AGENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Agents = n
		}
	}

	if v := os.Getenv("ONEBIT_SIMULATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Simulations = n
		}
	}

	if v := os.Getenv("ONEBIT_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Parallel = n
		}
	}

	if v := os.Getenv("ONEBIT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv("ONEBIT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("ONEBIT_STORE_ENABLED"); v != "" {
		config.Store.Enabled = v == "true" || v == "1"
	}
}

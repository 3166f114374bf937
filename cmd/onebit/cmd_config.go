package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"onebit/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage onebit configuration",
		Long: `View and modify onebit configuration settings.

Configuration is stored in .onebit/config.yaml under the project root.

Examples:
  onebit config list                           # Show all settings
  onebit config get simulation.agents          # Get a specific setting
  onebit config set simulation.protocol token  # Set a setting
  onebit config set logging.level trace        # Enable day tracing`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			fmt.Fprintf(out, "Configuration (%s):\n", filepath.Join(root, ".onebit", "config.yaml"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Simulation Settings:")
			fmt.Fprintf(out, "  simulation.protocol:    %s\n", valueOrDefault(cfg.Simulation.Protocol, "(not set)"))
			fmt.Fprintf(out, "  simulation.agents:      %d\n", cfg.Simulation.Agents)
			fmt.Fprintf(out, "  simulation.simulations: %d\n", cfg.Simulation.Simulations)
			fmt.Fprintf(out, "  simulation.parallel:    %d\n", cfg.Simulation.Parallel)
			fmt.Fprintf(out, "  simulation.seed:        %d\n", cfg.Simulation.Seed)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Logging Settings:")
			fmt.Fprintf(out, "  logging.level:          %s\n", valueOrDefault(cfg.Logging.Level, "(default)"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Store Settings:")
			fmt.Fprintf(out, "  store.enabled:          %v\n", cfg.Store.Enabled)

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				}
				return nil
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			} else {
				fmt.Fprintf(out, "%s = %v\n", key, value)
			}

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			value := args[1]

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			setErr := setConfigValue(cfg, key, value)
			if setErr == nil {
				setErr = cfg.Validate()
			}
			out := cmd.OutOrStdout()
			if setErr != nil {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": setErr.Error(),
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Error: %v\n", setErr)
				}
				return nil
			}

			if err := saveConfig(root, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			} else {
				fmt.Fprintf(out, "Set %s = %s\n", key, value)
			}

			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (interface{}, bool) {
	switch key {
	case "simulation.protocol":
		return cfg.Simulation.Protocol, true
	case "simulation.agents":
		return cfg.Simulation.Agents, true
	case "simulation.simulations":
		return cfg.Simulation.Simulations, true
	case "simulation.parallel":
		return cfg.Simulation.Parallel, true
	case "simulation.seed":
		return cfg.Simulation.Seed, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "store.enabled":
		return cfg.Store.Enabled, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "simulation.protocol":
		cfg.Simulation.Protocol = value
	case "simulation.agents":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Simulation.Agents = n
	case "simulation.simulations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Simulation.Simulations = n
	case "simulation.parallel":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Simulation.Parallel = n
	case "simulation.seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		cfg.Simulation.Seed = n
	case "logging.level":
		cfg.Logging.Level = value
	case "store.enabled":
		cfg.Store.Enabled = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// saveConfig writes the configuration to root/.onebit/config.yaml.
func saveConfig(root string, cfg *config.Config) error {
	onebitDir := filepath.Join(root, ".onebit")
	if err := os.MkdirAll(onebitDir, 0700); err != nil {
		return fmt.Errorf("failed to create .onebit directory: %w", err)
	}

	configPath := filepath.Join(onebitDir, "config.yaml")
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

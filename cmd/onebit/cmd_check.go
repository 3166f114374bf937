package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"onebit/internal/config"
	"onebit/internal/protocol"
	"onebit/internal/sim"
	"onebit/internal/stats"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify a protocol against every population size from 1 to 100",
		Long: `Verify a protocol against every population size from 1 to 100.

For each agent count, one complete simulation runs to termination. Any
false claim fails the check and reports the offending population size.
This is the same gate 'onebit run' applies before starting a batch.

Examples:
  onebit check --protocol counter
  onebit check -p token --seed 7 --full   # per-population day counts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			name, _ := cmd.Flags().GetString("protocol")
			seed, _ := cmd.Flags().GetInt64("seed")
			full, _ := cmd.Flags().GetBool("full")

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if name == "" {
				name = cfg.Simulation.Protocol
			}
			if name == "" {
				return fmt.Errorf("no protocol selected (use --protocol or set simulation.protocol in config)")
			}
			def, err := protocol.Lookup(name)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = sim.NewSeed()
			}

			ctx, cancel := signalContext()
			defer cancel()

			days, err := sim.SelfCheck(ctx, def.Name, seed)
			if err != nil {
				return err
			}
			summary := stats.Summarize(days)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"protocol":   def.Name,
					"seed":       seed,
					"max_agents": sim.SelfCheckMaxAgents,
					"days":       days,
					"summary":    summary,
				})
			}

			fmt.Fprintf(out, "✓ %s passed for 1..%d agents (seed %d)\n", def.Name, sim.SelfCheckMaxAgents, seed)
			fmt.Fprintf(out, "  days: %s\n", summary.String())
			if full {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%-8s %s\n", "AGENTS", "DAYS")
				for i, d := range days {
					fmt.Fprintf(out, "%-8d %d\n", i+1, d)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("protocol", "p", "", "Protocol name or alias (counter, token)")
	cmd.Flags().Int64("seed", 0, "Base seed (0 = random)")
	cmd.Flags().Bool("full", false, "Show the day count for every population size")

	return cmd
}

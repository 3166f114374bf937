package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"onebit/internal/config"
	"onebit/internal/logging"
	"onebit/internal/sim"
	"onebit/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of simulations and report day-count statistics",
		Long: `Run a batch of simulations and report day-count statistics.

Each run places the agents in isolation and visits one uniformly random
agent per day until some agent claims that everyone has been visited.
The claim is checked against the actual visit record; a false claim
aborts the whole batch with a protocol violation.

Flags override values from .onebit/config.yaml. Unless --skip-check is
given, the protocol is first verified against every population size from
1 to 100.

Examples:
  onebit run --protocol counter                 # 100 agents, 1000 runs
  onebit run -p token -n 50 --sims 200          # smaller batch
  onebit run -p counter --seed 42 --json        # reproducible, JSON output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			name, _ := cmd.Flags().GetString("protocol")
			agents, _ := cmd.Flags().GetInt("agents")
			sims, _ := cmd.Flags().GetInt("sims")
			parallel, _ := cmd.Flags().GetInt("parallel")
			seed, _ := cmd.Flags().GetInt64("seed")
			skipCheck, _ := cmd.Flags().GetBool("skip-check")

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Config supplies any parameter the command line leaves out.
			if name == "" {
				name = cfg.Simulation.Protocol
			}
			if name == "" {
				return fmt.Errorf("no protocol selected (use --protocol or set simulation.protocol in config)")
			}
			if !cmd.Flags().Changed("agents") {
				agents = cfg.Simulation.Agents
			}
			if !cmd.Flags().Changed("sims") {
				sims = cfg.Simulation.Simulations
			}
			if !cmd.Flags().Changed("parallel") {
				parallel = cfg.Simulation.Parallel
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Simulation.Seed
			}
			if seed == 0 {
				seed = sim.NewSeed()
			}

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

			ctx, cancel := signalContext()
			defer cancel()

			if !skipCheck {
				if _, err := sim.SelfCheck(ctx, name, seed); err != nil {
					return fmt.Errorf("self-check failed: %w", err)
				}
				logger.Debug("self-check passed", "protocol", name, "max_agents", sim.SelfCheckMaxAgents)
			}

			tracer := logging.NewTraceLogger(filepath.Join(root, ".onebit"), cfg.Logging.Level)
			defer tracer.Close()

			batchCfg := sim.BatchConfig{
				Protocol: name,
				Agents:   agents,
				Sims:     sims,
				Seed:     seed,
				Parallel: parallel,
			}
			if tracer != nil {
				batchCfg.Observe = func(run int) sim.Observer {
					return func(rec sim.StepRecord) {
						tracer.Log(map[string]any{
							"run":           run,
							"day":           rec.Day,
							"agent":         rec.Agent,
							"first_visit":   rec.FirstVisit,
							"signal_before": rec.SignalBefore,
							"signal_after":  rec.SignalAfter,
							"claim":         rec.Claim.String(),
						})
					}
				}
			}

			result, err := sim.RunBatch(ctx, batchCfg)
			if err != nil {
				return err
			}

			logger.Info("batch complete",
				"protocol", result.Protocol,
				"agents", result.Agents,
				"runs", result.Sims,
				"elapsed", result.Elapsed)

			var batchID string
			if cfg.Store.Enabled {
				runStore, err := store.Open(root)
				if err != nil {
					logger.Warn("failed to open run store", "error", err)
				} else {
					defer runStore.Close()
					batchID, err = runStore.RecordBatch(ctx, result)
					if err != nil {
						logger.Warn("failed to record batch", "error", err)
						batchID = ""
					}
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				output := map[string]interface{}{
					"protocol":    result.Protocol,
					"agents":      result.Agents,
					"simulations": result.Sims,
					"seed":        result.Seed,
					"days":        result.Summary,
					"elapsed_ms":  result.Elapsed.Milliseconds(),
				}
				if batchID != "" {
					output["batch_id"] = batchID
				}
				return json.NewEncoder(out).Encode(output)
			}

			fmt.Fprintf(out, "protocol %s: %d agents, %d runs (seed %d)\n",
				result.Protocol, result.Agents, result.Sims, result.Seed)
			fmt.Fprintf(out, "  days: %s\n", result.Summary.String())
			fmt.Fprintf(out, "  elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
			if batchID != "" {
				fmt.Fprintf(out, "  recorded as %s\n", batchID)
			}
			return nil
		},
	}

	cmd.Flags().StringP("protocol", "p", "", "Protocol name or alias (counter, token)")
	cmd.Flags().IntP("agents", "n", 100, "Number of agents per run")
	cmd.Flags().Int("sims", 1000, "Number of independent runs")
	cmd.Flags().Int("parallel", 0, "Concurrent runs (0 = one per CPU)")
	cmd.Flags().Int64("seed", 0, "Base seed (0 = random)")
	cmd.Flags().Bool("skip-check", false, "Skip the 1..100 agent self-check before the batch")

	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"onebit/internal/stats"
	"onebit/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "Show recorded simulation batches",
		Long: `Show recorded simulation batches.

Without arguments, lists recorded batches newest first. With a batch id,
shows that batch in full, including the day count of every run.

Batches record automatically after 'onebit run' while store.enabled is
true (the default).

Examples:
  onebit history                     # list recent batches
  onebit history --protocol token    # only token batches
  onebit history <batch-id>          # one batch in full`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			protoFilter, _ := cmd.Flags().GetString("protocol")
			top, _ := cmd.Flags().GetInt("top")

			runStore, err := store.Open(root)
			if err != nil {
				return fmt.Errorf("failed to open run store: %w", err)
			}
			defer runStore.Close()

			ctx := context.Background()

			if len(args) == 1 {
				return showBatch(ctx, cmd, runStore, args[0], jsonOut)
			}
			return listBatches(ctx, cmd, runStore, protoFilter, top, jsonOut)
		},
	}

	cmd.Flags().StringP("protocol", "p", "", "Only show batches for this protocol")
	cmd.Flags().Int("top", 20, "Maximum number of batches to list")

	return cmd
}

// listBatches prints recorded batches newest first.
func listBatches(ctx context.Context, cmd *cobra.Command, runStore *store.RunStore, protoFilter string, top int, jsonOut bool) error {
	batches, err := runStore.ListBatches(ctx, store.ListOptions{
		Protocol: protoFilter,
		Limit:    top,
	})
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(batches)
	}

	if len(batches) == 0 {
		fmt.Fprintln(out, "No recorded batches. Run 'onebit run' with store.enabled to record one.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %-8s  %6s  %6s  %8s  %5s\n",
		"ID", "CREATED", "PROTOCOL", "AGENTS", "RUNS", "MEAN", "MAX")
	for _, b := range batches {
		fmt.Fprintf(out, "%-36s  %-19s  %-8s  %6d  %6d  %8.1f  %5d\n",
			b.ID,
			b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			b.Protocol,
			b.Agents,
			b.Simulations,
			b.Mean,
			b.Max)
	}
	return nil
}

// showBatch prints one recorded batch in full.
func showBatch(ctx context.Context, cmd *cobra.Command, runStore *store.RunStore, id string, jsonOut bool) error {
	batch, err := runStore.GetBatch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get batch: %w", err)
	}
	if batch == nil {
		return fmt.Errorf("batch %s not found", id)
	}

	days, err := runStore.BatchDays(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get batch days: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"batch": batch,
			"days":  days,
		})
	}

	summary := stats.Summary{
		Count: batch.Simulations,
		Mean:  batch.Mean,
		Std:   batch.Std,
		Min:   batch.Min,
		Max:   batch.Max,
	}

	fmt.Fprintf(out, "batch %s\n", batch.ID)
	fmt.Fprintf(out, "  created:  %s\n", batch.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  protocol: %s\n", batch.Protocol)
	fmt.Fprintf(out, "  agents:   %d\n", batch.Agents)
	fmt.Fprintf(out, "  seed:     %d\n", batch.Seed)
	fmt.Fprintf(out, "  days:     %s\n", summary.String())
	fmt.Fprintf(out, "  elapsed:  %s\n", batch.Elapsed.Round(time.Millisecond))
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"onebit/internal/sim"
)

// Version information set at build time via ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "onebit",
		Short: "Simulator for one-bit coordination protocols",
		Long: `onebit simulates the prisoners-and-light-switch problem: N agents are
visited one per day, uniformly at random with replacement, and may only
communicate by reading and toggling a single shared boolean signal. A run
ends when some agent claims that every agent has been visited; the
simulator checks each claim against ground truth the agents never see.

Two strategies ship by default (run 'onebit protocols' to list them), and
'onebit run' reports day-count statistics over batches of independent runs.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newCheckCmd(),
		newProtocolsCmd(),
		newHistoryCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// A false termination claim is a protocol defect, not bad usage;
		// give it a distinct exit code.
		var verr *sim.ViolationError
		if errors.As(err, &verr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM so long
// batches stop cleanly mid-run.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

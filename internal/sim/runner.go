package sim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"onebit/internal/protocol"
	"onebit/internal/stats"
)

// BatchConfig describes a batch of independent simulation runs.
type BatchConfig struct {
	// Protocol is a registry name or alias.
	Protocol string

	// Agents is the number of agents per run, in [1, MaxAgents].
	Agents int

	// Sims is the number of independent runs, at least 1.
	Sims int

	// Seed is the base seed. Per-run seeds derive from it, so a batch is
	// reproducible regardless of worker count.
	Seed int64

	// Parallel is the number of concurrent runs. Zero or negative means
	// one worker per available CPU.
	Parallel int

	// Observe, when non-nil, is called with each run's index to obtain an
	// observer for that run's scheduler. Returning nil leaves the run
	// unobserved. Observers run on worker goroutines.
	Observe func(run int) Observer
}

// BatchResult holds the outcome of a completed batch.
type BatchResult struct {
	Protocol string
	Agents   int
	Sims     int
	Seed     int64
	Days     []int32 // day count per run, in run order
	Summary  stats.Summary
	Elapsed  time.Duration
}

// RunBatch validates cfg, then executes cfg.Sims independent runs across a
// bounded worker pool. The batch aborts on the first protocol violation.
func RunBatch(ctx context.Context, cfg BatchConfig) (*BatchResult, error) {
	def, err := protocol.Lookup(cfg.Protocol)
	if err != nil {
		return nil, err
	}
	if cfg.Agents < 1 {
		return nil, fmt.Errorf("at least 1 agent is required, got %d", cfg.Agents)
	}
	if cfg.Agents > MaxAgents {
		return nil, fmt.Errorf("agent count %d exceeds the maximum of %d", cfg.Agents, MaxAgents)
	}
	if cfg.Sims < 1 {
		return nil, fmt.Errorf("at least 1 simulation is required, got %d", cfg.Sims)
	}

	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	// Draw every run's seed up front from the base seed. The schedule of
	// seeds is then independent of how runs interleave across workers.
	seedRng := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Sims)
	for i := range seeds {
		seeds[i] = seedRng.Int63()
	}

	start := time.Now()
	days := make([]int32, cfg.Sims)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < cfg.Sims; i++ {
		i := i // per-iteration copy; required under the go 1.21 language mode
		g.Go(func() error {
			sched := NewScheduler(def.Name, cfg.Agents, def.New, NewUniformSource(seeds[i]))
			if cfg.Observe != nil {
				if obs := cfg.Observe(i); obs != nil {
					sched.Observe(obs)
				}
			}
			d, err := sched.Run(ctx)
			if err != nil {
				return err
			}
			days[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BatchResult{
		Protocol: def.Name,
		Agents:   cfg.Agents,
		Sims:     cfg.Sims,
		Seed:     cfg.Seed,
		Days:     days,
		Summary:  stats.Summarize(days),
		Elapsed:  time.Since(start),
	}, nil
}

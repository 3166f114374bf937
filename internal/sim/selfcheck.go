package sim

import (
	"context"
	"fmt"
	"math/rand"

	"onebit/internal/protocol"
)

// SelfCheckMaxAgents is the largest population size the self-check sweeps.
const SelfCheckMaxAgents = 100

// SelfCheck runs one complete simulation for every agent count from 1 to
// SelfCheckMaxAgents and returns the day count of each, indexed by agent
// count minus one. Any false claim fails the sweep with the offending
// population size wrapped around the violation. It is the regression gate a
// protocol must pass before a batch is worth running.
func SelfCheck(ctx context.Context, name string, seed int64) ([]int32, error) {
	def, err := protocol.Lookup(name)
	if err != nil {
		return nil, err
	}

	seedRng := rand.New(rand.NewSource(seed))
	days := make([]int32, SelfCheckMaxAgents)
	for n := 1; n <= SelfCheckMaxAgents; n++ {
		sched := NewScheduler(def.Name, n, def.New, NewUniformSource(seedRng.Int63()))
		d, err := sched.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("self-check with %d agents: %w", n, err)
		}
		days[n-1] = d
	}
	return days, nil
}

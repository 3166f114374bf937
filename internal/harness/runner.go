package harness

import (
	"context"
	"errors"
	"testing"

	"onebit/internal/protocol"
	"onebit/internal/sim"
)

// Runner executes scenarios against the real scheduler and protocol
// implementations.
type Runner struct {
	t *testing.T
}

// NewRunner creates a scenario runner bound to the test.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes the scenario and returns the collected result. Violations are
// captured in the result rather than failing the test; any other scheduler
// error fails immediately.
func (r *Runner) Run(scenario Scenario) Result {
	r.t.Helper()

	if scenario.Agents < 1 {
		r.t.Fatalf("Run: scenario %q needs at least one agent", scenario.Name)
	}

	name := scenario.Protocol
	factory := scenario.Factory
	if factory == nil {
		def, err := protocol.Lookup(scenario.Protocol)
		if err != nil {
			r.t.Fatalf("Run: scenario %q: %v", scenario.Name, err)
		}
		name = def.Name
		factory = def.New
	} else if name == "" {
		name = scenario.Name
	}

	// Instances are built here rather than inside the scheduler so the
	// OnStep hook and the returned Result can inspect live agent state.
	instances := make([]protocol.Protocol, scenario.Agents)
	for id := range instances {
		instances[id] = factory(id, scenario.Agents)
	}

	var src sim.VisitSource
	switch {
	case scenario.Script:
		src = sim.NewScriptedSource(scenario.Visits...)
	case len(scenario.Visits) > 0:
		src = sim.NewPrefixSource(scenario.Seed, scenario.Visits...)
	default:
		src = sim.NewUniformSource(scenario.Seed)
	}

	sched := sim.NewScheduler(name, scenario.Agents, func(id, nAgents int) protocol.Protocol {
		return instances[id]
	}, src)

	result := Result{ClaimedBy: -1, Agents: instances}
	sched.Observe(func(rec sim.StepRecord) {
		result.Steps = append(result.Steps, rec)
		if scenario.OnStep != nil {
			scenario.OnStep(rec, instances)
		}
	})

	if scenario.Script {
		r.runScripted(sched, scenario, &result)
	} else {
		r.runToClaim(sched, scenario, &result)
	}
	return result
}

// runScripted steps through the scripted visits, stopping early on a claim.
// Exhausting the script without a claim leaves the result unclaimed.
func (r *Runner) runScripted(sched *sim.Scheduler, scenario Scenario, result *Result) {
	r.t.Helper()
	for range scenario.Visits {
		rec, err := sched.Step()
		if err != nil {
			r.recordViolation(scenario, result, rec.Day, err)
			return
		}
		if rec.Claim == protocol.ClaimEveryoneVisited {
			result.Claimed = true
			result.ClaimedBy = rec.Agent
			result.Days = rec.Day
			return
		}
	}
	result.Days = sched.Day()
}

// runToClaim lets the scheduler run until an agent claims.
func (r *Runner) runToClaim(sched *sim.Scheduler, scenario Scenario, result *Result) {
	r.t.Helper()
	days, err := sched.Run(context.Background())
	if err != nil {
		r.recordViolation(scenario, result, sched.Day(), err)
		return
	}
	result.Days = days
	result.Claimed = true
	result.ClaimedBy = result.Steps[len(result.Steps)-1].Agent
}

// recordViolation stores a false-claim error in the result. Any other error
// fails the test.
func (r *Runner) recordViolation(scenario Scenario, result *Result, days int32, err error) {
	r.t.Helper()
	var verr *sim.ViolationError
	if !errors.As(err, &verr) {
		r.t.Fatalf("Run: scenario %q: %v", scenario.Name, err)
	}
	result.Violation = verr
	result.Days = days
}

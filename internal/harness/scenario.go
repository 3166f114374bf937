package harness

import (
	"onebit/internal/protocol"
	"onebit/internal/sim"
)

// Scenario defines a single simulated run.
type Scenario struct {
	// Name is a human-readable tag for failure output. It also labels the
	// run when Factory bypasses the registry.
	Name string

	// Protocol is the registry name or alias of the strategy under test.
	// Ignored when Factory is set.
	Protocol string

	// Agents is the number of participating agents.
	Agents int

	// Seed drives the uniform visit source. Unused when Script is true.
	Seed int64

	// Visits, when non-empty, scripts the first visits of the run in order.
	// With Script true the run stops when the script is exhausted; otherwise
	// the scheduler continues with seeded uniform visits until the claim.
	Visits []int
	Script bool

	// Factory, when non-nil, overrides the registry lookup. Use it to drive
	// the scheduler with a deliberately broken strategy and observe the
	// violation report.
	Factory protocol.Factory

	// OnStep, when non-nil, is called after every simulated day with the
	// step record and the live protocol instances. Use it to check
	// invariants that need agent-internal state. It runs before claims are
	// adjudicated, so it also sees a violating day.
	OnStep func(rec sim.StepRecord, agents []protocol.Protocol)
}

// Result captures a finished run, or a scripted partial one.
type Result struct {
	// Days is the number of days simulated, counted the 1-based way run
	// lengths are reported.
	Days int32

	// Claimed is true when the run ended with a correct termination claim.
	Claimed bool

	// ClaimedBy is the id of the claiming agent, or -1 when no claim was
	// made.
	ClaimedBy int

	// Steps holds every step record in order.
	Steps []sim.StepRecord

	// Agents holds the live protocol instances, indexed by agent id, for
	// post-run state inspection.
	Agents []protocol.Protocol

	// Violation is set when an agent made a false claim.
	Violation *sim.ViolationError
}

// Package protocol implements anonymous one-bit coordination protocols for
// the prisoners-and-light-switch problem. N agents are visited one at a time
// in random order; the only communication channel is a single shared boolean
// signal an agent may observe and toggle during its visit. Each protocol
// decides, from strictly local state plus the signal, when to claim that
// every agent has been visited at least once.
package protocol

// Signal is the single shared boolean all agents communicate through.
// Exactly one agent observes or mutates it per day; the scheduler enforces
// that by handing the signal only to the agent visited that day.
type Signal struct {
	on bool
}

// IsOn reports whether the signal is raised.
func (s *Signal) IsOn() bool {
	return s.on
}

// IsOff reports whether the signal is lowered.
func (s *Signal) IsOff() bool {
	return !s.on
}

// TurnOn raises the signal.
func (s *Signal) TurnOn() {
	s.on = true
}

// TurnOff lowers the signal.
func (s *Signal) TurnOff() {
	s.on = false
}

// Claim is an agent's assertion at the end of a visit.
type Claim int

const (
	// ClaimNothing means the agent makes no assertion this visit.
	ClaimNothing Claim = iota

	// ClaimEveryoneVisited asserts that every agent has been visited at
	// least once. The scheduler adjudicates it against ground truth; a
	// false claim is a protocol defect.
	ClaimEveryoneVisited
)

// String returns a short human-readable name for the claim.
func (c Claim) String() string {
	switch c {
	case ClaimNothing:
		return "nothing"
	case ClaimEveryoneVisited:
		return "everyone-visited"
	}
	return "unknown"
}

// Protocol is the per-agent strategy contract. Implementations hold strictly
// local mutable state, assigned an immutable agent id at construction.
// TakeAction is invoked once per visit with the current day number (0-based)
// and the shared signal, and returns the agent's claim for that visit.
type Protocol interface {
	TakeAction(day int32, sig *Signal) Claim
}

// Factory constructs a fresh protocol instance for one agent. id is the
// agent's identity in [0, nAgents); nAgents is the total number of agents.
type Factory func(id, nAgents int) Protocol

// Package sim runs one-bit coordination protocols against a simulated
// schedule of daily visits. The Scheduler owns everything the protocols
// must not see: the shared signal between visits, the ground-truth record
// of who has been in the room, and the day counter. Protocols only ever
// observe the signal during their own visit, so the information asymmetry
// of the riddle is enforced structurally.
package sim

import (
	"context"
	"fmt"

	"onebit/internal/protocol"
)

// MaxAgents bounds the agent count a simulation accepts. The leader-counter
// protocol needs on the order of N^2 ln N days, so the cap keeps int32 day
// counters comfortably below overflow.
const MaxAgents = 10_000

// StepRecord describes a single simulated day: who was visited, how the
// signal changed, and what the agent claimed.
type StepRecord struct {
	Day          int32 // 1-based day number
	Agent        int
	FirstVisit   bool // true if this was the agent's first time in the room
	SignalBefore bool
	SignalAfter  bool
	Claim        protocol.Claim
}

// Observer receives every StepRecord as it happens. Observers run on the
// scheduling goroutine before claims are adjudicated, so a violating day is
// still delivered.
type Observer func(StepRecord)

// ViolationError reports a false termination claim: an agent asserted that
// everyone has been visited while at least one agent had never entered the
// room. It is a protocol defect and is never retried.
type ViolationError struct {
	Protocol  string
	Day       int32
	Agent     int
	Unvisited int
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("protocol violation: %s agent %d claimed everyone visited on day %d with %d agents still unvisited",
		e.Protocol, e.Agent, e.Day, e.Unvisited)
}

// Scheduler drives a single run. It constructs one protocol instance per
// agent, draws the daily visit from a VisitSource, and adjudicates claims
// against its own visit record.
type Scheduler struct {
	name      string
	nAgents   int
	agents    []protocol.Protocol
	visited   []bool
	nVisited  int
	signal    protocol.Signal
	day       int32
	src       VisitSource
	observers []Observer
}

// NewScheduler creates a run over nAgents instances built by factory, with
// visits drawn from src. name labels the run in violation reports. nAgents
// must be at least 1; batch entry points validate before constructing.
func NewScheduler(name string, nAgents int, factory protocol.Factory, src VisitSource) *Scheduler {
	agents := make([]protocol.Protocol, nAgents)
	for id := range agents {
		agents[id] = factory(id, nAgents)
	}
	return &Scheduler{
		name:    name,
		nAgents: nAgents,
		agents:  agents,
		visited: make([]bool, nAgents),
		src:     src,
	}
}

// Observe registers fn to be called after every step.
func (s *Scheduler) Observe(fn Observer) {
	s.observers = append(s.observers, fn)
}

// Day returns the number of days simulated so far.
func (s *Scheduler) Day() int32 {
	return s.day
}

// AllVisited reports whether every agent has been in the room at least once.
func (s *Scheduler) AllVisited() bool {
	return s.nVisited == s.nAgents
}

// Step simulates one day: draw the visited agent, record ground truth, let
// the agent act on the signal, advance the day. The returned record carries
// the 1-based day number. A false claim returns the record together with a
// *ViolationError.
func (s *Scheduler) Step() (StepRecord, error) {
	agent := s.src.Next(s.nAgents)
	first := !s.visited[agent]
	if first {
		s.visited[agent] = true
		s.nVisited++
	}

	before := s.signal.IsOn()
	// Protocols see the 0-based day; results count days 1-based.
	claim := s.agents[agent].TakeAction(s.day, &s.signal)
	s.day++

	rec := StepRecord{
		Day:          s.day,
		Agent:        agent,
		FirstVisit:   first,
		SignalBefore: before,
		SignalAfter:  s.signal.IsOn(),
		Claim:        claim,
	}
	for _, fn := range s.observers {
		fn(rec)
	}

	if claim == protocol.ClaimEveryoneVisited && s.nVisited < s.nAgents {
		return rec, &ViolationError{
			Protocol:  s.name,
			Day:       s.day,
			Agent:     agent,
			Unvisited: s.nAgents - s.nVisited,
		}
	}
	return rec, nil
}

// Run steps until an agent claims that everyone has been visited. It
// returns the 1-based day of a correct claim. A false claim surfaces as a
// *ViolationError; cancellation surfaces as the context's error.
func (s *Scheduler) Run(ctx context.Context) (int32, error) {
	for {
		rec, err := s.Step()
		if err != nil {
			return 0, err
		}
		if rec.Claim == protocol.ClaimEveryoneVisited {
			return rec.Day, nil
		}
		// Long runs are legitimate (the leader protocol needs ~N^2 ln N
		// days), so poll for cancellation instead of checking every step.
		if s.day&1023 == 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			default:
			}
		}
	}
}

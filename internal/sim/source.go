package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// NewSeed draws a fresh base seed from the operating system's entropy pool,
// falling back to the wall clock if that fails. Seeds are kept non-negative
// so they round-trip cleanly through flags and logs.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// VisitSource produces the sequence of warden picks for a run. Each call
// returns the index of the agent brought into the room on the next day.
type VisitSource interface {
	// Next returns an agent index in [0, nAgents).
	Next(nAgents int) int
}

// UniformSource draws agents uniformly at random with replacement. It is
// the source the riddle specifies: every agent is equally likely every day,
// independent of history.
type UniformSource struct {
	rng *rand.Rand
}

// NewUniformSource creates a uniform source seeded deterministically, so
// runs are reproducible given the same seed.
func NewUniformSource(seed int64) *UniformSource {
	return &UniformSource{rng: rand.New(rand.NewSource(seed))}
}

// Next returns a uniformly random agent index.
func (s *UniformSource) Next(nAgents int) int {
	return s.rng.Intn(nAgents)
}

// ScriptedSource replays a fixed visit sequence. It is meant for tests that
// need full control over the schedule; drawing past the end of the script
// panics rather than inventing visits.
type ScriptedSource struct {
	visits []int
	pos    int
}

// NewScriptedSource creates a source that yields exactly the given visits
// in order.
func NewScriptedSource(visits ...int) *ScriptedSource {
	return &ScriptedSource{visits: visits}
}

// Next returns the next scripted visit.
func (s *ScriptedSource) Next(nAgents int) int {
	if s.pos >= len(s.visits) {
		panic(fmt.Sprintf("sim: scripted source exhausted after %d visits", len(s.visits)))
	}
	v := s.visits[s.pos]
	s.pos++
	if v < 0 || v >= nAgents {
		panic(fmt.Sprintf("sim: scripted visit %d out of range [0,%d)", v, nAgents))
	}
	return v
}

// Remaining reports how many scripted visits have not been consumed yet.
func (s *ScriptedSource) Remaining() int {
	return len(s.visits) - s.pos
}

// PrefixSource yields a scripted prefix and then falls back to uniform
// random draws. Useful for steering a run into a known state before letting
// it finish naturally.
type PrefixSource struct {
	prefix  *ScriptedSource
	uniform *UniformSource
}

// NewPrefixSource creates a source that yields the given visits first and
// uniform draws from seed afterwards.
func NewPrefixSource(seed int64, visits ...int) *PrefixSource {
	return &PrefixSource{
		prefix:  NewScriptedSource(visits...),
		uniform: NewUniformSource(seed),
	}
}

// Next returns the next prefix visit, or a uniform draw once the prefix is
// consumed.
func (s *PrefixSource) Next(nAgents int) int {
	if s.prefix.Remaining() > 0 {
		return s.prefix.Next(nAgents)
	}
	return s.uniform.Next(nAgents)
}

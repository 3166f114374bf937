package protocol

// LeaderCounter is the classic dedicated-counter strategy. Agent 0 is the
// fixed leader; every other agent raises the signal exactly once in its
// lifetime, on its first visit that finds the signal lowered. The leader
// lowers the signal whenever it finds it raised and counts how often that
// happened. After nAgents-1 distinct raises have been counted, every
// non-leader must have visited at least once, and the leader has trivially
// visited too, so the leader claims.
type LeaderCounter struct {
	id      int
	nAgents int

	// signaled records whether this agent already spent its single raise.
	// Meaningful for non-leaders only.
	signaled bool

	// offCount is the number of raises the leader has absorbed.
	// Meaningful for the leader only.
	offCount int32
}

// NewLeaderCounter creates the leader-counter strategy for one agent.
func NewLeaderCounter(id, nAgents int) *LeaderCounter {
	return &LeaderCounter{id: id, nAgents: nAgents}
}

// TakeAction implements Protocol.
func (p *LeaderCounter) TakeAction(day int32, sig *Signal) Claim {
	if p.id == 0 {
		if sig.IsOn() {
			sig.TurnOff()
			p.offCount++
		}
		if p.offCount == int32(p.nAgents-1) {
			return ClaimEveryoneVisited
		}
		return ClaimNothing
	}

	if !p.signaled && sig.IsOff() {
		sig.TurnOn()
		p.signaled = true
	}
	// Non-leaders never claim.
	return ClaimNothing
}

// OffCount returns the number of raises the leader has absorbed so far.
// It is zero for non-leaders.
func (p *LeaderCounter) OffCount() int32 {
	return p.offCount
}

// HasSignaled reports whether this agent has already raised the signal.
// It is false for the leader, which never raises.
func (p *LeaderCounter) HasSignaled() bool {
	return p.signaled
}

package protocol

import "math/bits"

// Stage length multipliers: each stage of the first cycle lasts 7*nAgents
// days, each stage of every later cycle lasts 3*nAgents days. These constants
// are tuned, not derived; changing them changes the protocol's behavior.
const (
	firstCycleStageFactor = 7
	laterCycleStageFactor = 3
)

// TokenMerge is the binary token-merging strategy. Every agent starts with a
// small token allowance chosen so the total across all agents is exactly
// 2^k, where k = ceil(log2(nAgents)). Days are partitioned into repeating
// stages; during stage s the shared signal carries a single in-flight unit
// of weight 2^s between agents. An agent holding the 2^s bit of its token
// count may offer that unit by raising the signal, and an agent holding a
// matching bit absorbs a raised unit by lowering the signal, doubling the
// unit into 2^(s+1). On the last day of a stage any visitor absorbs an
// outstanding unit unconditionally so no offer leaks across stages. Token
// counts only ever merge upward, so the first agent whose count reaches 2^k
// has provably absorbed every agent's initial allowance and claims.
type TokenMerge struct {
	id      int
	nAgents int
	stages  int32 // k = ceil(log2(nAgents))
	tokens  int32
}

// NewTokenMerge creates the token-merging strategy for one agent. Agents
// with id below 2^k - nAgents start with 2 tokens, the rest with 1, which
// makes the initial token mass exactly 2^k.
func NewTokenMerge(id, nAgents int) *TokenMerge {
	p := &TokenMerge{
		id:      id,
		nAgents: nAgents,
		stages:  NumStages(nAgents),
	}
	extra := (int32(1) << p.stages) - int32(nAgents)
	if int32(id) < extra {
		p.tokens = 2
	} else {
		p.tokens = 1
	}
	return p
}

// TakeAction implements Protocol.
func (p *TokenMerge) TakeAction(day int32, sig *Signal) Claim {
	// A single agent holds the full token mass from the start; there is
	// nothing to exchange and no stage schedule to consult.
	if p.stages > 0 {
		p.maybeTurnOff(day, sig)
		p.maybeTurnOn(day, sig)
	}

	if p.tokens == int32(1)<<p.stages {
		return ClaimEveryoneVisited
	}
	return ClaimNothing
}

// maybeTurnOff absorbs an in-flight unit. It applies only when the signal is
// raised: the visitor takes the unit if it holds the current stage's bit, or
// unconditionally on the stage's last day so the offer cannot outlive its
// stage.
func (p *TokenMerge) maybeTurnOff(day int32, sig *Signal) {
	if sig.IsOff() {
		return
	}
	rate := int32(1) << StageIndex(day, p.nAgents)
	if p.tokens&rate != 0 || IsLastDayOfStage(day, p.nAgents) {
		p.tokens += rate
		sig.TurnOff()
	}
}

// maybeTurnOn offers a unit of the weight that will be exchanged tomorrow.
// It applies only when the signal is lowered.
func (p *TokenMerge) maybeTurnOn(day int32, sig *Signal) {
	if sig.IsOn() {
		return
	}
	nextRate := int32(1) << StageIndex(day+1, p.nAgents)
	if p.tokens&nextRate != 0 {
		p.tokens -= nextRate
		sig.TurnOn()
	}
}

// Tokens returns the agent's current token count.
func (p *TokenMerge) Tokens() int32 {
	return p.tokens
}

// NumStages returns k = ceil(log2(nAgents)), the number of bit positions
// needed to represent token weights up to the full mass. It is 0 for a
// single agent.
func NumStages(nAgents int) int32 {
	return int32(bits.Len(uint(nAgents - 1)))
}

// StageIndex returns the exchange stage active on the given day. The first
// cycle spends 7*nAgents days per stage; every later cycle spends 3*nAgents
// days per stage, wrapping modulo the stage count. All agents compute the
// same value from the day number alone, so the schedule needs no
// communication. For a single agent there is only ever stage 0.
func StageIndex(day int32, nAgents int) int32 {
	k := NumStages(nAgents)
	if k == 0 {
		return 0
	}
	firstCycle := firstCycleStageFactor * int32(nAgents)
	if day < k*firstCycle {
		return day / firstCycle
	}
	tail := day - k*firstCycle
	return tail / (laterCycleStageFactor * int32(nAgents)) % k
}

// IsLastDayOfStage reports whether the stage index changes on the next day.
func IsLastDayOfStage(day int32, nAgents int) bool {
	return StageIndex(day, nAgents) != StageIndex(day+1, nAgents)
}

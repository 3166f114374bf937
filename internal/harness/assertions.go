package harness

import (
	"testing"

	"onebit/internal/protocol"
	"onebit/internal/sim"
)

// AssertCompleted asserts that the run ended with a correct claim and that
// the recorded step count is consistent with the reported run length.
func AssertCompleted(t *testing.T, result Result) {
	t.Helper()
	if result.Violation != nil {
		t.Fatalf("AssertCompleted: run ended in violation: %v", result.Violation)
	}
	if !result.Claimed {
		t.Fatalf("AssertCompleted: run ended after %d days without a claim", result.Days)
	}
	if got := int32(len(result.Steps)); result.Days != got {
		t.Errorf("AssertCompleted: Days = %d but %d steps were recorded", result.Days, got)
	}
	if minDays := int32(len(result.Agents)); result.Days < minDays {
		t.Errorf("AssertCompleted: claim after %d days, but %d agents cannot all be visited that fast", result.Days, minDays)
	}
}

// AssertClaimedBy asserts that the correct claim came from a specific agent.
func AssertClaimedBy(t *testing.T, result Result, agent int) {
	t.Helper()
	if !result.Claimed {
		t.Error("AssertClaimedBy: no claim was made")
		return
	}
	if result.ClaimedBy != agent {
		t.Errorf("AssertClaimedBy: claim came from agent %d, want agent %d", result.ClaimedBy, agent)
	}
}

// AssertNoSignalActivity asserts that the signal stayed lowered for the
// whole run.
func AssertNoSignalActivity(t *testing.T, result Result) {
	t.Helper()
	for _, rec := range result.Steps {
		if rec.SignalBefore || rec.SignalAfter {
			t.Errorf("AssertNoSignalActivity: day %d: signal was touched (before=%v after=%v)", rec.Day, rec.SignalBefore, rec.SignalAfter)
		}
	}
}

// TokenMassCheck returns an OnStep hook that asserts the total token mass,
// including any unit in flight on the signal, stays exactly 2^k on every day
// of the run. A unit left raised after a step will be absorbed at the next
// day's stage rate, which is what the in-flight term accounts for.
func TokenMassCheck(t *testing.T, nAgents int) func(sim.StepRecord, []protocol.Protocol) {
	t.Helper()
	total := int32(1) << protocol.NumStages(nAgents)
	return func(rec sim.StepRecord, agents []protocol.Protocol) {
		sum := int32(0)
		for id, a := range agents {
			tm, ok := a.(*protocol.TokenMerge)
			if !ok {
				t.Fatalf("TokenMassCheck: agent %d is %T, not *protocol.TokenMerge", id, a)
			}
			sum += tm.Tokens()
		}
		if rec.SignalAfter {
			sum += int32(1) << protocol.StageIndex(rec.Day, nAgents)
		}
		if sum != total {
			t.Fatalf("TokenMassCheck: day %d: token mass %d, want %d", rec.Day, sum, total)
		}
	}
}

// TokenCounts extracts the current token count of every agent. It fails the
// test if the run was not a token-merge run.
func TokenCounts(t *testing.T, result Result) []int32 {
	t.Helper()
	counts := make([]int32, len(result.Agents))
	for id, a := range result.Agents {
		tm, ok := a.(*protocol.TokenMerge)
		if !ok {
			t.Fatalf("TokenCounts: agent %d is %T, not *protocol.TokenMerge", id, a)
		}
		counts[id] = tm.Tokens()
	}
	return counts
}

// CountRaises returns, per agent, how many visits ended with the signal
// raised after finding it lowered.
func CountRaises(result Result) map[int]int {
	raises := make(map[int]int)
	for _, rec := range result.Steps {
		if !rec.SignalBefore && rec.SignalAfter {
			raises[rec.Agent]++
		}
	}
	return raises
}

// CountLowers returns, per agent, how many visits ended with the signal
// lowered after finding it raised.
func CountLowers(result Result) map[int]int {
	lowers := make(map[int]int)
	for _, rec := range result.Steps {
		if rec.SignalBefore && !rec.SignalAfter {
			lowers[rec.Agent]++
		}
	}
	return lowers
}

// SignalTransitions counts the days on which a visit changed the signal.
func SignalTransitions(result Result) int {
	count := 0
	for _, rec := range result.Steps {
		if rec.SignalBefore != rec.SignalAfter {
			count++
		}
	}
	return count
}

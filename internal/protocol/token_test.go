package protocol

import "testing"

func TestNumStages(t *testing.T) {
	cases := []struct {
		nAgents int
		want    int32
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{100, 7},
		{128, 7},
		{129, 8},
	}
	for _, tc := range cases {
		if got := NumStages(tc.nAgents); got != tc.want {
			t.Errorf("NumStages(%d) = %d, want %d", tc.nAgents, got, tc.want)
		}
	}
}

func TestStageIndex_FirstAndLaterCycles(t *testing.T) {
	// N = 4: k = 2, first-cycle stages last 28 days, later stages 12 days.
	cases := []struct {
		day  int32
		want int32
	}{
		{0, 0},
		{27, 0},
		{28, 1},
		{55, 1},
		{56, 0}, // first day after the long first cycle
		{67, 0},
		{68, 1},
		{79, 1},
		{80, 0}, // wrap into the next short cycle
	}
	for _, tc := range cases {
		if got := StageIndex(tc.day, 4); got != tc.want {
			t.Errorf("StageIndex(%d, 4) = %d, want %d", tc.day, got, tc.want)
		}
	}
}

func TestStageIndex_SingleAgent(t *testing.T) {
	for _, day := range []int32{0, 1, 7, 1000} {
		if got := StageIndex(day, 1); got != 0 {
			t.Errorf("StageIndex(%d, 1) = %d, want 0", day, got)
		}
		if IsLastDayOfStage(day, 1) {
			t.Errorf("IsLastDayOfStage(%d, 1) = true, want false", day)
		}
	}
}

func TestIsLastDayOfStage(t *testing.T) {
	// N = 4 boundaries: 27 (0->1), 55 (1->0), 67 (0->1), 79 (1->0).
	lastDays := map[int32]bool{27: true, 55: true, 67: true, 79: true}
	for day := int32(0); day < 90; day++ {
		if got := IsLastDayOfStage(day, 4); got != lastDays[day] {
			t.Errorf("IsLastDayOfStage(%d, 4) = %v, want %v", day, got, lastDays[day])
		}
	}
}

// TestStageIndex_AdvancesByOneModK checks the schedule's shape for several
// agent counts: the stage only ever advances by one, modulo the stage count,
// and every stage run has the expected length (7N days in the first cycle,
// 3N after).
func TestStageIndex_AdvancesByOneModK(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8, 100} {
		k := NumStages(n)
		firstCycleEnd := k * firstCycleStageFactor * int32(n)
		// Cover the first cycle plus three later cycles.
		horizon := firstCycleEnd + 3*k*laterCycleStageFactor*int32(n)

		prev := StageIndex(0, n)
		if prev != 0 {
			t.Errorf("n=%d: StageIndex(0) = %d, want 0", n, prev)
		}
		runLength := int32(1)
		for day := int32(1); day <= horizon; day++ {
			cur := StageIndex(day, n)
			if cur == prev {
				runLength++
				continue
			}
			if cur != (prev+1)%k {
				t.Fatalf("n=%d day=%d: stage jumped %d -> %d", n, day, prev, cur)
			}
			wantRun := laterCycleStageFactor * int32(n)
			if day <= firstCycleEnd {
				wantRun = firstCycleStageFactor * int32(n)
			}
			if runLength != wantRun {
				t.Fatalf("n=%d: stage %d before day %d ran %d days, want %d",
					n, prev, day, runLength, wantRun)
			}
			prev = cur
			runLength = 1
		}
	}
}

func TestNewTokenMerge_InitialAllowance(t *testing.T) {
	cases := []struct {
		nAgents int
		want    []int32
	}{
		{1, []int32{1}},
		{3, []int32{2, 1, 1}},
		{4, []int32{1, 1, 1, 1}},
		{5, []int32{2, 2, 2, 1, 1}},
		{6, []int32{2, 2, 1, 1, 1, 1}},
	}
	for _, tc := range cases {
		var sum int32
		for id, want := range tc.want {
			p := NewTokenMerge(id, tc.nAgents)
			if p.Tokens() != want {
				t.Errorf("n=%d agent %d: tokens = %d, want %d", tc.nAgents, id, p.Tokens(), want)
			}
			sum += p.Tokens()
		}
		if mass := int32(1) << NumStages(tc.nAgents); sum != mass {
			t.Errorf("n=%d: initial token mass = %d, want %d", tc.nAgents, sum, mass)
		}
	}
}

func TestTokenMerge_SingleAgentClaimsImmediately(t *testing.T) {
	p := NewTokenMerge(0, 1)
	var sig Signal

	claim := p.TakeAction(0, &sig)

	if claim != ClaimEveryoneVisited {
		t.Errorf("claim = %v, want everyone-visited", claim)
	}
	if sig.IsOn() {
		t.Error("single agent should leave the signal untouched")
	}
	if p.Tokens() != 1 {
		t.Errorf("tokens = %d, want 1", p.Tokens())
	}
}

func TestTokenMerge_OfferThenAbsorb(t *testing.T) {
	// N = 2: both agents start with one token of weight 1. One offers,
	// the other absorbs the pair and claims.
	offerer := NewTokenMerge(1, 2)
	absorber := NewTokenMerge(0, 2)
	var sig Signal

	if claim := offerer.TakeAction(0, &sig); claim != ClaimNothing {
		t.Fatalf("offerer claimed %v", claim)
	}
	if !sig.IsOn() {
		t.Fatal("offerer should raise the signal")
	}
	if offerer.Tokens() != 0 {
		t.Fatalf("offerer tokens = %d, want 0", offerer.Tokens())
	}

	claim := absorber.TakeAction(1, &sig)
	if sig.IsOn() {
		t.Error("absorber should lower the signal")
	}
	if absorber.Tokens() != 2 {
		t.Errorf("absorber tokens = %d, want 2", absorber.Tokens())
	}
	if claim != ClaimEveryoneVisited {
		t.Errorf("claim = %v, want everyone-visited (full mass of 2 held)", claim)
	}
}

func TestTokenMerge_HoldsOfferWithoutMatchingBit(t *testing.T) {
	// N = 5, stage 0: an agent with tokens = 2 lacks the weight-1 bit and
	// must leave a raised signal alone in mid-stage.
	p := NewTokenMerge(0, 5)
	if p.Tokens() != 2 {
		t.Fatalf("setup: tokens = %d, want 2", p.Tokens())
	}
	var sig Signal
	sig.TurnOn()

	p.TakeAction(33, &sig) // day 33 is inside stage 0 (days 0..34)

	if sig.IsOff() {
		t.Error("signal should remain raised")
	}
	if p.Tokens() != 2 {
		t.Errorf("tokens = %d, want unchanged 2", p.Tokens())
	}
}

func TestTokenMerge_ForcedAbsorbThenReofferOnStageBoundary(t *testing.T) {
	// N = 5, day 34 is the last day of stage 0. The same visit must first
	// absorb the outstanding weight-1 unit unconditionally, then offer a
	// weight-2 unit for the stage that starts tomorrow.
	p := NewTokenMerge(0, 5)
	var sig Signal
	sig.TurnOn()

	claim := p.TakeAction(34, &sig)

	if claim != ClaimNothing {
		t.Errorf("claim = %v, want nothing", claim)
	}
	if !sig.IsOn() {
		t.Error("signal should be raised again by the follow-up offer")
	}
	// 2 tokens, +1 forced absorb, -2 offered for tomorrow's stage.
	if p.Tokens() != 1 {
		t.Errorf("tokens = %d, want 1", p.Tokens())
	}
}

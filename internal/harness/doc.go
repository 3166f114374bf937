// Package harness provides a single-run test harness for validating the
// day-by-day dynamics of coordination protocols.
//
// The harness exercises the real protocol implementations, Scheduler, and
// visit sources with no mocks. Scenarios either script the exact visit order
// or draw visits from a seeded uniform source, and an OnStep hook exposes
// every step record together with the live protocol instances so tests can
// check per-day invariants such as token mass conservation.
//
// Usage:
//
//	func TestTokenMassConserved(t *testing.T) {
//	    r := harness.NewRunner(t)
//	    result := r.Run(harness.Scenario{
//	        Name:     "conservation",
//	        Protocol: "token",
//	        Agents:   8,
//	        Seed:     42,
//	        OnStep:   harness.TokenMassCheck(t, 8),
//	    })
//	    harness.AssertCompleted(t, result)
//	}
package harness

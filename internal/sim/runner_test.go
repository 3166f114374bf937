package sim

import (
	"context"
	"errors"
	"testing"

	"onebit/internal/protocol"
)

func TestRunBatch_ValidatesArguments(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  BatchConfig
	}{
		{"unknown protocol", BatchConfig{Protocol: "bogus", Agents: 10, Sims: 1}},
		{"zero agents", BatchConfig{Protocol: "counter", Agents: 0, Sims: 1}},
		{"negative agents", BatchConfig{Protocol: "counter", Agents: -3, Sims: 1}},
		{"too many agents", BatchConfig{Protocol: "counter", Agents: MaxAgents + 1, Sims: 1}},
		{"zero sims", BatchConfig{Protocol: "counter", Agents: 10, Sims: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := RunBatch(ctx, tc.cfg); err == nil {
				t.Errorf("RunBatch(%+v) succeeded, want error", tc.cfg)
			}
		})
	}
}

func TestRunBatch_UnknownProtocolSentinel(t *testing.T) {
	_, err := RunBatch(context.Background(), BatchConfig{Protocol: "bogus", Agents: 2, Sims: 1})
	if !errors.Is(err, protocol.ErrUnknownProtocol) {
		t.Errorf("error = %v, want ErrUnknownProtocol", err)
	}
}

func TestRunBatch_SmallBatch(t *testing.T) {
	res, err := RunBatch(context.Background(), BatchConfig{
		Protocol: "counter",
		Agents:   4,
		Sims:     8,
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if res.Protocol != "counter" {
		t.Errorf("protocol = %q, want counter", res.Protocol)
	}
	if len(res.Days) != 8 {
		t.Fatalf("got %d day counts, want 8", len(res.Days))
	}
	for i, d := range res.Days {
		if d < 4 {
			t.Errorf("run %d finished on day %d, impossible with 4 agents", i, d)
		}
	}
	if res.Summary.Count != 8 {
		t.Errorf("summary count = %d, want 8", res.Summary.Count)
	}
	if res.Summary.Min < 4 || res.Summary.Max < res.Summary.Min {
		t.Errorf("summary bounds min=%d max=%d are inconsistent", res.Summary.Min, res.Summary.Max)
	}
}

func TestRunBatch_AliasResolvesToCanonicalName(t *testing.T) {
	res, err := RunBatch(context.Background(), BatchConfig{
		Protocol: "token-merge",
		Agents:   3,
		Sims:     2,
		Seed:     5,
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if res.Protocol != "token" {
		t.Errorf("protocol = %q, want canonical name token", res.Protocol)
	}
}

func TestRunBatch_SeedReproducesDays(t *testing.T) {
	cfg := BatchConfig{Protocol: "token", Agents: 9, Sims: 16, Seed: 99}

	first, err := RunBatch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first RunBatch: %v", err)
	}

	// Same seed with a different worker count must produce the same runs.
	cfg.Parallel = 3
	second, err := RunBatch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second RunBatch: %v", err)
	}

	if len(first.Days) != len(second.Days) {
		t.Fatalf("day counts differ in length: %d vs %d", len(first.Days), len(second.Days))
	}
	for i := range first.Days {
		if first.Days[i] != second.Days[i] {
			t.Errorf("run %d: %d days vs %d days with same seed", i, first.Days[i], second.Days[i])
		}
	}
}

func TestRunBatch_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 600 agents guarantees each counter run outlasts the cancellation
	// poll interval, so workers must abort rather than finish.
	_, err := RunBatch(ctx, BatchConfig{
		Protocol: "counter",
		Agents:   600,
		Sims:     2,
		Seed:     3,
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRunBatch_ObserverSeesEveryRun(t *testing.T) {
	const sims = 3
	lastDay := make([]int32, sims)

	result, err := RunBatch(context.Background(), BatchConfig{
		Protocol: "token",
		Agents:   4,
		Sims:     sims,
		Seed:     11,
		Parallel: 1,
		Observe: func(run int) Observer {
			return func(rec StepRecord) {
				lastDay[run] = rec.Day
			}
		},
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	for i, days := range result.Days {
		if lastDay[i] != days {
			t.Errorf("run %d: observer saw day %d last, run took %d days", i, lastDay[i], days)
		}
	}
}

// Package stats aggregates day counts from repeated simulation runs into
// summary statistics.
package stats

import (
	"fmt"
	"math"
)

// Summary describes a sample of per-run day counts.
type Summary struct {
	// Count is the number of runs in the sample.
	Count int `json:"count"`

	// Mean is the arithmetic mean of the day counts.
	Mean float64 `json:"mean"`

	// Std is the population standard deviation (divided by Count, not
	// Count-1; the sample is the whole batch, not a draw from one).
	Std float64 `json:"std"`

	// Min and Max are the smallest and largest day counts observed.
	Min int32 `json:"min"`
	Max int32 `json:"max"`
}

// Summarize reduces a batch of day counts to a Summary. An empty batch
// yields the zero Summary.
func Summarize(days []int32) Summary {
	if len(days) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(days),
		Min:   days[0],
		Max:   days[0],
	}

	var sum float64
	for _, d := range days {
		sum += float64(d)
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Mean = sum / float64(s.Count)

	var sq float64
	for _, d := range days {
		diff := float64(d) - s.Mean
		sq += diff * diff
	}
	s.Std = math.Sqrt(sq / float64(s.Count))

	return s
}

// String renders the summary in a compact single line.
func (s Summary) String() string {
	return fmt.Sprintf("runs=%d mean=%.1f std=%.1f min=%d max=%d",
		s.Count, s.Mean, s.Std, s.Min, s.Max)
}

package analysis

import (
	"fmt"
)

// Comparison contains a statistical comparison of two latency samples.
type Comparison struct {
	Name1           string
	Name2           string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	Winner          string // Name of the faster sample, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// Compare performs a full statistical comparison of two samples.
// Lower values win.
func Compare(name1 string, sample1 []float64, name2 string, sample2 []float64) *Comparison {
	stats1 := Describe(sample1)
	stats2 := Describe(sample2)
	mw := MannWhitneyU(sample1, sample2)

	winner := "tie"
	confident := false
	switch {
	case stats1.P50 < stats2.P50:
		winner, confident = name1, mw.Significant
	case stats2.P50 < stats1.P50:
		winner, confident = name2, mw.Significant
	}

	return &Comparison{
		Name1:           name1,
		Name2:           name2,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      ComputeEffectSize(sample1, sample2),
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *Comparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: p50=%.3fms, p99=%.3fms, mean=%.3fms\n"+
			"  %s: p50=%.3fms, p99=%.3fms, mean=%.3fms\n"+
			"  Difference: %.1f%% at p50\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Name1, c.Name2,
		c.Name1, c.Stats1.P50, c.Stats1.P99, c.Stats1.Mean,
		c.Name2, c.Stats2.P50, c.Stats2.P99, c.Stats2.Mean,
		safePctDiff(c.Stats1.P50, c.Stats2.P50),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

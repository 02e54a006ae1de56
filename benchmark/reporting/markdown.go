// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/discochess/blobcache/benchmark/analysis"
	"github.com/discochess/blobcache/benchmark/workload"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(cfg workload.Config) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Operations:** %d (%.0f%% writes)\n", cfg.Ops, cfg.WriteRatio*100)
	fmt.Fprintf(r.w, "- **Key space:** %d keys, %d-byte values\n", cfg.Keys, cfg.ValueSize)
	fmt.Fprintln(r.w, "- **Metric:** Per-operation latency in milliseconds (lower is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes one row per run.
func (r *MarkdownReport) WriteSummaryTable(results ...*workload.Result) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Store | Ops/s | Read p50 | Read p99 | Write p50 | Write p99 |")
	fmt.Fprintln(r.w, "|-------|-------|----------|----------|-----------|-----------|")

	for _, res := range results {
		reads := analysis.Describe(res.Reads)
		writes := analysis.Describe(res.Writes)
		fmt.Fprintf(r.w, "| %s | %.0f | %.3f | %.3f | %.3f | %.3f |\n",
			res.Name, res.Throughput(), reads.P50, reads.P99, writes.P50, writes.P99)
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(title string, comp *analysis.Comparison) {
	fmt.Fprintf(r.w, "## %s: %s vs %s\n\n", title, comp.Name1, comp.Name2)

	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Name1+" | "+comp.Name2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Name1)+2)+"|"+strings.Repeat("-", len(comp.Name2)+2)+"|")
	fmt.Fprintf(r.w, "| N | %d | %d |\n", comp.Stats1.N, comp.Stats2.N)
	fmt.Fprintf(r.w, "| Mean | %.3f | %.3f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| p50 | %.3f | %.3f |\n", comp.Stats1.P50, comp.Stats2.P50)
	fmt.Fprintf(r.w, "| p90 | %.3f | %.3f |\n", comp.Stats1.P90, comp.Stats2.P90)
	fmt.Fprintf(r.w, "| p99 | %.3f | %.3f |\n", comp.Stats1.P99, comp.Stats2.P99)
	fmt.Fprintf(r.w, "| Std Dev | %.3f | %.3f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** is significantly faster than %s ",
			comp.Winner, other(comp.Winner, comp.Name1, comp.Name2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func other(winner, n1, n2 string) string {
	if winner == n1 {
		return n2
	}
	return n1
}

// WriteDistributionChart writes an ASCII latency histogram.
func (r *MarkdownReport) WriteDistributionChart(name string, data []float64) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	hist, lo, step := makeHistogram(data, 10)
	maxCount := 0
	for _, count := range hist {
		maxCount = max(maxCount, count)
	}

	width := 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * width / maxCount
		}
		bar := strings.Repeat("█", barLen)
		from := lo + float64(i)*step
		fmt.Fprintf(r.w, "%8.3f-%8.3f │ %s %d\n", from, from+step, bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// makeHistogram buckets data into equal-width bins between its extremes.
func makeHistogram(data []float64, buckets int) (hist []int, lo, step float64) {
	hist = make([]int, buckets)
	if len(data) == 0 {
		return hist, 0, 0
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	step = (hi - lo) / float64(buckets)
	if step == 0 {
		step = 1
	}

	for _, v := range data {
		bucket := int((v - lo) / step)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}
	return hist, lo, step
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by blobcache bench*")
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/blobcache/benchmark/analysis"
	"github.com/discochess/blobcache/benchmark/reporting"
	"github.com/discochess/blobcache/benchmark/workload"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure read and write latency against a store",
	Long: `Run a mixed read/write workload against the store and print a
Markdown latency report. The workload uses its own storage key so the
main document is left alone.

With --baseline, the same workload also runs against a second store and
the report compares the two.

Examples:
  # Disk store with zstd compression
  blobcache --store file://./cache --codec zstd bench --ops 5000

  # Compare SQLite against disk
  blobcache --store sqlite://./cache.db bench --baseline file://./cache`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

var (
	benchCfg      = workload.DefaultConfig()
	benchKey      string
	benchBaseline string
	benchHist     bool
)

func init() {
	benchCmd.Flags().IntVar(&benchCfg.Ops, "ops", benchCfg.Ops, "number of operations")
	benchCmd.Flags().IntVar(&benchCfg.Keys, "keys", benchCfg.Keys, "size of the key space")
	benchCmd.Flags().Float64Var(&benchCfg.WriteRatio, "write-ratio", benchCfg.WriteRatio, "fraction of operations that write")
	benchCmd.Flags().IntVar(&benchCfg.ValueSize, "value-size", benchCfg.ValueSize, "bytes per written value")
	benchCmd.Flags().Uint64Var(&benchCfg.Seed, "seed", benchCfg.Seed, "operation sequence seed")
	benchCmd.Flags().StringVar(&benchKey, "bench-key", "blobcache_bench", "storage key used by the workload")
	benchCmd.Flags().StringVar(&benchBaseline, "baseline", "", "store URL to compare against")
	benchCmd.Flags().BoolVar(&benchHist, "histogram", false, "include latency histograms")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	target, err := benchStore(ctx, storeURL)
	if err != nil {
		return err
	}

	var baseline *workload.Result
	if benchBaseline != "" {
		baseline, err = benchStore(ctx, benchBaseline)
		if err != nil {
			return err
		}
	}

	report := reporting.NewMarkdownReport(cmd.OutOrStdout())
	report.WriteHeader("blobcache Store Latency")
	report.WriteMethodology(benchCfg)
	if baseline == nil {
		report.WriteSummaryTable(target)
	} else {
		report.WriteSummaryTable(target, baseline)
		report.WriteComparison("Reads", analysis.Compare(target.Name, target.Reads, baseline.Name, baseline.Reads))
		report.WriteComparison("Writes", analysis.Compare(target.Name, target.Writes, baseline.Name, baseline.Writes))
	}
	if benchHist {
		report.WriteDistributionChart(target.Name+" reads", target.Reads)
		report.WriteDistributionChart(target.Name+" writes", target.Writes)
	}
	report.WriteFooter()
	return nil
}

func benchStore(ctx context.Context, rawURL string) (*workload.Result, error) {
	client, err := openClientAt(ctx, rawURL, benchKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	result, err := workload.Run(ctx, rawURL, client, benchCfg)
	if err != nil {
		return nil, fmt.Errorf("benchmarking %s: %w", rawURL, err)
	}
	return result, nil
}

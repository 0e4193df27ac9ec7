package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/mbennett/easel/cmd/util"
	"github.com/mbennett/easel/lib/action"
	"github.com/mbennett/easel/lib/locks"
	"github.com/mbennett/easel/lib/queue"
	"github.com/mbennett/easel/lib/stats"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	queueBenchCmd = &cobra.Command{
		Use:     "queue",
		Short:   "Load test for the dependency-aware action queue",
		Long:    "Pushes a mix of reading and writing actions through a synchronizer and reports enqueue-to-settle latencies. No host connection is needed.",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
		RunE: runQueueBench,
	}
)

func init() {
	key := "ops"
	queueBenchCmd.Flags().Int(key, 10000, util.WrapString("Number of actions to push"))

	key = "budget"
	queueBenchCmd.Flags().Int(key, 0, util.WrapString("Concurrency budget of the queue (0 uses the default)"))

	key = "work"
	queueBenchCmd.Flags().Int(key, 100, util.WrapString("Simulated work per action in microseconds"))

	key = "warmup"
	queueBenchCmd.Flags().Int(key, 500, util.WrapString("Number of warmup actions excluded from the report"))
}

func runQueueBench(_ *cobra.Command, _ []string) error {
	ops := viper.GetInt("ops")
	budget := viper.GetInt("budget")
	work := time.Duration(viper.GetInt("work")) * time.Microsecond
	warmup := viper.GetInt("warmup")

	fmt.Println("Load test for the action queue")
	fmt.Println()
	fmt.Printf("Ops: %d, Budget: %d, Work: %v, Warmup: %d\n", ops, budget, work, warmup)
	fmt.Println()

	// The workload: sleeping stands in for host round trips
	worker := func(ctx context.Context, _ ...any) (any, error) {
		time.Sleep(work)
		return nil, nil
	}

	// A mix of writers and readers over the document lock plus an
	// independent dialog writer
	sync := action.NewSynchronizer(queue.New(budget))
	module := sync.SynchronizeModule("bench", action.Module{
		"paint":   {Command: worker, Reads: []locks.Lock{}, Writes: []locks.Lock{locks.LockDocument}},
		"inspect": {Command: worker, Reads: []locks.Lock{locks.LockDocument}, Writes: []locks.Lock{}},
		"dialog":  {Command: worker, Reads: []locks.Lock{}, Writes: []locks.Lock{locks.LockDialog}},
	})
	names := []string{"paint", "inspect", "inspect", "dialog"}

	timer := gometrics.NewTimer()
	hist := stats.NewLatencyHistogram()

	ctx := context.Background()

	// runActions pushes n actions and awaits them, recording latencies
	runActions := func(n int, samples []float64) (failed int) {
		futures := make([]*queue.Future, n)
		started := make([]time.Time, n)

		for i := 0; i < n; i++ {
			started[i] = time.Now()
			futures[i] = module[names[i%len(names)]](ctx)
		}

		for i, fut := range futures {
			if _, err := fut.Await(ctx); err != nil {
				failed++
			}

			elapsed := time.Since(started[i])
			timer.Update(elapsed)
			hist.AddSample(elapsed)
			if samples != nil {
				samples[i] = float64(elapsed.Microseconds())
			}
		}
		return failed
	}

	// Warmup phase, discarded so scheduler and allocator jitter at startup
	// does not skew the histogram
	if warmup > 0 {
		runActions(warmup, nil)
		hist.Reset()
		timer = gometrics.NewTimer()
	}

	// Measured phase
	samples := make([]float64, ops)
	benchStart := time.Now()
	failed := runActions(ops, samples)
	total := time.Since(benchStart)

	// Report
	fmt.Printf("Completed %d actions in %v (%.2f ops/sec), %d failed\n", hist.GetCount(), total, float64(ops)/total.Seconds(), failed)
	fmt.Println()

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Println("Enqueue-to-settle latency (exact):")
	fmt.Printf("  %-8s: %v\n", "mean", time.Duration(timer.Mean()))
	fmt.Printf("  %-8s: %v\n", "p50", time.Duration(ps[0]))
	fmt.Printf("  %-8s: %v\n", "p95", time.Duration(ps[1]))
	fmt.Printf("  %-8s: %v\n", "p99", time.Duration(ps[2]))
	fmt.Printf("  %-8s: %v\n", "max", time.Duration(timer.Max()))
	fmt.Println()

	fmt.Println("Bucketed estimates:")
	fmt.Printf("  %-8s: %v\n", "mean", hist.Average())
	fmt.Printf("  %-8s: %v\n", "p50", hist.MedianEstimate())
	fmt.Printf("  %-8s: %v\n", "p95", hist.PercentileEstimate(95))
	fmt.Printf("  %-8s: %v\n", "p99", hist.PercentileEstimate(99))
	fmt.Println()

	summary := stats.NewStats(samples)
	fmt.Println("Spread (microseconds):")
	fmt.Printf("  %-8s: %.1f\n", "stddev", summary.StdDeviation)
	fmt.Printf("  %-8s: %.1f\n", "min", summary.Min)
	fmt.Printf("  %-8s: %.1f\n", "max", summary.Max)
	fmt.Printf("  %-8s: %.3f\n", "min/max", summary.MinMaxRatio)
	fmt.Println()

	fmt.Println("Distribution:")
	boundaries, percentages := hist.Distribution()
	for i, p := range percentages {
		if p == 0 {
			continue
		}
		if i < len(boundaries) {
			fmt.Printf("  <= %-12v: %5.1f%%\n", boundaries[i], p)
		} else {
			fmt.Printf("   > %-12v: %5.1f%%\n", boundaries[len(boundaries)-1], p)
		}
	}

	return nil
}

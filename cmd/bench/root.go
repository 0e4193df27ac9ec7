package bench

import (
	"fmt"
	"testing"

	"github.com/mbennett/easel/cmd/util"
	"github.com/spf13/cobra"
)

var (
	// BenchCommands represents the bench command group
	BenchCommands = &cobra.Command{
		Use:   "bench",
		Short: "Load generators for the action queue and the host bridge",
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add subcommands
	BenchCommands.AddCommand(queueBenchCmd)
	BenchCommands.AddCommand(playBenchCmd)
}

// printResult prints a benchmark result with adaptive units
func printResult(test string, result testing.BenchmarkResult) {
	nsPerOp := float64(result.T.Nanoseconds()) / float64(result.N)
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Format the time per operation with appropriate units
	var timePerOpStr string
	if nsPerOp < 1000 {
		timePerOpStr = fmt.Sprintf("%.2f ns/op", nsPerOp)
	} else if nsPerOp < 1000000 {
		timePerOpStr = fmt.Sprintf("%.2f ns/op (%.2f µs/op)", nsPerOp, nsPerOp/1000)
	} else if nsPerOp < 1000000000 {
		timePerOpStr = fmt.Sprintf("%.2f ns/op (%.2f ms/op)", nsPerOp, nsPerOp/1000000)
	} else {
		timePerOpStr = fmt.Sprintf("%.2f ns/op (%.2f s/op)", nsPerOp, nsPerOp/1000000000)
	}

	// Format the operations per second with appropriate units
	opsPerSecStr := fmt.Sprintf("%.2f ops/sec", opsPerSec)

	// Print the formatted result
	fmt.Printf("%-20s\t%s\t%s\tAllocs: %d, AllocBytes: %d\n", test, timePerOpStr, opsPerSecStr, result.AllocsPerOp(), result.AllocedBytesPerOp())
}

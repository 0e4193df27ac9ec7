package bench

import (
	"fmt"
	"log"
	"testing"

	"github.com/mbennett/easel/cmd/util"
	"github.com/mbennett/easel/host/client"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/lib/document"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	host client.IHost

	playBenchCmd = &cobra.Command{
		Use:     "play",
		Short:   "Load test for the host bridge",
		Long:    "Runs play and fetchDocument operations against a host simulator and reports throughput per operation type.",
		PreRunE: setupBenchClient,
		RunE:    runPlayBench,
	}
)

func init() {
	// Add common host-link flags
	util.SetupLinkFlags(playBenchCmd)

	key := "threads"
	playBenchCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))

	key = "document"
	playBenchCmd.Flags().String(key, "demo", util.WrapString("Document to run the benchmark against"))
}

// setupBenchClient initializes the host client
func setupBenchClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetLinkConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	// Create the host client
	host, err = client.NewHostClient(
		*config,
		t,
		s,
	)

	return err
}

func runPlayBench(_ *cobra.Command, _ []string) error {
	fmt.Println("Load test for the host bridge")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetLinkConfig().String())

	threads := viper.GetInt("threads")
	docID := document.DocumentID(viper.GetString("document"))
	fmt.Printf("Threads: %d, Document: %s\n", threads, docID)
	fmt.Println()

	fmt.Println("starting benchmarks...")

	playResult := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(threads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				// A command with no target layers cannot hit a layer lock
				_, err := host.Play(docID, common.Command{Name: "benchmark"}, common.PlayOptions{Silent: true})
				if err != nil {
					log.Printf("(play) - error running command: %v\n", err)
				}
			}
		})
	})
	printResult("play", playResult)

	batchResult := testing.Benchmark(func(b *testing.B) {
		cmds := []common.Command{
			{Name: "benchmark"},
			{Name: "benchmark"},
			{Name: "benchmark"},
			{Name: "benchmark"},
		}

		b.SetParallelism(threads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := host.PlayBatch(docID, cmds, common.PlayOptions{Silent: true})
				if err != nil {
					log.Printf("(playBatch) - error running batch: %v\n", err)
				}
			}
		})
	})
	printResult("playBatch(4)", batchResult)

	fetchResult := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(threads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := host.FetchDocument(docID)
				if err != nil {
					log.Printf("(fetch) - error fetching document: %v\n", err)
				}
			}
		})
	})
	printResult("fetchDocument", fetchResult)

	return host.Close()
}

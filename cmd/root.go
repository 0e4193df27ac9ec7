package cmd

import (
	"fmt"
	"os"

	"github.com/mbennett/easel/cmd/bench"
	"github.com/mbennett/easel/cmd/play"
	"github.com/mbennett/easel/cmd/sim"
	"github.com/mbennett/easel/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "easel",
		Short: "action synchronization toolkit for layer-based editors",
		Long: fmt.Sprintf(`easel (v%s)

A concurrency-control toolkit for plugins of layer-based creative
editors: a dependency-aware action queue, lock-safe command playback
and a host simulator for local development.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of easel",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("easel v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(sim.SimCmd)
	RootCmd.AddCommand(play.PlayCommands)
	RootCmd.AddCommand(bench.BenchCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package cmd implements the command-line interface for easel. It provides
// a hierarchical command structure with operations for running the host
// simulator and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - sim: Commands for starting and configuring the host simulator
//   - play: Commands for executing host operations (fetch, run, lock)
//   - bench: Load generators for the action queue and the bridge
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See easel -help for a list of all commands.
package cmd

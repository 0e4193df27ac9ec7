// Package sim implements a host simulator for local development and testing.
// It stands in for the proprietary creative editor on the other side of the
// development bridge: it holds layer-structured documents in memory, executes
// play requests against them and enforces the host's layer locking rules.
//
// Key Components:
//
//   - Simulator: The server. It registers a bridge handler on an injected
//     transport, deserializes incoming messages with an injected serializer
//     and dispatches them to per-document state.
//
//   - simDocument: One in-memory document plus the mutex that makes batched
//     plays atomic with respect to each other.
//
// Behavior:
//
//	The simulator mirrors the host rules that matter for the plugin's
//	concurrency layer:
//
//	  - setLocking toggles layer lock flags and always succeeds for layers
//	    that exist.
//	  - Any other command is rejected if a target layer, one of its
//	    ancestors or one of its descendants is locked.
//	  - A playBatch request runs its commands in order, each validated
//	    against the state its predecessors left behind. A rejected command
//	    fails the whole batch and rolls back lock changes made by earlier
//	    commands.
//
// Documents are either seeded from a JSON file (SeedFile in the simulator
// config) or a built-in demo document is created on startup.
//
// Example Usage:
//
//	s := sim.NewSimulator(
//		config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//	if err := s.Serve(); err != nil {
//		log.Fatal(err)
//	}
package sim

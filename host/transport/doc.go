// Package transport defines the pluggable byte-level links between the
// plugin side (client) and a host process (server, in practice the bundled
// simulator).
//
// A transport moves opaque, already-serialized messages; it knows nothing
// about their content. Three implementations ship with easel:
//
//   - unix: a Unix domain socket with a framed codec - the natural choice
//     for a plugin and host on the same machine.
//   - tcp: the same framed codec over TCP, useful when the simulator runs
//     remotely or in a container.
//   - http: one POST per message, trivially debuggable with curl.
//
// The framed transports multiplex any number of concurrent requests over a
// small set of connections: every frame carries a request ID, and a reader
// goroutine per connection routes responses back to their waiting callers.
package transport

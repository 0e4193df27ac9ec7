// Package client provides the plugin-side view of the host application. It
// implements the IHost interface over the development bridge, serializing
// play and document requests with a pluggable codec and sending them through
// a pluggable transport.
//
// Key Components:
//
//   - IHost: The interface the rest of the plugin programs against. It
//     exposes Play, PlayBatch and FetchDocument plus lifecycle management.
//
//   - hostClient: The bridge-backed implementation. It is a thin adapter
//     that serializes requests, sends them via the configured transport and
//     validates the response envelope (error flag and message type echo).
//
// Architecture:
//
//	The client follows the adapter pattern. Serialization and transport are
//	injected via the serializer.IHostSerializer and
//	transport.IHostClientTransport interfaces, so the same client works over
//	Unix sockets, TCP or HTTP with JSON, GOB or binary encoding.
//
// Example Usage:
//
//	host, err := client.NewHostClient(
//		common.LinkConfig{Endpoints: []string{"localhost:8080"}},
//		tcp.NewTCPClientTransport(),
//		serializer.NewBinarySerializer(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer host.Close()
//
//	resp, err := host.Play("doc-1", cmd, common.PlayOptions{})
//
// Thread Safety:
//
//	All IHost methods are safe for concurrent use. Concurrency control with
//	respect to shared host state is the job of the lib/action and lib/queue
//	packages layered above this one.
package client

// Package http implements an HTTP-based transport layer for the development
// bridge between the plugin runtime and the host simulator. It provides
// concrete implementations of the transport interfaces defined in the parent
// package, enabling bridge communication over HTTP.
//
// The package focuses on:
//   - Client-side HTTP transport for sending bridge requests to the simulator
//   - Server-side HTTP transport for receiving and handling bridge requests
//   - Round-robin load balancing across multiple simulator endpoints
//
// Key Components:
//
//   - httpClientTransport: Implements IHostClientTransport, managing
//     connections to simulator endpoints and implementing retry mechanisms.
//     It uses round-robin selection for load balancing across multiple
//     endpoints.
//
//   - httpServerTransport: Implements IHostServerTransport, setting up an
//     HTTP server that routes incoming POST requests on /bridge to the
//     registered handler.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter.
//
// This implementation offers several advantages:
//   - Simple integration with existing HTTP infrastructure
//   - Built-in load balancing across multiple simulator endpoints
//   - Straightforward error handling and retry mechanisms
//   - Logging middleware for request monitoring
package http

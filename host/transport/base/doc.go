// Package base implements the shared core of the framed socket transports
// (tcp, unix). It handles connection management, request multiplexing with
// per-frame request IDs, retry with jittered exponential backoff on the
// client side, and a bounded per-connection worker pool on the server side.
// The transport-specific packages only contribute a connector that knows how
// to dial or listen on their medium.
package base

// Package tcp implements a TCP socket-based transport for the development
// bridge between the plugin runtime and the host simulator. It provides
// concrete implementations of the base package's connector interfaces.
//
// This package builds on the base package's transport functionality,
// inheriting connection pooling, buffer reuse, and request multiplexing.
// See the base package documentation for detailed information on the
// underlying transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// TCP transport is the default choice when the plugin runtime and the host
// simulator run on different machines or when Unix sockets are unavailable.
package tcp

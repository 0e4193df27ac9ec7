package transport

import (
	"github.com/mbennett/easel/host/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes the raw request as a parameter and returns the raw response
type ServerHandleFunc func(req []byte) (resp []byte)

// IHostServerTransport is the interface for the host-side transport layer
type IHostServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and listens for incoming requests
	Listen(config common.SimulatorConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IHostClientTransport is the interface for the plugin-side transport
type IHostClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.LinkConfig) error
	// Send sends a request to the host and returns the response
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}

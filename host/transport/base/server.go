package base

import (
	"fmt"
	"io"
	"net"
	"runtime"
	"sync"

	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/host/transport"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific listener operations
type IServerConnector interface {
	// Listen creates a listener based on the provided configuration
	Listen(config common.SimulatorConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	bufPool   sync.Pool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the specified connector
func NewBaseServerTransport(connector IServerConnector) transport.IHostServerTransport {
	return &serverTransport{
		connector: connector,
		bufPool: sync.Pool{
			New: func() interface{} {
				// Default buffer size of 4KB, will grow if needed
				buf := make([]byte, 4096)
				return &buf
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IHostServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.SimulatorConfig) error {
	if t.handler == nil {
		return fmt.Errorf("handler not registered")
	}

	// Create the listener
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	defer listener.Close()

	Logger.Infof("Listening on %s using %s transport", config.Endpoint, t.connector.GetName())

	// Accept connections in a loop
	for {
		conn, err := listener.Accept()
		if err != nil {
			Logger.Errorf("Failed to accept connection: %v", err)
			continue
		}

		// Handle each connection in its own goroutine
		go t.handleConnection(conn)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection processes a single client connection,
// it reads requests in a loop and dispatches them to worker goroutines
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer conn.Close()

	Logger.Debugf("New connection from %s", conn.RemoteAddr())

	// Limit the number of concurrent workers per connection
	maxWorkers := runtime.NumCPU()
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	workerSem := make(chan struct{}, maxWorkers)

	// Protects concurrent writes to the connection
	var connMu sync.Mutex

	for {
		// Get a buffer from the pool
		bufPtr := t.bufPool.Get().(*[]byte)

		// Read the next request frame
		requestID, data, err := readFrame(conn, *bufPtr)
		if err != nil {
			t.bufPool.Put(bufPtr)
			if err != io.EOF {
				Logger.Debugf("Connection from %s closed: %v", conn.RemoteAddr(), err)
			}
			return
		}

		// Copy the request data since the buffer is reused
		reqData := make([]byte, len(data))
		copy(reqData, data)
		t.bufPool.Put(bufPtr)

		// Acquire a worker slot
		workerSem <- struct{}{}

		go func(requestID uint64, reqData []byte) {
			defer func() { <-workerSem }()

			// Process the request
			respData := t.handler(reqData)

			// Write the response
			connMu.Lock()
			err := writeFrame(conn, requestID, respData)
			connMu.Unlock()

			if err != nil {
				Logger.Errorf("Failed to write response for request %d: %v", requestID, err)
			}
		}(requestID, reqData)
	}
}

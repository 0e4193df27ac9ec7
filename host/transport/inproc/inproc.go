// Package inproc implements an in-process transport pair for the development
// bridge. Client and server share an address space and requests are plain
// function calls, which makes the pair useful for tests and for embedding
// the host simulator directly into the plugin process.
package inproc

import (
	"fmt"
	"sync"
	"time"

	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/host/transport"
)

// pair holds the state shared between the client and server halves
type pair struct {
	mu      sync.RWMutex
	handler transport.ServerHandleFunc
	ready   chan struct{}
	stop    chan struct{}
	stopped sync.Once
}

// NewInprocPair creates a connected client/server transport pair.
// The server half must be listening before the client half can connect.
func NewInprocPair() (transport.IHostClientTransport, transport.IHostServerTransport) {
	p := &pair{
		ready: make(chan struct{}),
		stop:  make(chan struct{}),
	}
	return &clientTransport{p: p}, &serverTransport{p: p}
}

// --------------------------------------------------------------------------
// Server Half
// --------------------------------------------------------------------------

type serverTransport struct {
	p *pair
}

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.p.mu.Lock()
	t.p.handler = handler
	t.p.mu.Unlock()
}

func (t *serverTransport) Listen(_ common.SimulatorConfig) error {
	t.p.mu.RLock()
	registered := t.p.handler != nil
	t.p.mu.RUnlock()

	if !registered {
		return fmt.Errorf("handler not registered")
	}

	// Signal readiness and block until the pair is closed
	close(t.p.ready)
	<-t.p.stop
	return nil
}

// --------------------------------------------------------------------------
// Client Half
// --------------------------------------------------------------------------

type clientTransport struct {
	p *pair
}

func (t *clientTransport) Connect(config common.LinkConfig) error {
	timeout := 5 * time.Second
	if config.TimeoutSecond > 0 {
		timeout = time.Duration(config.TimeoutSecond) * time.Second
	}

	select {
	case <-t.p.ready:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("in-process server not listening")
	}
}

func (t *clientTransport) Send(req []byte) ([]byte, error) {
	select {
	case <-t.p.stop:
		return nil, fmt.Errorf("in-process transport closed")
	default:
	}

	t.p.mu.RLock()
	handler := t.p.handler
	t.p.mu.RUnlock()

	if handler == nil {
		return nil, fmt.Errorf("in-process server not listening")
	}
	return handler(req), nil
}

func (t *clientTransport) Close() error {
	t.p.stopped.Do(func() { close(t.p.stop) })
	return nil
}

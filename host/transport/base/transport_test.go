package base

import (
	"bytes"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/mbennett/easel/host/common"
)

// -----------------------------------------------------------
// Frame Codec Tests
// -----------------------------------------------------------

// TestFrameRoundTrip verifies that frames written with writeFrame can be
// read back with readFrame, including the zero-length payload case and
// payloads larger than the read buffer.
func TestFrameRoundTrip(t *testing.T) {
	cases := map[string]struct {
		requestID uint64
		payload   []byte
	}{
		"small":       {requestID: 1, payload: []byte("hello")},
		"empty":       {requestID: 42, payload: []byte{}},
		"large":       {requestID: 7, payload: bytes.Repeat([]byte{0xAB}, 16*1024)},
		"max request": {requestID: ^uint64(0), payload: []byte("x")},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			// net.Pipe is unbuffered, so the writer runs concurrently
			writeErr := make(chan error, 1)
			go func() {
				writeErr <- writeFrame(client, tc.requestID, tc.payload)
			}()

			// A deliberately small buffer forces readFrame to grow it
			buf := make([]byte, 16)
			requestID, data, err := readFrame(server, buf)
			if err != nil {
				t.Fatalf("readFrame: %v", err)
			}
			if err := <-writeErr; err != nil {
				t.Fatalf("writeFrame: %v", err)
			}

			if requestID != tc.requestID {
				t.Errorf("request ID mismatch: got %d, want %d", requestID, tc.requestID)
			}
			if !bytes.Equal(data, tc.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(data), len(tc.payload))
			}
		})
	}
}

// TestFrameReusesBuffer verifies that a sufficiently large caller buffer is
// reused instead of reallocated, which the server read loop relies on for
// its buffer pool.
func TestFrameReusesBuffer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte("pooled")
	go writeFrame(client, 3, payload)

	buf := make([]byte, 4096)
	_, data, err := readFrame(server, buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("payload mismatch: got %q", data)
	}
	if &data[0] != &buf[0] {
		t.Error("expected readFrame to reuse the provided buffer")
	}
}

// TestFrameTruncated verifies that a connection closing mid-frame yields an
// error from readFrame, for both a partial header and a partial payload.
func TestFrameTruncated(t *testing.T) {
	cases := map[string][]byte{
		"partial header":  {0, 0, 0, 1},
		"partial payload": {0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 8, 'h', 'i'},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			client, server := net.Pipe()
			defer server.Close()

			go func() {
				client.Write(raw)
				client.Close()
			}()

			if _, _, err := readFrame(server, nil); err == nil {
				t.Error("expected error for truncated frame")
			}
		})
	}
}

// -----------------------------------------------------------
// Client/Server Integration Tests
// -----------------------------------------------------------

// loopbackServerConnector hands out a pre-created listener so tests can
// bind to an ephemeral port before the server starts accepting.
type loopbackServerConnector struct {
	listener net.Listener
}

func (c *loopbackServerConnector) Listen(common.SimulatorConfig) (net.Listener, error) {
	return c.listener, nil
}

func (c *loopbackServerConnector) GetName() string {
	return "loopback"
}

// loopbackClientConnector dials TCP endpoints directly.
type loopbackClientConnector struct{}

func (loopbackClientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func (loopbackClientConnector) GetName() string {
	return "loopback"
}

// startLoopbackServer starts a base server transport with the given handler
// on an ephemeral TCP port and returns the endpoint to dial.
func startLoopbackServer(t *testing.T, handler func(req []byte) []byte) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := NewBaseServerTransport(&loopbackServerConnector{listener: listener})
	server.RegisterHandler(handler)

	endpoint := listener.Addr().String()
	go server.Listen(common.SimulatorConfig{Endpoint: endpoint})

	return endpoint
}

// TestClientServerExchange sends concurrent requests through the framed
// transport and verifies every response is routed back to the request that
// produced it.
func TestClientServerExchange(t *testing.T) {
	endpoint := startLoopbackServer(t, func(req []byte) []byte {
		return append([]byte("ack:"), req...)
	})

	client := NewBaseClientTransport(loopbackClientConnector{})
	if err := client.Connect(common.LinkConfig{
		Endpoints:     []string{endpoint},
		TimeoutSecond: 5,
		RetryCount:    1,
	}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	const requests = 32

	var wg sync.WaitGroup
	errs := make(chan error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := []byte(fmt.Sprintf("request-%d", i))
			resp, err := client.Send(req)
			if err != nil {
				errs <- fmt.Errorf("request %d: %v", i, err)
				return
			}

			want := fmt.Sprintf("ack:request-%d", i)
			if string(resp) != want {
				errs <- fmt.Errorf("request %d: got %q, want %q", i, resp, want)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// TestClientSendAfterClose verifies that Close tears down all connections
// and that subsequent sends fail instead of hanging.
func TestClientSendAfterClose(t *testing.T) {
	endpoint := startLoopbackServer(t, func(req []byte) []byte {
		return req
	})

	client := NewBaseClientTransport(loopbackClientConnector{})
	if err := client.Connect(common.LinkConfig{
		Endpoints:     []string{endpoint},
		TimeoutSecond: 5,
		RetryCount:    1,
	}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := client.Send([]byte("ping")); err != nil {
		t.Fatalf("Send before Close: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := client.Send([]byte("ping")); err == nil {
		t.Error("expected error sending after Close")
	}
}

// TestClientMultipleConnections verifies that requests are distributed
// across several connections to the same endpoint without mixing up
// responses.
func TestClientMultipleConnections(t *testing.T) {
	endpoint := startLoopbackServer(t, func(req []byte) []byte {
		return append([]byte("ack:"), req...)
	})

	client := NewBaseClientTransport(loopbackClientConnector{})
	if err := client.Connect(common.LinkConfig{
		Endpoints:              []string{endpoint},
		TimeoutSecond:          5,
		RetryCount:             1,
		ConnectionsPerEndpoint: 3,
	}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	for i := 0; i < 12; i++ {
		req := []byte(fmt.Sprintf("conn-%d", i))
		resp, err := client.Send(req)
		if err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
		want := fmt.Sprintf("ack:conn-%d", i)
		if string(resp) != want {
			t.Errorf("request %d: got %q, want %q", i, resp, want)
		}
	}
}

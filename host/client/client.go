package client

import (
	"fmt"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/host/serializer"
	"github.com/mbennett/easel/host/transport"
	"github.com/mbennett/easel/lib/document"
)

var (
	Logger = logger.GetLogger("host")
)

// NewHostClient creates a new bridge-backed host client.
// The function takes a link config, a transport and a serializer as
// parameters. It connects the transport and returns an IHost.
func NewHostClient(
	config common.LinkConfig,
	transport transport.IHostClientTransport,
	serializer serializer.IHostSerializer,
) (IHost, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	return &hostClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// hostClient is the bridge-backed implementation of IHost
type hostClient struct {
	config     common.LinkConfig
	transport  transport.IHostClientTransport
	serializer serializer.IHostSerializer
}

// invokeBridgeRequest is a helper function used for all host calls.
// It serializes the request, sends it through the transport and
// deserializes the response. It also checks if the response is an error
// response and if the type of the response matches the request type.
func invokeBridgeRequest(req *common.Message, transport transport.IHostClientTransport, serializer serializer.IHostSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	// Send the request
	respBytes, err := transport.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, fmt.Errorf("host bridge - error: %s", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("host bridge - error: %s", resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("host bridge - unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	// Return the response
	return resp, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (c *hostClient) Play(doc document.DocumentID, cmd common.Command, opts common.PlayOptions) (common.Response, error) {
	req := common.NewPlayRequest(doc, cmd, opts)
	resp, err := invokeBridgeRequest(req, c.transport, c.serializer)
	if err != nil {
		return common.Response{}, err
	}

	// A play response carries exactly one command response
	if len(resp.Responses) != 1 {
		return common.Response{}, fmt.Errorf("host bridge - expected 1 response, got %d", len(resp.Responses))
	}

	r := resp.Responses[0]
	if !r.Ok && r.Err != "" {
		return r, fmt.Errorf("host rejected %q: %s", cmd.Name, r.Err)
	}
	return r, nil
}

func (c *hostClient) PlayBatch(doc document.DocumentID, cmds []common.Command, opts common.PlayOptions) ([]common.Response, error) {
	if len(cmds) == 0 {
		return nil, nil
	}

	req := common.NewPlayBatchRequest(doc, cmds, opts)
	resp, err := invokeBridgeRequest(req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}

	return resp.Responses, nil
}

func (c *hostClient) FetchDocument(doc document.DocumentID) ([]document.LayerInfo, error) {
	req := common.NewFetchDocumentRequest(doc)
	resp, err := invokeBridgeRequest(req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	return resp.Layers, nil
}

func (c *hostClient) Close() error {
	return c.transport.Close()
}

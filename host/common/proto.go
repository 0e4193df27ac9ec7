package common

import (
	"encoding/json"
	"fmt"

	"github.com/mbennett/easel/lib/document"
)

// --------------------------------------------------------------------------
// Command / Response Structures
// --------------------------------------------------------------------------

// CommandSetLocking is the reserved command name for toggling layer locks.
// The lock-safe play layer brackets protected operations with a pair of
// these and validates their echoes in the response array.
const CommandSetLocking = "setLocking"

// Command is a single host operation.
type Command struct {
	// Name of the host operation (e.g. "move", "fill", "setLocking").
	Name string `json:"name"`

	// Layers the operation targets. May be empty for document- or
	// application-level operations.
	Layers []document.LayerID `json:"layers,omitempty"`

	// Locked is the desired lock state. Only meaningful for setLocking.
	Locked bool `json:"locked,omitempty"`

	// Params carries operation-specific arguments, opaque to this layer.
	Params json.RawMessage `json:"params,omitempty"`
}

// NewSetLockingCommand creates the lock-toggle command for the given layers.
func NewSetLockingCommand(layers []document.LayerID, locked bool) Command {
	return Command{
		Name:   CommandSetLocking,
		Layers: layers,
		Locked: locked,
	}
}

// Response is the host's reply to a single command.
type Response struct {
	// Command echoes the name of the command this responds to.
	Command string `json:"command"`

	// Ok indicates whether the host accepted the command.
	Ok bool `json:"ok,omitempty"`

	// Body carries the operation-specific result, opaque to this layer.
	Body json.RawMessage `json:"body,omitempty"`

	// Err is empty on success, otherwise the host's error message.
	Err string `json:"err,omitempty"`
}

// IsSetLocking reports whether the response echoes a lock-toggle command.
func (r Response) IsSetLocking() bool {
	return r.Command == CommandSetLocking
}

// PlayOptions are the per-call options of a play invocation.
type PlayOptions struct {
	// Modal requests exclusive host-UI focus while the commands run.
	Modal bool `json:"modal,omitempty"`

	// Silent suppresses host-side UI feedback (progress bars, dialogs).
	Silent bool `json:"silent,omitempty"`

	// TimeoutMS bounds the host-side execution time. 0 means no bound.
	TimeoutMS uint64 `json:"timeout_ms,omitempty"`
}

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Document document.DocumentID `json:"document,omitempty"` // Used for: Play, PlayBatch, FetchDocument
	Commands []Command           `json:"commands,omitempty"` // Used for: Play (one entry), PlayBatch requests
	Options  PlayOptions         `json:"options,omitempty"`  // Used for: Play, PlayBatch requests

	// Response only fields
	Responses []Response           `json:"responses,omitempty"` // Used for: Play, PlayBatch responses
	Layers    []document.LayerInfo `json:"layers,omitempty"`    // Used for: FetchDocument responses
	Err       string               `json:"err,omitempty"`       // Empty if no error, otherwise contains the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPlayRequest creates a new single-command Play request
func NewPlayRequest(doc document.DocumentID, cmd Command, opts PlayOptions) *Message {
	return &Message{
		MsgType:  MsgTPlay,
		Document: doc,
		Commands: []Command{cmd},
		Options:  opts,
	}
}

// NewPlayResponse creates a new Play response
func NewPlayResponse(resp Response, err error) *Message {
	msg := &Message{
		MsgType:   MsgTPlay,
		Responses: []Response{resp},
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPlayBatchRequest creates a new batched Play request
func NewPlayBatchRequest(doc document.DocumentID, cmds []Command, opts PlayOptions) *Message {
	return &Message{
		MsgType:  MsgTPlayBatch,
		Document: doc,
		Commands: cmds,
		Options:  opts,
	}
}

// NewPlayBatchResponse creates a new batched Play response
func NewPlayBatchResponse(resps []Response, err error) *Message {
	msg := &Message{
		MsgType:   MsgTPlayBatch,
		Responses: resps,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewFetchDocumentRequest creates a new FetchDocument request
func NewFetchDocumentRequest(doc document.DocumentID) *Message {
	return &Message{
		MsgType:  MsgTFetchDocument,
		Document: doc,
	}
}

// NewFetchDocumentResponse creates a new FetchDocument response
func NewFetchDocumentResponse(doc document.DocumentID, layers []document.LayerInfo, err error) *Message {
	msg := &Message{
		MsgType:  MsgTFetchDocument,
		Document: doc,
		Layers:   layers,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in the host-link protocol.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTPlay:
		return "play"
	case MsgTPlayBatch:
		return "playBatch"
	case MsgTFetchDocument:
		return "fetchDocument"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "play":
		*t = MsgTPlay
	case "playBatch":
		*t = MsgTPlayBatch
	case "fetchDocument":
		*t = MsgTFetchDocument
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Host operations

	MsgTPlay          // Execute a single command
	MsgTPlayBatch     // Execute an ordered list of commands atomically
	MsgTFetchDocument // Fetch a document's layer hierarchy snapshot
)

package serializer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/lib/document"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IHostSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Single-command play request
		{
			MsgType:  common.MsgTPlay,
			Document: "doc-1",
			Commands: []common.Command{
				{
					Name:   "move",
					Layers: []document.LayerID{3, 4},
					Params: json.RawMessage(`{"dx":10,"dy":-4}`),
				},
			},
			Options: common.PlayOptions{Silent: true, TimeoutMS: 5000},
		},

		// Batched play request with a lock bracket
		{
			MsgType:  common.MsgTPlayBatch,
			Document: "doc-1",
			Commands: []common.Command{
				common.NewSetLockingCommand([]document.LayerID{1, 3}, false),
				{Name: "fill", Layers: []document.LayerID{3}, Params: json.RawMessage(`{"color":"#fff"}`)},
				common.NewSetLockingCommand([]document.LayerID{1, 3}, true),
			},
			Options: common.PlayOptions{Modal: true},
		},

		// Play response
		{
			MsgType: common.MsgTPlayBatch,
			Responses: []common.Response{
				{Command: common.CommandSetLocking, Ok: true},
				{Command: "fill", Ok: true, Body: json.RawMessage(`{"pixels":1024}`)},
				{Command: common.CommandSetLocking, Ok: true},
			},
		},

		// FetchDocument response
		{
			MsgType:  common.MsgTFetchDocument,
			Document: "doc-2",
			Layers: []document.LayerInfo{
				{ID: 1, Name: "group", Parent: 0, Locked: true},
				{ID: 2, Name: "background", Parent: 1, Locked: false},
			},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Failed command response
		{
			MsgType: common.MsgTPlay,
			Responses: []common.Response{
				{Command: "move", Ok: false, Err: "target layer is locked"},
			},
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for i, msg := range messages {
				data, err := s.Serialize(msg)
				if err != nil {
					t.Fatalf("message %d: Serialize: %v", i, err)
				}

				var got common.Message
				if err := s.Deserialize(data, &got); err != nil {
					t.Fatalf("message %d: Deserialize: %v", i, err)
				}

				if !reflect.DeepEqual(got, msg) {
					t.Errorf("message %d round trip mismatch:\n got %+v\nwant %+v", i, got, msg)
				}
			}
		})
	}
}

// TestBinaryDeserializeTruncated verifies that the binary codec rejects
// truncated input instead of panicking.
func TestBinaryDeserializeTruncated(t *testing.T) {
	s := NewBinarySerializer()

	full, err := s.Serialize(testMessages()[1])
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	for cut := 0; cut < len(full); cut++ {
		var msg common.Message
		if err := s.Deserialize(full[:cut], &msg); err == nil && cut < 2 {
			t.Errorf("expected header error for %d-byte input", cut)
		}
		// Longer prefixes may or may not fail depending on where the cut
		// lands; the requirement is merely "no panic".
	}
}

// TestBinaryDeserializeOversizedCount verifies that counts larger than the
// remaining payload could possibly encode are rejected before they drive a
// slice allocation. A corrupted count field must yield an error, never an
// attempt to allocate gigabytes.
func TestBinaryDeserializeOversizedCount(t *testing.T) {
	s := NewBinarySerializer()

	hugeCount := []byte{0xFF, 0xFF, 0xFF, 0x00}

	cases := map[string][]byte{
		"command count": append(
			[]byte{byte(common.MsgTPlay), hasCommands},
			hugeCount...),
		// one command with an empty name carrying a corrupted layer count,
		// padded so the outer command count itself is plausible
		"command layer count": append(
			append(
				[]byte{byte(common.MsgTPlay), hasCommands, 0, 0, 0, 1, 0, 0, 0, 0},
				hugeCount...),
			0, 0, 0, 0, 0),
		"response count": append(
			[]byte{byte(common.MsgTPlayBatch), hasResponses},
			hugeCount...),
		"layer count": append(
			[]byte{byte(common.MsgTFetchDocument), hasLayers},
			hugeCount...),
		"string length": append(
			[]byte{byte(common.MsgTPlay), hasDocument},
			hugeCount...),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			var msg common.Message
			if err := s.Deserialize(data, &msg); err == nil {
				t.Errorf("expected error for oversized %s", name)
			}
		})
	}
}

// TestBinaryDeserializeIntoReusedMessage verifies that the binary codec
// clears stale fields of a reused target message. JSON and GOB merge into
// non-zero targets; callers there pass a fresh message, which the client
// layer guarantees.
func TestBinaryDeserializeIntoReusedMessage(t *testing.T) {
	s := NewBinarySerializer()

	messages := testMessages()
	var msg common.Message

	// Deserialize a field-rich message, then a minimal one.
	data, err := s.Serialize(messages[1])
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := s.Deserialize(data, &msg); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	data, err = s.Serialize(messages[0])
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := s.Deserialize(data, &msg); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if !reflect.DeepEqual(msg, messages[0]) {
		t.Errorf("reused message retained stale fields:\n got %+v\nwant %+v", msg, messages[0])
	}
}

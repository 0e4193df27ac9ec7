package play

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mbennett/easel/host/client"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/host/serializer"
	"github.com/mbennett/easel/host/sim"
	"github.com/mbennett/easel/host/transport/inproc"
	"github.com/mbennett/easel/lib/document"
)

// scriptedHost is a test double for client.IHost. It records calls and
// answers with an echo response per command unless a script overrides it.
type scriptedHost struct {
	playCalls  []common.Command
	batchCalls [][]common.Command
	batchErr   error
	batchResps []common.Response // overrides the echo responses if set
}

func (h *scriptedHost) Play(_ document.DocumentID, cmd common.Command, _ common.PlayOptions) (common.Response, error) {
	h.playCalls = append(h.playCalls, cmd)
	return common.Response{Command: cmd.Name, Ok: true}, nil
}

func (h *scriptedHost) PlayBatch(_ document.DocumentID, cmds []common.Command, _ common.PlayOptions) ([]common.Response, error) {
	h.batchCalls = append(h.batchCalls, cmds)
	if h.batchErr != nil {
		return nil, h.batchErr
	}
	if h.batchResps != nil {
		return h.batchResps, nil
	}
	resps := make([]common.Response, len(cmds))
	for i, cmd := range cmds {
		resps[i] = common.Response{Command: cmd.Name, Ok: true}
	}
	return resps, nil
}

func (h *scriptedHost) FetchDocument(document.DocumentID) ([]document.LayerInfo, error) {
	return nil, nil
}

func (h *scriptedHost) Close() error { return nil }

// testDocument builds the fixture used by most tests:
//
//	1 group (locked)
//	├── 2 background
//	└── 3 texture (locked)
//	4 shapes
//	5 notes (locked)
func testDocument(t *testing.T) document.IDocument {
	t.Helper()
	doc, err := document.FromSnapshot("doc-1", []document.LayerInfo{
		{ID: 1, Name: "group", Locked: true},
		{ID: 2, Name: "background", Parent: 1},
		{ID: 3, Name: "texture", Parent: 1, Locked: true},
		{ID: 4, Name: "shapes"},
		{ID: 5, Name: "notes", Locked: true},
	})
	if err != nil {
		t.Fatalf("failed to build document: %v", err)
	}
	return doc
}

func TestFastPathSingleCommand(t *testing.T) {
	host := &scriptedHost{}
	player := NewPlayer(host)
	doc := testDocument(t)

	// Layer 4 has no locked ancestors or descendants
	resp, err := player.LockSafePlay(doc, common.Command{Name: "fill", Layers: []document.LayerID{4}}, common.PlayOptions{})
	if err != nil {
		t.Fatalf("LockSafePlay failed: %v", err)
	}
	if resp.Command != "fill" || !resp.Ok {
		t.Errorf("unexpected response: %+v", resp)
	}

	if len(host.playCalls) != 1 {
		t.Errorf("expected 1 direct play, got %d", len(host.playCalls))
	}
	if len(host.batchCalls) != 0 {
		t.Errorf("fast path must not batch, got %d batch calls", len(host.batchCalls))
	}
}

func TestFastPathMultipleCommands(t *testing.T) {
	host := &scriptedHost{}
	player := NewPlayer(host)
	doc := testDocument(t)

	cmds := []common.Command{
		{Name: "fill", Layers: []document.LayerID{4}},
		{Name: "move", Layers: []document.LayerID{4}},
	}
	resps, err := player.LockSafePlayAll(doc, cmds, common.PlayOptions{})
	if err != nil {
		t.Fatalf("LockSafePlayAll failed: %v", err)
	}
	if len(resps) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(resps))
	}

	if len(host.batchCalls) != 1 || len(host.batchCalls[0]) != 2 {
		t.Fatalf("expected one unbracketed batch of 2 commands, got %+v", host.batchCalls)
	}
	for _, cmd := range host.batchCalls[0] {
		if cmd.Name == common.CommandSetLocking {
			t.Errorf("fast path must not contain brackets")
		}
	}
}

func TestBracketedPlay(t *testing.T) {
	host := &scriptedHost{}
	player := NewPlayer(host)
	doc := testDocument(t)

	// Layer 2 sits under the locked group 1; layer 5 is locked itself.
	// Expected unlock set: {1, 5} (layer 3 is not on either path).
	cmds := []common.Command{
		{Name: "fill", Layers: []document.LayerID{2}},
		{Name: "move", Layers: []document.LayerID{5}},
	}
	resps, err := player.LockSafePlayAll(doc, cmds, common.PlayOptions{})
	if err != nil {
		t.Fatalf("LockSafePlayAll failed: %v", err)
	}

	// Bracket echoes must be stripped
	if len(resps) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(resps))
	}
	if resps[0].Command != "fill" || resps[1].Command != "move" {
		t.Errorf("unexpected responses: %+v", resps)
	}

	// The host must have seen exactly one batch: unlock, commands, relock
	if len(host.batchCalls) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(host.batchCalls))
	}
	batch := host.batchCalls[0]
	if len(batch) != 4 {
		t.Fatalf("expected batch of 4, got %d", len(batch))
	}

	unlock, relock := batch[0], batch[3]
	if unlock.Name != common.CommandSetLocking || unlock.Locked {
		t.Errorf("first command must unlock, got %+v", unlock)
	}
	if relock.Name != common.CommandSetLocking || !relock.Locked {
		t.Errorf("last command must relock, got %+v", relock)
	}

	want := []document.LayerID{1, 5}
	for _, bracket := range []common.Command{unlock, relock} {
		if len(bracket.Layers) != len(want) {
			t.Fatalf("expected unlock set %v, got %v", want, bracket.Layers)
		}
		for i, id := range want {
			if bracket.Layers[i] != id {
				t.Errorf("expected unlock set %v, got %v", want, bracket.Layers)
			}
		}
	}
}

func TestUnlockSetIncludesDescendants(t *testing.T) {
	host := &scriptedHost{}
	player := NewPlayer(host)
	doc := testDocument(t)

	// Editing the group must unlock the group itself and its locked child
	_, err := player.LockSafePlay(doc, common.Command{Name: "move", Layers: []document.LayerID{1}}, common.PlayOptions{})
	if err != nil {
		t.Fatalf("LockSafePlay failed: %v", err)
	}

	if len(host.batchCalls) != 1 {
		t.Fatalf("expected a bracketed batch")
	}
	unlock := host.batchCalls[0][0]
	want := []document.LayerID{1, 3}
	if len(unlock.Layers) != len(want) || unlock.Layers[0] != want[0] || unlock.Layers[1] != want[1] {
		t.Errorf("expected unlock set %v, got %v", want, unlock.Layers)
	}
}

func TestEmptyCommandList(t *testing.T) {
	host := &scriptedHost{}
	player := NewPlayer(host)

	resps, err := player.LockSafePlayAll(testDocument(t), nil, common.PlayOptions{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resps != nil {
		t.Errorf("expected nil responses, got %v", resps)
	}
	if len(host.playCalls)+len(host.batchCalls) != 0 {
		t.Errorf("empty command list must not reach the host")
	}
}

func TestHostErrorPropagates(t *testing.T) {
	host := &scriptedHost{batchErr: fmt.Errorf("bridge down")}
	player := NewPlayer(host)
	doc := testDocument(t)

	_, err := player.LockSafePlay(doc, common.Command{Name: "fill", Layers: []document.LayerID{2}}, common.PlayOptions{})
	if err == nil || err.Error() != "bridge down" {
		t.Errorf("expected host error to propagate, got %v", err)
	}
}

func TestIntegrityErrorOnShortResponse(t *testing.T) {
	host := &scriptedHost{
		// Only the unlock echo and the command echo, relock echo missing
		batchResps: []common.Response{
			{Command: common.CommandSetLocking, Ok: true},
			{Command: "fill", Ok: true},
		},
	}
	player := NewPlayer(host)
	doc := testDocument(t)

	_, err := player.LockSafePlay(doc, common.Command{Name: "fill", Layers: []document.LayerID{2}}, common.PlayOptions{})

	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
}

func TestIntegrityErrorOnWrongBracketEcho(t *testing.T) {
	host := &scriptedHost{
		batchResps: []common.Response{
			{Command: "fill", Ok: true}, // should echo the unlock bracket
			{Command: "fill", Ok: true},
			{Command: common.CommandSetLocking, Ok: true},
		},
	}
	player := NewPlayer(host)
	doc := testDocument(t)

	_, err := player.LockSafePlay(doc, common.Command{Name: "fill", Layers: []document.LayerID{2}}, common.PlayOptions{})

	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
}

// TestLockSafePlayAgainstSimulator runs the full stack: player, host client,
// in-process bridge and simulator.
func TestLockSafePlayAgainstSimulator(t *testing.T) {
	clientTr, serverTr := inproc.NewInprocPair()

	s := sim.NewSimulator(
		common.SimulatorConfig{LogLevel: "error"},
		serverTr,
		serializer.NewBinarySerializer(),
	)
	go func() {
		if err := s.Serve(); err != nil {
			t.Errorf("simulator stopped: %v", err)
		}
	}()

	host, err := client.NewHostClient(
		common.LinkConfig{TimeoutSecond: 5, Endpoints: []string{"inproc"}},
		clientTr,
		serializer.NewBinarySerializer(),
	)
	if err != nil {
		t.Fatalf("failed to create host client: %v", err)
	}
	defer host.Close()

	// Mirror the simulator's document locally
	layers, err := host.FetchDocument(sim.DemoDocumentID)
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	doc, err := document.FromSnapshot(sim.DemoDocumentID, layers)
	if err != nil {
		t.Fatalf("failed to rebuild document: %v", err)
	}

	// Layer 1 is locked in the demo document; a direct play would be
	// rejected, the lock-safe play must succeed.
	player := NewPlayer(host)
	resp, err := player.LockSafePlay(doc, common.Command{Name: "fill", Layers: []document.LayerID{1}}, common.PlayOptions{})
	if err != nil {
		t.Fatalf("LockSafePlay failed: %v", err)
	}
	if !resp.Ok {
		t.Errorf("unexpected response: %+v", resp)
	}

	// The lock must be restored afterwards
	layers, err = host.FetchDocument(sim.DemoDocumentID)
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	for _, l := range layers {
		if l.ID == 1 && !l.Locked {
			t.Errorf("expected layer 1 to be relocked after lock-safe play")
		}
	}
}

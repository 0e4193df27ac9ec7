package play

import (
	"fmt"
	"sort"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/mbennett/easel/host/client"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/lib/document"
)

var (
	Logger = logger.GetLogger("play")

	fastPathPlays  = metrics.GetOrCreateCounter(`easel_play_locksafe_total{path="fast"}`)
	bracketedPlays = metrics.GetOrCreateCounter(`easel_play_locksafe_total{path="bracketed"}`)
	integrityFails = metrics.GetOrCreateCounter(`easel_play_integrity_failures_total`)
)

// IntegrityError reports a bracketed batch whose response does not have the
// expected shape. When this is returned the relock bracket may or may not
// have run, so the document's lock state must be re-fetched before further
// lock-safe plays.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("lock-safe play integrity violation: %s", e.Reason)
}

// Player executes commands lock-safely against a host.
type Player struct {
	host client.IHost
}

// NewPlayer creates a new Player backed by the given host.
func NewPlayer(host client.IHost) *Player {
	return &Player{host: host}
}

// --------------------------------------------------------------------------
// Lock-Safe Execution
// --------------------------------------------------------------------------

// LockSafePlay executes a single command, temporarily unlocking every layer
// whose lock would make the host reject it. See LockSafePlayAll.
func (p *Player) LockSafePlay(doc document.IDocument, cmd common.Command, opts common.PlayOptions) (common.Response, error) {
	resps, err := p.LockSafePlayAll(doc, []common.Command{cmd}, opts)
	if err != nil {
		return common.Response{}, err
	}
	return resps[0], nil
}

// LockSafePlayAll executes an ordered list of commands, temporarily
// unlocking every layer whose lock would make the host reject one of them.
//
// The unlock set is the union, over all target layers, of their locked
// ancestors and locked descendants (including the layers themselves). If the
// set is empty the commands are sent as-is. Otherwise the commands travel in
// a single atomic batch bracketed by setLocking(false) and setLocking(true),
// so no other host operation can observe the unlocked state.
//
// On success the returned responses correspond one-to-one to cmds; the
// bracket echoes are validated and stripped.
func (p *Player) LockSafePlayAll(doc document.IDocument, cmds []common.Command, opts common.PlayOptions) ([]common.Response, error) {
	if len(cmds) == 0 {
		return nil, nil
	}

	unlock := unlockSet(doc, cmds)

	// Fast path: nothing is locked, no bracketing needed
	if len(unlock) == 0 {
		fastPathPlays.Inc()
		if len(cmds) == 1 {
			resp, err := p.host.Play(doc.ID(), cmds[0], opts)
			if err != nil {
				return nil, err
			}
			return []common.Response{resp}, nil
		}
		return p.host.PlayBatch(doc.ID(), cmds, opts)
	}

	bracketedPlays.Inc()
	Logger.Debugf("Document %q: unlocking %d layer(s) for %d command(s)", doc.ID(), len(unlock), len(cmds))

	// Bracket the commands with unlock and relock
	batch := make([]common.Command, 0, len(cmds)+2)
	batch = append(batch, common.NewSetLockingCommand(unlock, false))
	batch = append(batch, cmds...)
	batch = append(batch, common.NewSetLockingCommand(unlock, true))

	resps, err := p.host.PlayBatch(doc.ID(), batch, opts)
	if err != nil {
		return nil, err
	}

	// Validate the response envelope before trusting it
	if err := validateBracketedResponse(resps, len(cmds)); err != nil {
		integrityFails.Inc()
		Logger.Errorf("Document %q: %v", doc.ID(), err)
		return nil, err
	}

	// Strip the bracket echoes
	return resps[1 : len(resps)-1], nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// unlockSet computes the sorted set of layers that must be unlocked for the
// given commands: for every target layer, its locked ancestors and locked
// descendants, the layer itself included.
func unlockSet(doc document.IDocument, cmds []common.Command) []document.LayerID {
	seen := make(map[document.LayerID]struct{})
	for _, cmd := range cmds {
		for _, id := range cmd.Layers {
			for _, locked := range doc.LockedAncestors(id) {
				seen[locked] = struct{}{}
			}
			for _, locked := range doc.LockedDescendants(id) {
				seen[locked] = struct{}{}
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}

	out := make([]document.LayerID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// validateBracketedResponse checks that a bracketed batch response contains
// exactly one echo per command plus the two bracket echoes, and that the
// first and last echoes belong to the brackets.
func validateBracketedResponse(resps []common.Response, cmdCount int) error {
	if len(resps) != cmdCount+2 {
		return &IntegrityError{Reason: fmt.Sprintf("expected %d responses, got %d", cmdCount+2, len(resps))}
	}
	if !resps[0].IsSetLocking() {
		return &IntegrityError{Reason: fmt.Sprintf("first response echoes %q, expected the unlock bracket", resps[0].Command)}
	}
	if !resps[len(resps)-1].IsSetLocking() {
		return &IntegrityError{Reason: fmt.Sprintf("last response echoes %q, expected the relock bracket", resps[len(resps)-1].Command)}
	}
	return nil
}

package action

import (
	"context"

	"github.com/mbennett/easel/lib/locks"
	"github.com/mbennett/easel/lib/queue"
)

// Command is the callable unit of work of an action. Arguments are captured
// at call time and handed to the command unchanged when the queue admits it.
type Command func(ctx context.Context, args ...any) (any, error)

// Descriptor associates a command with its declared lock dependencies.
type Descriptor struct {
	// Command is the function executed when the queued action is admitted.
	Command Command

	// Reads and Writes declare the action's lock intent. A nil slice means
	// "all locks" - the safe default for actions that predate explicit
	// declarations. An empty non-nil slice means "no locks".
	Reads  []locks.Lock
	Writes []locks.Lock

	// Modal marks actions that require exclusive host-UI focus (a host
	// dialog is open while they run).
	Modal bool

	// Transfers names arguments handed off to the host by reference, kept
	// for parity with the host bridge's calling convention.
	Transfers []string
}

// Module maps action names to their descriptors.
type Module map[string]Descriptor

// SyncAction is a synchronized action: calling it enqueues the underlying
// command and returns immediately. The command's outcome is observable only
// through the returned future.
type SyncAction func(ctx context.Context, args ...any) *queue.Future

// SyncModule is the queue-mediated counterpart of a Module, with identical
// keys.
type SyncModule map[string]SyncAction

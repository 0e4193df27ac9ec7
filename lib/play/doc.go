// Package play implements lock-safe command execution against the host.
// Host commands fail when a target layer is lock-protected, which in the
// hosting editor means the layer itself, one of its ancestors or one of its
// descendants carries a lock flag. This package lifts that burden off
// callers: it computes the exact set of layers whose locks stand in the way,
// unlocks them, runs the commands and restores the locks, all in one atomic
// host round trip.
//
// Key Components:
//
//   - Player: Executes commands lock-safely against an injected IHost.
//
//   - LockSafePlay / LockSafePlayAll: Single-command and batched variants.
//     Both bracket the caller's commands with a setLocking(false) prefix and
//     a setLocking(true) suffix when the unlock set is non-empty, and skip
//     the brackets entirely when it is empty.
//
//   - IntegrityError: Returned when the host's response to a bracketed batch
//     does not have the expected shape. The lock brackets and the caller's
//     commands travel in one batch, so a malformed response means the
//     document's lock state can no longer be trusted and the error is
//     surfaced immediately instead of being papered over.
//
// Invariants:
//
//   - The unlock set is computed from a layer snapshot of the document, so
//     callers should hold a write claim on the document (via lib/action)
//     while a lock-safe play is in flight.
//   - The response returned to the caller never contains the bracket echoes;
//     callers see exactly one response per command they passed in.
//
// Example Usage:
//
//	player := play.NewPlayer(host)
//	resp, err := player.LockSafePlay(doc, cmd, common.PlayOptions{})
package play

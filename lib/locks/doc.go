// Package locks declares the named resource domains ("locks") that actions
// use to describe their read/write intent against host-resident state.
//
// A lock is not an OS-level mutex. It is an opaque name identifying a region
// of the state owned by the host application (the whole application, the
// active document, the active tool, ...). Actions declare which locks they
// read and which they write, and the scheduler in the queue package uses
// those declarations to decide which actions may run concurrently.
//
// The set of locks is fixed at process start and never mutated afterwards.
// An action that declares no locks at all is treated as touching every lock
// (see All), which serializes it against everything else - the safe default.
package locks

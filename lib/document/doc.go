// Package document holds the renderer-side reflection of a host document's
// layer hierarchy.
//
// The host owns the authoritative document model; this package only mirrors
// the part the synchronization core needs: which layers exist, how they nest,
// and which of them are lock-protected. Locking in the host is hierarchical -
// a locked ancestor or descendant blocks operations on a nominally-unlocked
// layer - so the lock-safe play layer needs ancestor/descendant lock queries,
// exposed here through the IDocument capability interface.
//
// The hierarchy itself is immutable once built (construction is not
// thread-safe); lock-state queries and toggles are safe for concurrent use.
package document

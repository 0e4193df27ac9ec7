package locks

// Lock names a shared resource domain of the host-resident state.
type Lock string

// The process-wide lock enumeration. Values are unique; insertion order is
// irrelevant. New locks may only be added here, never at runtime.
const (
	// LockApp covers application-wide host state (preferences, active
	// document selection, window layout).
	LockApp Lock = "app"

	// LockDocument covers the active document's content and structure.
	LockDocument Lock = "document"

	// LockTool covers the currently selected tool and its options.
	LockTool Lock = "tool"

	// LockHistory covers the document's undo/redo history.
	LockHistory Lock = "history"

	// LockDialog covers modal host dialogs and UI focus.
	LockDialog Lock = "dialog"
)

// all holds every declared lock. Kept private so callers cannot mutate the
// registry; All returns a fresh copy.
var all = Set{
	LockApp:      struct{}{},
	LockDocument: struct{}{},
	LockTool:     struct{}{},
	LockHistory:  struct{}{},
	LockDialog:   struct{}{},
}

// All returns the full lock set. Actions that omit their read or write
// declaration are tagged with this set.
func All() Set {
	s := make(Set, len(all))
	for l := range all {
		s[l] = struct{}{}
	}
	return s
}

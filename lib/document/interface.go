package document

// DocumentID identifies a host document.
type DocumentID string

// LayerID identifies a layer within a document. IDs are assigned by the host
// and unique per document.
type LayerID uint64

// LayerInfo is the flat, serializable form of a single layer. A document
// snapshot is a list of these; parent references make the tree
// reconstructable in one pass.
type LayerInfo struct {
	ID     LayerID `json:"id"`
	Name   string  `json:"name"`
	Parent LayerID `json:"parent"` // 0 = top-level layer
	Locked bool    `json:"locked"`
}

// IDocument is the capability interface the synchronization core consumes.
// The bundled in-memory implementation (see New) backs tests and the host
// simulator; a production embedder may supply its own.
type IDocument interface {
	// ID returns the document's identifier.
	ID() DocumentID

	// Has returns whether the layer exists in this document.
	Has(id LayerID) bool

	// Locked returns whether the layer itself is lock-protected. The second
	// return value is false if the layer does not exist.
	Locked(id LayerID) (locked bool, ok bool)

	// SetLocked toggles the layer's own lock flag. Returns false if the
	// layer does not exist.
	SetLocked(id LayerID, locked bool) bool

	// LockedAncestors returns the locked layers on the path from the layer
	// to the root, including the layer itself if it is locked.
	LockedAncestors(id LayerID) []LayerID

	// LockedDescendants returns the locked layers in the subtree rooted at
	// the layer, including the layer itself if it is locked.
	LockedDescendants(id LayerID) []LayerID

	// Snapshot returns the flat serializable form of the document, parents
	// before children.
	Snapshot() []LayerInfo
}

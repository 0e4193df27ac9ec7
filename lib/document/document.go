package document

import (
	"fmt"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// layerNode is one layer in the tree. Structure links are immutable after
// construction; only the lock flag changes at runtime.
type layerNode struct {
	id       LayerID
	name     string
	parent   *layerNode // nil for top-level layers
	children []*layerNode
	locked   atomic.Bool
}

type documentImpl struct {
	id    DocumentID
	roots []*layerNode
	index *xsync.MapOf[LayerID, *layerNode]
	order []LayerID // snapshot order, parents before children
}

// New creates an empty document.
func New(id DocumentID) *Document {
	return &Document{
		impl: &documentImpl{
			id:    id,
			index: xsync.NewMapOf[LayerID, *layerNode](),
		},
	}
}

// Document is the in-memory IDocument implementation.
type Document struct {
	impl *documentImpl
}

// AddLayer appends a layer to the document. parent 0 makes it a top-level
// layer. Layers must be added parents-first; construction is not safe for
// concurrent use.
func (d *Document) AddLayer(id LayerID, name string, parent LayerID, locked bool) error {
	if id == 0 {
		return fmt.Errorf("document %s: layer id 0 is reserved", d.impl.id)
	}
	if _, exists := d.impl.index.Load(id); exists {
		return fmt.Errorf("document %s: duplicate layer id %d", d.impl.id, id)
	}

	node := &layerNode{id: id, name: name}
	node.locked.Store(locked)

	if parent != 0 {
		parentNode, ok := d.impl.index.Load(parent)
		if !ok {
			return fmt.Errorf("document %s: layer %d references unknown parent %d", d.impl.id, id, parent)
		}
		node.parent = parentNode
		parentNode.children = append(parentNode.children, node)
	} else {
		d.impl.roots = append(d.impl.roots, node)
	}

	d.impl.index.Store(id, node)
	d.impl.order = append(d.impl.order, id)
	return nil
}

// FromSnapshot reconstructs a document from its flat form. The snapshot must
// list parents before children.
func FromSnapshot(id DocumentID, layers []LayerInfo) (*Document, error) {
	d := New(id)
	for _, l := range layers {
		if err := d.AddLayer(l.ID, l.Name, l.Parent, l.Locked); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (d *Document) ID() DocumentID {
	return d.impl.id
}

func (d *Document) Has(id LayerID) bool {
	_, ok := d.impl.index.Load(id)
	return ok
}

func (d *Document) Locked(id LayerID) (bool, bool) {
	node, ok := d.impl.index.Load(id)
	if !ok {
		return false, false
	}
	return node.locked.Load(), true
}

func (d *Document) SetLocked(id LayerID, locked bool) bool {
	node, ok := d.impl.index.Load(id)
	if !ok {
		return false
	}
	node.locked.Store(locked)
	return true
}

func (d *Document) LockedAncestors(id LayerID) []LayerID {
	node, ok := d.impl.index.Load(id)
	if !ok {
		return nil
	}

	var out []LayerID
	for n := node; n != nil; n = n.parent {
		if n.locked.Load() {
			out = append(out, n.id)
		}
	}
	return out
}

func (d *Document) LockedDescendants(id LayerID) []LayerID {
	node, ok := d.impl.index.Load(id)
	if !ok {
		return nil
	}

	var out []LayerID
	var walk func(n *layerNode)
	walk = func(n *layerNode) {
		if n.locked.Load() {
			out = append(out, n.id)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(node)
	return out
}

func (d *Document) Snapshot() []LayerInfo {
	out := make([]LayerInfo, 0, len(d.impl.order))
	for _, id := range d.impl.order {
		node, ok := d.impl.index.Load(id)
		if !ok {
			continue
		}
		var parent LayerID
		if node.parent != nil {
			parent = node.parent.id
		}
		out = append(out, LayerInfo{
			ID:     node.id,
			Name:   node.name,
			Parent: parent,
			Locked: node.locked.Load(),
		})
	}
	return out
}

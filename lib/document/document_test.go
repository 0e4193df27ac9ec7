package document

import (
	"reflect"
	"sort"
	"testing"
)

// buildTestDocument creates the hierarchy used throughout these tests:
//
//	1 "group" (locked)
//	├── 2 "background"
//	│   └── 3 "texture" (locked)
//	└── 4 "shapes"
//	5 "notes" (locked, top-level)
func buildTestDocument(t *testing.T) *Document {
	t.Helper()
	d := New("doc-1")

	layers := []struct {
		id     LayerID
		name   string
		parent LayerID
		locked bool
	}{
		{1, "group", 0, true},
		{2, "background", 1, false},
		{3, "texture", 2, true},
		{4, "shapes", 1, false},
		{5, "notes", 0, true},
	}
	for _, l := range layers {
		if err := d.AddLayer(l.id, l.name, l.parent, l.locked); err != nil {
			t.Fatalf("AddLayer(%d): %v", l.id, err)
		}
	}
	return d
}

func sorted(ids []LayerID) []LayerID {
	out := append([]LayerID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestLockedAncestors(t *testing.T) {
	d := buildTestDocument(t)

	tests := []struct {
		layer LayerID
		want  []LayerID
	}{
		{3, []LayerID{1, 3}}, // self plus locked group root
		{2, []LayerID{1}},
		{4, []LayerID{1}},
		{1, []LayerID{1}}, // locked layer includes itself
		{5, []LayerID{5}},
	}
	for _, tt := range tests {
		if got := sorted(d.LockedAncestors(tt.layer)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LockedAncestors(%d) = %v, want %v", tt.layer, got, tt.want)
		}
	}

	if got := d.LockedAncestors(99); got != nil {
		t.Errorf("LockedAncestors(unknown) = %v, want nil", got)
	}
}

func TestLockedDescendants(t *testing.T) {
	d := buildTestDocument(t)

	tests := []struct {
		layer LayerID
		want  []LayerID
	}{
		{1, []LayerID{1, 3}},
		{2, []LayerID{3}},
		{4, nil},
		{5, []LayerID{5}},
	}
	for _, tt := range tests {
		if got := sorted(d.LockedDescendants(tt.layer)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LockedDescendants(%d) = %v, want %v", tt.layer, got, tt.want)
		}
	}
}

func TestSetLocked(t *testing.T) {
	d := buildTestDocument(t)

	if ok := d.SetLocked(2, true); !ok {
		t.Fatal("SetLocked(2) = false, want true")
	}
	locked, ok := d.Locked(2)
	if !ok || !locked {
		t.Fatalf("Locked(2) = (%v, %v), want (true, true)", locked, ok)
	}

	// Layer 3's ancestors now include the newly locked 2.
	want := []LayerID{1, 2, 3}
	if got := sorted(d.LockedAncestors(3)); !reflect.DeepEqual(got, want) {
		t.Fatalf("LockedAncestors(3) = %v, want %v", got, want)
	}

	if ok := d.SetLocked(99, true); ok {
		t.Fatal("SetLocked(unknown) = true, want false")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := buildTestDocument(t)

	snap := d.Snapshot()
	restored, err := FromSnapshot(d.ID(), snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Fatalf("restored snapshot differs:\n got %v\nwant %v", restored.Snapshot(), snap)
	}
}

func TestAddLayerValidation(t *testing.T) {
	d := New("doc-2")

	if err := d.AddLayer(0, "bad", 0, false); err == nil {
		t.Error("expected error for reserved layer id 0")
	}
	if err := d.AddLayer(1, "a", 0, false); err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	if err := d.AddLayer(1, "dup", 0, false); err == nil {
		t.Error("expected error for duplicate layer id")
	}
	if err := d.AddLayer(2, "orphan", 42, false); err == nil {
		t.Error("expected error for unknown parent")
	}
}

package refresh

import (
	"testing"

	"github.com/google/uuid"
)

func TestDirtySetLifecycle(t *testing.T) {
	d := NewDirtySet()
	if !d.Empty() {
		t.Fatal("new set reports not empty")
	}

	a, b := uuid.New(), uuid.New()
	d.Add(a)
	d.Add(b)
	d.Add(a)
	if got := d.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if !d.Has(a) || !d.Has(b) {
		t.Error("Has() = false for a marked layer")
	}
	if d.Has(uuid.New()) {
		t.Error("Has() = true for an unknown id")
	}
	if d.Empty() {
		t.Error("Empty() = true with marked layers")
	}

	ids := d.IDs()
	if len(ids) != 2 {
		t.Fatalf("IDs() returned %d ids, want 2", len(ids))
	}
	seen := map[uuid.UUID]bool{ids[0]: true, ids[1]: true}
	if !seen[a] || !seen[b] {
		t.Errorf("IDs() = %v, want %v and %v", ids, a, b)
	}

	d.Remove(a)
	if d.Has(a) {
		t.Error("Has() = true after Remove")
	}
	if got := d.Len(); got != 1 {
		t.Errorf("Len() = %d after Remove, want 1", got)
	}

	d.Clear()
	if !d.Empty() || d.Has(b) {
		t.Error("Clear() left entries behind")
	}
}

func TestDirtySetStructural(t *testing.T) {
	d := NewDirtySet()
	if d.Structural() {
		t.Error("Structural() = true on a new set")
	}

	d.MarkStructural()
	if !d.Structural() {
		t.Error("Structural() = false after MarkStructural")
	}
	if d.Empty() {
		t.Error("Empty() = true with a structural change pending")
	}
	if got := d.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}

	d.Clear()
	if d.Structural() {
		t.Error("Clear() did not reset the structural flag")
	}
	if !d.Empty() {
		t.Error("Empty() = false after Clear")
	}
}

// Package refresh implements the change-coalescing scheduler: a polling
// monitor that watches the layer stack's change counters and folds any
// burst of fine-grained mutations into bounded-rate thumbnail and
// navigator refreshes.
package refresh

import "github.com/google/uuid"

// DirtySet accumulates the layers awaiting the next coalesced flush,
// plus whether stack structure changed since the last one. Entries are
// added by counter comparisons and cleared wholesale when the flush
// runs.
type DirtySet struct {
	ids        map[uuid.UUID]bool
	structural bool
}

// NewDirtySet creates an empty dirty set.
func NewDirtySet() *DirtySet {
	return &DirtySet{
		ids: make(map[uuid.UUID]bool),
	}
}

// Add marks one layer as awaiting refresh.
func (d *DirtySet) Add(id uuid.UUID) {
	d.ids[id] = true
}

// MarkStructural records that stack order, nesting, or membership
// changed.
func (d *DirtySet) MarkStructural() {
	d.structural = true
}

// Has reports whether the layer is marked.
func (d *DirtySet) Has(id uuid.UUID) bool {
	return d.ids[id]
}

// Structural reports whether a structural change is pending.
func (d *DirtySet) Structural() bool {
	return d.structural
}

// IDs returns the marked layer ids in no particular order.
func (d *DirtySet) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	return out
}

// Remove unmarks one layer, typically because it no longer exists.
func (d *DirtySet) Remove(id uuid.UUID) {
	delete(d.ids, id)
}

// Len returns the number of marked layers.
func (d *DirtySet) Len() int {
	return len(d.ids)
}

// Empty reports whether nothing at all is pending.
func (d *DirtySet) Empty() bool {
	return len(d.ids) == 0 && !d.structural
}

// Clear resets the set after a flush.
func (d *DirtySet) Clear() {
	clear(d.ids)
	d.structural = false
}

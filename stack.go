package easel

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Stack errors.
var (
	// ErrLayerNotFound is returned when an id does not resolve to a layer.
	ErrLayerNotFound = errors.New("easel: layer not found")

	// ErrNotRaster is returned when an operation needs a pixel surface but
	// the layer is a vector or group layer.
	ErrNotRaster = errors.New("easel: layer has no raster surface")

	// ErrNoMergeTarget is returned by MergeDown when no compatible raster
	// layer sits directly below the source.
	ErrNoMergeTarget = errors.New("easel: no merge target below layer")
)

// Stack is the document's ordered layer list. Index 0 is the bottom of
// the compositing order and the last index is the top. Group membership
// is carried by each layer's ParentID; the flat array position remains
// the z-order regardless of nesting.
//
// Stack also owns the document-global mutation sequence. Content
// mutations stamp the owning layer's change counter with the next
// sequence value; structural mutations (insert, remove, move, reparent)
// stamp the stack-wide structural version. A counter value is therefore
// never reused, which lets observers treat any changed value as a real
// change.
//
// Stack is not safe for concurrent use. All access is expected to happen
// on the editor loop.
type Stack struct {
	layers   []*Layer
	activeID uuid.UUID

	seq        uint64
	structural uint64
}

// NewStack creates an empty layer stack.
func NewStack() *Stack {
	return &Stack{
		layers: make([]*Layer, 0, 8),
	}
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Layers returns the layers in stack order, bottom to top. The slice is
// the stack's own storage; callers must not modify it.
func (s *Stack) Layers() []*Layer {
	return s.layers
}

// Index returns the position of the layer with the given id, or -1.
func (s *Stack) Index(id uuid.UUID) int {
	for i, l := range s.layers {
		if l.id == id {
			return i
		}
	}
	return -1
}

// ByID returns the layer with the given id, or nil.
func (s *Stack) ByID(id uuid.UUID) *Layer {
	if i := s.Index(id); i >= 0 {
		return s.layers[i]
	}
	return nil
}

// At returns the layer at index i, or nil when out of range.
func (s *Stack) At(i int) *Layer {
	if i < 0 || i >= len(s.layers) {
		return nil
	}
	return s.layers[i]
}

// Active resolves the active layer by id. It returns nil when no layer is
// active or the active layer has been removed; the stale id is never
// resolved through a remembered index.
func (s *Stack) Active() *Layer {
	return s.ByID(s.activeID)
}

// ActiveID returns the id of the active layer, or uuid.Nil.
func (s *Stack) ActiveID() uuid.UUID {
	return s.activeID
}

// SetActive makes the layer with the given id active. Passing uuid.Nil
// clears the active layer. It reports whether the id resolved.
func (s *Stack) SetActive(id uuid.UUID) bool {
	if id == uuid.Nil {
		s.activeID = uuid.Nil
		return true
	}
	if s.Index(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

// nextSeq draws the next value from the document-global sequence.
func (s *Stack) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// touch stamps the layer with a fresh change counter value.
func (s *Stack) touch(l *Layer) uint64 {
	l.change = s.nextSeq()
	return l.change
}

// TouchLayer records a content mutation on the layer with the given id
// and returns the new counter value, or 0 if the id does not resolve.
// Every pixel edit, filter writeback, and filter-list change goes through
// here so observers see it.
func (s *Stack) TouchLayer(id uuid.UUID) uint64 {
	l := s.ByID(id)
	if l == nil {
		return 0
	}
	return s.touch(l)
}

// TouchStructural records a structural mutation (order, nesting, or
// membership) and returns the new structural version.
func (s *Stack) TouchStructural() uint64 {
	s.structural = s.nextSeq()
	return s.structural
}

// StructuralVersion returns the version stamped by the latest structural
// mutation.
func (s *Stack) StructuralVersion() uint64 {
	return s.structural
}

// Append adds a layer at the top of the stack.
func (s *Stack) Append(l *Layer) {
	s.InsertAt(len(s.layers), l)
}

// InsertAt inserts a layer at index i, clamped to [0, Len]. The new
// layer is stamped with a fresh change counter and the insertion bumps
// the structural version.
func (s *Stack) InsertAt(i int, l *Layer) {
	if i < 0 {
		i = 0
	}
	if i > len(s.layers) {
		i = len(s.layers)
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[i+1:], s.layers[i:])
	s.layers[i] = l
	s.touch(l)
	s.TouchStructural()
}

// Remove detaches the layer with the given id and returns it. Children
// keep their ParentID; callers that need reparenting use Delete or
// Ungroup. Returns nil if the id does not resolve.
func (s *Stack) Remove(id uuid.UUID) *Layer {
	i := s.Index(id)
	if i < 0 {
		return nil
	}
	l := s.layers[i]
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	s.TouchStructural()
	return l
}

// Move moves the layer at index from to index to, both in current array
// positions. Out-of-range indices make it a no-op. It reports whether a
// move happened.
func (s *Stack) Move(from, to int) bool {
	if from < 0 || from >= len(s.layers) || to < 0 || to >= len(s.layers) || from == to {
		return false
	}
	l := s.layers[from]
	s.layers = append(s.layers[:from], s.layers[from+1:]...)
	s.layers = append(s.layers, nil)
	copy(s.layers[to+1:], s.layers[to:])
	s.layers[to] = l
	s.TouchStructural()
	return true
}

// ChildrenOf returns the direct children of the layer with the given id,
// in stack order.
func (s *Stack) ChildrenOf(id uuid.UUID) []*Layer {
	var out []*Layer
	for _, l := range s.layers {
		if l.ParentID == id {
			out = append(out, l)
		}
	}
	return out
}

// GroupEnd returns the index of the last member of the group with the
// given id, following nested membership, or the group's own index when
// it is empty. Returns -1 if the id does not resolve.
func (s *Stack) GroupEnd(id uuid.UUID) int {
	end := s.Index(id)
	if end < 0 {
		return -1
	}
	members := map[uuid.UUID]bool{id: true}
	// Membership is not contiguous, so grow the set until it stops
	// changing; each pass can pull in one more nesting level.
	for {
		grew := false
		for i, l := range s.layers {
			if members[l.id] || !members[l.ParentID] {
				continue
			}
			members[l.id] = true
			grew = true
			if i > end {
				end = i
			}
		}
		if !grew {
			return end
		}
	}
}

// NewGroup creates a group containing the layers with the given ids. The
// group is inserted just above its topmost member, takes that member's
// nesting level, and becomes the active layer.
func (s *Stack) NewGroup(name string, ids []uuid.UUID) (*Layer, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("easel: new group %q: no members", name)
	}
	top := -1
	for _, id := range ids {
		i := s.Index(id)
		if i < 0 {
			return nil, fmt.Errorf("easel: new group %q: %w", name, ErrLayerNotFound)
		}
		if i > top {
			top = i
		}
	}
	g := NewGroupLayer(name)
	g.ParentID = s.layers[top].ParentID
	for _, id := range ids {
		s.ByID(id).ParentID = g.id
	}
	s.InsertAt(top+1, g)
	s.activeID = g.id
	return g, nil
}

// Ungroup dissolves the group with the given id. Direct children move up
// to the group's own nesting level; their stack positions are unchanged.
func (s *Stack) Ungroup(id uuid.UUID) error {
	g := s.ByID(id)
	if g == nil {
		return ErrLayerNotFound
	}
	if !g.IsGroup() {
		return fmt.Errorf("easel: ungroup %q: not a group", g.Name)
	}
	children := s.ChildrenOf(id)
	for _, c := range children {
		c.ParentID = g.ParentID
	}
	s.Remove(id)
	if s.activeID == id {
		s.activeID = uuid.Nil
		if len(children) > 0 {
			s.activeID = children[len(children)-1].id
		}
	}
	return nil
}

// Delete removes the layer with the given id. Direct children are
// reparented to the deleted layer's parent. If the deleted layer was
// active, the layer now occupying its index (or the new top) becomes
// active.
func (s *Stack) Delete(id uuid.UUID) error {
	i := s.Index(id)
	if i < 0 {
		return ErrLayerNotFound
	}
	wasActive := s.activeID == id
	parent := s.layers[i].ParentID
	for _, c := range s.ChildrenOf(id) {
		c.ParentID = parent
	}
	s.Remove(id)
	if wasActive {
		s.activeID = uuid.Nil
		if n := len(s.layers); n > 0 {
			if i >= n {
				i = n - 1
			}
			s.activeID = s.layers[i].id
		}
	}
	return nil
}

// Duplicate deep-copies the layer with the given id and inserts the copy
// directly above the original. The copy gets a fresh layer id and fresh
// filter-instance ids; group children are not copied.
func (s *Stack) Duplicate(id uuid.UUID) (*Layer, error) {
	i := s.Index(id)
	if i < 0 {
		return nil, ErrLayerNotFound
	}
	src := s.layers[i]
	dup := newLayer(src.Name+" copy", src.Kind)
	dup.ParentID = src.ParentID
	dup.Visible = src.Visible
	dup.Opacity = src.Opacity
	dup.BlendMode = src.BlendMode
	dup.Transform = src.Transform
	dup.Filters = src.CloneFilters()
	for j := range dup.Filters {
		dup.Filters[j].ID = uuid.New()
	}
	if src.surface != nil {
		dup.surface = src.surface.Clone()
	}
	s.InsertAt(i+1, dup)
	return dup, nil
}

// MergeDown composites the raster layer with the given id onto the
// raster layer directly below it and removes the source. Both layers
// must be raster siblings (same ParentID). Only the translation
// components of the layer transforms are honored for placement.
func (s *Stack) MergeDown(id uuid.UUID) error {
	i := s.Index(id)
	if i < 0 {
		return ErrLayerNotFound
	}
	src := s.layers[i]
	if src.surface == nil {
		return ErrNotRaster
	}
	if i == 0 {
		return ErrNoMergeTarget
	}
	dst := s.layers[i-1]
	if dst.surface == nil || dst.ParentID != src.ParentID {
		return ErrNoMergeTarget
	}
	dx := int(src.Transform.C - dst.Transform.C)
	dy := int(src.Transform.F - dst.Transform.F)
	dst.surface.DrawOver(src.surface, dx, dy)
	s.Remove(id)
	s.touch(dst)
	if s.activeID == id {
		s.activeID = dst.id
	}
	return nil
}

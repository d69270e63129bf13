package easel

import (
	"encoding/json"

	"github.com/google/uuid"
)

// LayerKind identifies the type of document layer.
type LayerKind uint8

// Layer kind constants.
const (
	// LayerRaster is a pixel layer backed by a Surface.
	LayerRaster LayerKind = iota

	// LayerVector is a geometry layer. Its content lives with the vector
	// engine outside this core; the core tracks identity, transform, and
	// change counters only.
	LayerVector

	// LayerGroup is a container layer. It owns no pixels; membership is
	// derived from the ParentID of other layers.
	LayerGroup
)

// String returns a human-readable name for the layer kind.
func (k LayerKind) String() string {
	switch k {
	case LayerRaster:
		return "Raster"
	case LayerVector:
		return "Vector"
	case LayerGroup:
		return "Group"
	default:
		return "Unknown"
	}
}

// BlendMode specifies how a layer composites with the layers below it.
// The core stores the mode as layer metadata; the renderer consumes it.
type BlendMode uint8

// Blend mode constants.
const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
)

// String returns a human-readable name for the blend mode.
func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	default:
		return "Unknown"
	}
}

// FilterInstance is one entry in a layer's ordered filter list. Position
// in the list is composition order: the first filter is applied to the
// layer content first.
type FilterInstance struct {
	// ID identifies this instance, distinct from the filter it references.
	ID uuid.UUID `json:"id"`

	// FilterID is the registry key of the filter definition.
	FilterID string `json:"filterId"`

	// Enabled filters participate in compositing; disabled ones are
	// skipped but keep their place and parameters.
	Enabled bool `json:"enabled"`

	// Params holds the instance's parameter values keyed by parameter id.
	// Values are JSON-natural: float64, bool, or string.
	Params map[string]any `json:"params"`
}

// Clone returns a copy with an independent Params map.
func (fi FilterInstance) Clone() FilterInstance {
	p := make(map[string]any, len(fi.Params))
	for k, v := range fi.Params {
		p[k] = v
	}
	fi.Params = p
	return fi
}

// Layer is one entry in the document's layer stack.
type Layer struct {
	// Name is the user-visible layer title.
	Name string

	// Kind identifies the layer type. It never changes after creation.
	Kind LayerKind

	// ParentID is the id of the containing group, or uuid.Nil for a
	// top-level layer. Membership is derived from this field alone,
	// independent of array contiguity.
	ParentID uuid.UUID

	// Visible controls whether the renderer composites the layer.
	Visible bool

	// Opacity is the layer opacity (0.0 to 1.0).
	Opacity float64

	// BlendMode specifies compositing against the layers below.
	BlendMode BlendMode

	// Transform maps layer-local coordinates to document coordinates.
	Transform Matrix

	// Filters is the ordered filter list, first applied first.
	Filters []FilterInstance

	id      uuid.UUID
	surface *Surface
	change  uint64
}

// newLayer creates a layer with fresh identity and default metadata.
func newLayer(name string, kind LayerKind) *Layer {
	return &Layer{
		Name:      name,
		Kind:      kind,
		Visible:   true,
		Opacity:   1.0,
		BlendMode: BlendNormal,
		Transform: Identity(),
		id:        uuid.New(),
	}
}

// NewRasterLayer creates a raster layer backed by a transparent
// width×height surface.
func NewRasterLayer(name string, width, height int) *Layer {
	l := newLayer(name, LayerRaster)
	l.surface = NewSurface(width, height)
	return l
}

// NewVectorLayer creates a vector layer. The core holds no geometry for
// it; content rendering stays with the vector engine.
func NewVectorLayer(name string) *Layer {
	return newLayer(name, LayerVector)
}

// NewGroupLayer creates an empty group layer.
func NewGroupLayer(name string) *Layer {
	return newLayer(name, LayerGroup)
}

// ID returns the layer's identity. It is assigned at creation and never
// changes, even as the layer moves through the stack.
func (l *Layer) ID() uuid.UUID {
	return l.id
}

// Surface returns the pixel buffer of a raster layer, or nil for vector
// and group layers.
func (l *Layer) Surface() *Surface {
	return l.surface
}

// ChangeCounter returns the value assigned at the layer's most recent
// content mutation. Values come from the owning Stack's document-global
// sequence and are never reused.
func (l *Layer) ChangeCounter() uint64 {
	return l.change
}

// IsGroup reports whether the layer is a group container.
func (l *Layer) IsGroup() bool {
	return l.Kind == LayerGroup
}

// FilterIndex returns the position of the filter instance with the given
// id, or -1 if the layer has no such instance.
func (l *Layer) FilterIndex(id uuid.UUID) int {
	for i := range l.Filters {
		if l.Filters[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneFilters returns a deep copy of the filter list. Edits to the copy
// never alias the layer's live parameters.
func (l *Layer) CloneFilters() []FilterInstance {
	if l.Filters == nil {
		return nil
	}
	out := make([]FilterInstance, len(l.Filters))
	for i, fi := range l.Filters {
		out[i] = fi.Clone()
	}
	return out
}

// FiltersSnapshot returns the deterministic serialized form of the filter
// list. Two lists serialize identically exactly when they are equal, so
// history diffing is a string comparison.
func (l *Layer) FiltersSnapshot() string {
	if len(l.Filters) == 0 {
		return "[]"
	}
	b, err := json.Marshal(l.Filters)
	if err != nil {
		// Params hold only JSON-natural values, so this cannot fail for
		// lists built through the editing operations.
		return "[]"
	}
	return string(b)
}

// EffectiveRegion computes the layer-local pixel region a filter operates
// on. With no active selection the region is the full surface. A selection
// is converted to layer-local coordinates through the inverse layer
// transform, expanded to whole pixels, and clamped to the surface bounds.
// The result may be empty, which callers treat as a no-op.
func (l *Layer) EffectiveRegion(sel *Selection) Rect {
	if l.surface == nil {
		return Rect{}
	}
	full := l.surface.Rect()
	if !sel.Active() {
		return full
	}
	inv := l.Transform.Invert()
	corners := []Point{
		inv.TransformPoint(Pt(sel.X, sel.Y)),
		inv.TransformPoint(Pt(sel.X+sel.W, sel.Y)),
		inv.TransformPoint(Pt(sel.X+sel.W, sel.Y+sel.H)),
		inv.TransformPoint(Pt(sel.X, sel.Y+sel.H)),
	}
	return BoundsOf(corners).Intersect(full)
}

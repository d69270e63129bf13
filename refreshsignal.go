package easel

import "github.com/google/uuid"

// Refresher is the renderer boundary: a "request visible refresh" signal.
// The core tells the renderer what became stale and nothing else; no
// compositing or drawing happens on this side.
type Refresher interface {
	// RefreshLayer requests a redraw of the visible area covered by one
	// layer, after its pixels changed.
	RefreshLayer(id uuid.UUID)

	// RefreshNavigator requests a redraw of the aggregate document views
	// (layer panel, overview navigator) after structure or thumbnails
	// changed.
	RefreshNavigator()
}

// NopRefresher is a Refresher that ignores every signal. It is the
// default for sessions constructed without a renderer.
type NopRefresher struct{}

func (NopRefresher) RefreshLayer(uuid.UUID) {}
func (NopRefresher) RefreshNavigator()      {}

// RefresherFuncs adapts plain functions to the Refresher interface. Nil
// fields are ignored, so partial wiring is fine in tests and tools.
type RefresherFuncs struct {
	Layer     func(id uuid.UUID)
	Navigator func()
}

func (r RefresherFuncs) RefreshLayer(id uuid.UUID) {
	if r.Layer != nil {
		r.Layer(id)
	}
}

func (r RefresherFuncs) RefreshNavigator() {
	if r.Navigator != nil {
		r.Navigator()
	}
}

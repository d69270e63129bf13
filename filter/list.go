package filter

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/easel"
)

// HistoryLabelModifyFilters names the single history entry a filter-list
// editing session records.
const HistoryLabelModifyFilters = "Modify Layer Filters"

// ListSession is one open run of a layer's filter-list panel. Individual
// edits (add, move, remove, toggle) mutate the layer immediately and
// bump its change counter, but record no history of their own; Close
// records exactly one entry, and only when the list's serialized form
// actually changed since the session opened.
type ListSession struct {
	sess    *easel.Session
	reg     *Registry
	layerID uuid.UUID
	before  string
	closed  bool
}

// OpenList starts a filter-list editing session on the layer with the
// given id, capturing the list's serialized form for the close-time
// diff.
func OpenList(sess *easel.Session, reg *Registry, layerID uuid.UUID) (*ListSession, error) {
	layer := sess.Stack().ByID(layerID)
	if layer == nil {
		return nil, easel.ErrLayerNotFound
	}
	return &ListSession{
		sess:    sess,
		reg:     reg,
		layerID: layerID,
		before:  layer.FiltersSnapshot(),
	}, nil
}

// Layer resolves the session's layer by id. It returns nil once the
// layer has been deleted.
func (ls *ListSession) Layer() *easel.Layer {
	return ls.sess.Stack().ByID(ls.layerID)
}

// Add appends a new instance of the registered filter with parameters
// initialized from the registry defaults, and returns it.
func (ls *ListSession) Add(filterID string) (easel.FilterInstance, error) {
	def, ok := ls.reg.ByID(filterID)
	if !ok {
		return easel.FilterInstance{}, fmt.Errorf("%w: %q", ErrUnknownFilter, filterID)
	}
	layer := ls.Layer()
	if layer == nil {
		return easel.FilterInstance{}, easel.ErrLayerNotFound
	}
	inst := easel.FilterInstance{
		ID:       uuid.New(),
		FilterID: def.ID,
		Enabled:  true,
		Params:   DefaultParams(def),
	}
	layer.Filters = append(layer.Filters, inst)
	ls.sess.Stack().TouchLayer(ls.layerID)
	return inst, nil
}

// Move shifts the instance by delta positions, swapping it with the
// entry at the destination. A destination outside the list makes the
// call a no-op. It reports whether the list changed.
func (ls *ListSession) Move(instanceID uuid.UUID, delta int) bool {
	layer := ls.Layer()
	if layer == nil {
		return false
	}
	i := layer.FilterIndex(instanceID)
	if i < 0 {
		return false
	}
	j := i + delta
	if j < 0 || j >= len(layer.Filters) || j == i {
		return false
	}
	layer.Filters[i], layer.Filters[j] = layer.Filters[j], layer.Filters[i]
	ls.sess.Stack().TouchLayer(ls.layerID)
	return true
}

// Remove deletes the instance from the list. It reports whether the
// list changed.
func (ls *ListSession) Remove(instanceID uuid.UUID) bool {
	layer := ls.Layer()
	if layer == nil {
		return false
	}
	i := layer.FilterIndex(instanceID)
	if i < 0 {
		return false
	}
	layer.Filters = append(layer.Filters[:i], layer.Filters[i+1:]...)
	ls.sess.Stack().TouchLayer(ls.layerID)
	return true
}

// Toggle flips the instance's Enabled flag. The layer's change counter
// is bumped because the effective composite changed, which invalidates
// any cached composite and thumbnail; no history entry is recorded here.
func (ls *ListSession) Toggle(instanceID uuid.UUID) bool {
	layer := ls.Layer()
	if layer == nil {
		return false
	}
	i := layer.FilterIndex(instanceID)
	if i < 0 {
		return false
	}
	layer.Filters[i].Enabled = !layer.Filters[i].Enabled
	ls.sess.Stack().TouchLayer(ls.layerID)
	return true
}

// Close ends the session. One "Modify Layer Filters" history entry is
// recorded if and only if the list's serialized form differs from the
// form captured at open; a session whose edits cancel out records
// nothing. Closing twice, or closing after the layer was deleted, is a
// no-op.
func (ls *ListSession) Close() {
	if ls.closed {
		return
	}
	ls.closed = true
	layer := ls.Layer()
	if layer == nil {
		return
	}
	after := layer.FiltersSnapshot()
	if after == ls.before {
		return
	}
	ls.sess.History().SaveState(HistoryLabelModifyFilters)
	ls.sess.History().FinishState()
}

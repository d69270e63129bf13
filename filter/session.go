package filter

import (
	"github.com/google/uuid"

	"github.com/gogpu/easel"
)

// State is the preview state machine position of a dialog session.
type State uint8

// Session states.
const (
	// StateIdle means no dialog is open. Sessions are never observed in
	// this state; it is the implicit state of a layer without a session.
	StateIdle State = iota

	// StateEditing means the dialog is open and parameter edits drive
	// speculative previews.
	StateEditing

	// StateCommitted is the terminal state after Commit.
	StateCommitted

	// StateCancelled is the terminal state after Cancel.
	StateCancelled
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateEditing:
		return "Editing"
	case StateCommitted:
		return "Committed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// PreviewSession is the transient state of one open filter dialog: a
// speculative, cancelable filter application on a single layer. At most
// one session exists per layer; the session holds the layer's surface
// lock from open to commit or cancel.
type PreviewSession struct {
	layerID    uuid.UUID
	def        *Definition
	instanceID uuid.UUID

	// appended records whether the dialog created the list entry it is
	// editing; Cancel removes an appended entry but restores the prior
	// parameters of a pre-existing one.
	appended   bool
	prevParams map[string]any

	// snapshot is the exact pre-dialog surface, the restore point for
	// every recompute and for Cancel.
	snapshot *easel.Surface

	// preList is the filter list's serialized form at dialog open; the
	// commit-time history decision diffs against it.
	preList string

	state State

	// seq is the most recently issued request sequence. Only the
	// response carrying this value may be applied.
	seq      uint64
	region   easel.Rect
	debounce easel.Handle
}

// LayerID returns the id of the layer the session previews on.
func (ps *PreviewSession) LayerID() uuid.UUID {
	return ps.layerID
}

// Definition returns the filter being edited.
func (ps *PreviewSession) Definition() *Definition {
	return ps.def
}

// InstanceID returns the id of the filter-list entry the dialog edits.
func (ps *PreviewSession) InstanceID() uuid.UUID {
	return ps.instanceID
}

// State returns the session's state machine position.
func (ps *PreviewSession) State() State {
	return ps.state
}

// Seq returns the most recently issued request sequence number.
func (ps *PreviewSession) Seq() uint64 {
	return ps.seq
}

// stopDebounce cancels a pending recompute, if any.
func (ps *PreviewSession) stopDebounce() {
	if ps.debounce != nil {
		ps.debounce.Stop()
		ps.debounce = nil
	}
}

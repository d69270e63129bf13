package arrange

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gogpu/easel"
)

// ErrDragActive is returned by Start when a drag is already in progress.
var ErrDragActive = errors.New("arrange: drag already in progress")

// DragState is the position of a drag in its state machine.
type DragState uint8

// Drag states.
const (
	// DragIdle means no drag is in progress.
	DragIdle DragState = iota

	// Dragging means a source is picked up but no row is hovered.
	Dragging

	// Hovering means the pointer is over a row and a zone is computed.
	Hovering
)

// String returns a human-readable name for the drag state.
func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "Idle"
	case Dragging:
		return "Dragging"
	case Hovering:
		return "Hovering"
	default:
		return "Unknown"
	}
}

// Drag is the state machine for one pointer drag over the layer panel.
// Start picks a source up, Hover tracks the row and zone under the
// pointer, and Drop consumes the last hovered zone to mutate the stack.
// Layers are tracked by id throughout, so a layer deleted mid-drag makes
// the drop a clean no-op instead of a stale-index mutation.
type Drag struct {
	sess *easel.Session

	state    DragState
	sourceID uuid.UUID
	targetID uuid.UUID
	zone     Zone
}

// NewDrag creates a drag machine over the session's stack.
func NewDrag(sess *easel.Session) *Drag {
	return &Drag{sess: sess}
}

// State returns the drag's state machine position.
func (d *Drag) State() DragState {
	return d.state
}

// Source returns the id of the layer being dragged, or uuid.Nil.
func (d *Drag) Source() uuid.UUID {
	if d.state == DragIdle {
		return uuid.Nil
	}
	return d.sourceID
}

// Start picks up the layer with the given id.
func (d *Drag) Start(sourceID uuid.UUID) error {
	if d.state != DragIdle {
		return ErrDragActive
	}
	if d.sess.Stack().ByID(sourceID) == nil {
		return easel.ErrLayerNotFound
	}
	d.state = Dragging
	d.sourceID = sourceID
	easel.Logger().Debug("arrange: drag started", "source", sourceID)
	return nil
}

// Hover records the row under the pointer and computes its drop zone
// from the pointer's vertical offset y within the row of height h. A
// target that no longer resolves clears the hover.
func (d *Drag) Hover(targetID uuid.UUID, y, h float64) Zone {
	if d.state == DragIdle {
		return ZoneBefore
	}
	target := d.sess.Stack().ByID(targetID)
	if target == nil {
		d.Leave()
		return ZoneBefore
	}
	d.state = Hovering
	d.targetID = targetID
	d.zone = ZoneAt(y, h, target.IsGroup())
	return d.zone
}

// Leave clears the hovered row; the drag itself continues.
func (d *Drag) Leave() {
	if d.state == Hovering {
		d.state = Dragging
		d.targetID = uuid.Nil
	}
}

// Cancel abandons the drag without mutating anything.
func (d *Drag) Cancel() {
	d.reset()
}

// Drop releases the dragged layer onto the last hovered row, mutating
// the stack according to the zone. Dropping with no hovered row, onto
// the source itself, or after either layer was deleted is a clean
// no-op. The drag always ends Idle.
func (d *Drag) Drop() {
	if d.state != Hovering {
		d.reset()
		return
	}
	sourceID, targetID, zone := d.sourceID, d.targetID, d.zone
	d.reset()
	d.drop(sourceID, targetID, zone)
}

// reset returns the machine to Idle.
func (d *Drag) reset() {
	d.state = DragIdle
	d.sourceID = uuid.Nil
	d.targetID = uuid.Nil
	d.zone = ZoneBefore
}

// drop performs the stack mutation for one consumed drop.
func (d *Drag) drop(sourceID, targetID uuid.UUID, zone Zone) {
	if sourceID == targetID {
		return
	}
	stack := d.sess.Stack()
	src := stack.ByID(sourceID)
	tgt := stack.ByID(targetID)
	if src == nil || tgt == nil {
		easel.Logger().Debug("arrange: drop target vanished, aborting",
			"source", sourceID, "target", targetID)
		return
	}
	// A group may not land inside its own subtree; the ParentID chain
	// must stay acyclic.
	if d.isAncestor(sourceID, targetID) {
		easel.Logger().Debug("arrange: drop would nest group in itself, aborting",
			"source", sourceID, "target", targetID)
		return
	}
	if zone == ZoneInto && !tgt.IsGroup() {
		zone = ZoneBefore
	}

	hist := d.sess.History()
	hist.BeginStructuralChange()

	stack.Remove(sourceID)
	switch zone {
	case ZoneInto:
		src.ParentID = tgt.ID()
		end := stack.GroupEnd(targetID)
		stack.InsertAt(end+1, src)
	case ZoneBefore, ZoneAfter:
		// The target's index is recomputed after the removal; taking it
		// out shifts everything above the source down by one.
		ti := stack.Index(targetID)
		src.ParentID = tgt.ParentID
		pos := ti
		if zone == ZoneAfter {
			pos = ti + 1
		}
		stack.InsertAt(pos, src)
	}

	hist.CommitCapture()
	easel.Logger().Debug("arrange: dropped",
		"source", sourceID, "target", targetID, "zone", zone.String())
}

// isAncestor reports whether ancestorID appears on the ParentID chain
// of the layer with the given id.
func (d *Drag) isAncestor(ancestorID, id uuid.UUID) bool {
	stack := d.sess.Stack()
	for {
		layer := stack.ByID(id)
		if layer == nil || layer.ParentID == uuid.Nil {
			return false
		}
		if layer.ParentID == ancestorID {
			return true
		}
		id = layer.ParentID
	}
}

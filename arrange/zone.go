// Package arrange implements the layer ordering engine: it turns
// pointer-drag geometry over the layer panel into deterministic reorder
// and reparent operations on the stack.
package arrange

// Zone is the drop position a hovered row offers.
type Zone uint8

// Drop zones.
const (
	// ZoneBefore inserts the dragged layer at the target's index,
	// pushing the target up.
	ZoneBefore Zone = iota

	// ZoneAfter inserts the dragged layer directly above the target.
	ZoneAfter

	// ZoneInto reparents the dragged layer under the target group.
	ZoneInto
)

// String returns a human-readable name for the zone.
func (z Zone) String() string {
	switch z {
	case ZoneBefore:
		return "Before"
	case ZoneAfter:
		return "After"
	case ZoneInto:
		return "Into"
	default:
		return "Unknown"
	}
}

// EdgeFraction is the fraction of a row's height forming each edge band.
// The top band drops before the row, the bottom band after it, and the
// middle band drops into it when the row is a group.
const EdgeFraction = 0.3

// ZoneAt maps a pointer's vertical offset y within a hovered row of
// height h to a drop zone. Rows that are not groups have no middle band;
// their middle reads as ZoneBefore.
func ZoneAt(y, h float64, isGroup bool) Zone {
	switch {
	case y < EdgeFraction*h:
		return ZoneBefore
	case y > (1-EdgeFraction)*h:
		return ZoneAfter
	case isGroup:
		return ZoneInto
	default:
		return ZoneBefore
	}
}

// Package filter implements the speculative filter pipeline: the filter
// registry, per-layer filter-list editing, and the preview/commit/cancel
// state machine that executes filters on an external service without
// corrupting pixels or history.
package filter

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrUnknownFilter is returned when an id does not resolve to a
	// registered definition.
	ErrUnknownFilter = errors.New("filter: unknown filter")

	// ErrBadDefinition is returned when a definition fails validation.
	ErrBadDefinition = errors.New("filter: bad definition")
)

// ParamType identifies the kind of a filter parameter.
type ParamType uint8

// Parameter type constants.
const (
	// ParamRange is a numeric value constrained to [Min, Max].
	ParamRange ParamType = iota

	// ParamSelect is one choice out of Options.
	ParamSelect

	// ParamCheckbox is a boolean toggle.
	ParamCheckbox

	// ParamColor is a hex color string such as "#ff8800".
	ParamColor
)

// String returns a human-readable name for the parameter type.
func (t ParamType) String() string {
	switch t {
	case ParamRange:
		return "range"
	case ParamSelect:
		return "select"
	case ParamCheckbox:
		return "checkbox"
	case ParamColor:
		return "color"
	default:
		return "unknown"
	}
}

// ParseParamType parses the textual form used in registry files.
func ParseParamType(s string) (ParamType, error) {
	switch s {
	case "range":
		return ParamRange, nil
	case "select":
		return ParamSelect, nil
	case "checkbox":
		return ParamCheckbox, nil
	case "color":
		return ParamColor, nil
	default:
		return 0, fmt.Errorf("%w: parameter type %q", ErrBadDefinition, s)
	}
}

// Parameter declares one parameter of a filter definition.
type Parameter struct {
	// ID names the parameter inside the params map.
	ID string

	// Type determines which constraint fields apply.
	Type ParamType

	// Default is the declared initial value, optional. When absent or
	// type-invalid the per-type default rule applies instead.
	Default any

	// Min and Max bound a range parameter.
	Min, Max float64

	// Options are the legal values of a select parameter.
	Options []string
}

// Definition is one entry of the filter registry: what the editor knows
// about a filter the execution service provides.
type Definition struct {
	// ID is the registry key and the wire endpoint name.
	ID string

	// Name is the user-visible filter title.
	Name string

	// Category groups filters in the UI ("Adjust", "Blur", ...).
	Category string

	// Parameters declares the dialog's controls, in display order. A
	// definition with no parameters applies directly without a dialog.
	Parameters []Parameter
}

// Parameterless reports whether the filter declares no parameters.
func (d *Definition) Parameterless() bool {
	return len(d.Parameters) == 0
}

// Param returns the declared parameter with the given id.
func (d *Definition) Param(id string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

// validate checks a definition for registration.
func (d *Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrBadDefinition)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: %q has no name", ErrBadDefinition, d.ID)
	}
	seen := make(map[string]bool, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.ID == "" {
			return fmt.Errorf("%w: %q has a parameter without id", ErrBadDefinition, d.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %q declares parameter %q twice", ErrBadDefinition, d.ID, p.ID)
		}
		seen[p.ID] = true
		switch p.Type {
		case ParamRange:
			if p.Min > p.Max {
				return fmt.Errorf("%w: %q parameter %q has min %v > max %v",
					ErrBadDefinition, d.ID, p.ID, p.Min, p.Max)
			}
		case ParamSelect:
			if len(p.Options) == 0 {
				return fmt.Errorf("%w: %q parameter %q has no options",
					ErrBadDefinition, d.ID, p.ID)
			}
		case ParamCheckbox, ParamColor:
			// No extra constraints.
		default:
			return fmt.Errorf("%w: %q parameter %q has unknown type",
				ErrBadDefinition, d.ID, p.ID)
		}
	}
	return nil
}

// Registry holds the ordered filter definitions the editor offers. The
// editor consumes the registry; it never defines filter algorithms.
type Registry struct {
	defs []*Definition
	byID map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Definition),
	}
}

// Register validates def and appends it. Registration order is the menu
// order the UI shows.
func (r *Registry) Register(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	if _, exists := r.byID[def.ID]; exists {
		return fmt.Errorf("%w: %q already registered", ErrBadDefinition, def.ID)
	}
	r.defs = append(r.defs, def)
	r.byID[def.ID] = def
	return nil
}

// ByID returns the definition with the given id.
func (r *Registry) ByID(id string) (*Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Definitions returns all definitions in registration order. The slice
// is the registry's own storage; callers must not modify it.
func (r *Registry) Definitions() []*Definition {
	return r.defs
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Categories returns the distinct categories in first-appearance order.
func (r *Registry) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range r.defs {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// ByCategory returns the definitions of one category in registration
// order.
func (r *Registry) ByCategory(category string) []*Definition {
	var out []*Definition
	for _, d := range r.defs {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

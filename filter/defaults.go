package filter

import "github.com/gogpu/easel"

// DefaultColor is the initial value of a color parameter that declares
// no default of its own.
const DefaultColor = "#000000"

// Normalize checks v against the parameter's constraints and returns it
// in canonical form: float64 for ranges, string for selects and colors,
// bool for checkboxes. The second result reports validity.
func Normalize(p Parameter, v any) (any, bool) {
	switch p.Type {
	case ParamRange:
		f, ok := toFloat(v)
		if !ok || f < p.Min || f > p.Max {
			return nil, false
		}
		return f, true
	case ParamSelect:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		for _, opt := range p.Options {
			if opt == s {
				return s, true
			}
		}
		return nil, false
	case ParamCheckbox:
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}
		return b, true
	case ParamColor:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		if _, valid := easel.ParseHex(s); !valid {
			return nil, false
		}
		return s, true
	default:
		return nil, false
	}
}

// DefaultValue returns the initial value of a parameter: the declared
// default when it is valid for the type, otherwise the per-type rule
// (range → minimum, select → first option, checkbox → false, color →
// DefaultColor).
func DefaultValue(p Parameter) any {
	if p.Default != nil {
		if v, ok := Normalize(p, p.Default); ok {
			return v
		}
	}
	switch p.Type {
	case ParamRange:
		return p.Min
	case ParamSelect:
		return p.Options[0]
	case ParamCheckbox:
		return false
	case ParamColor:
		return DefaultColor
	default:
		return nil
	}
}

// DefaultParams builds the initial params map for a definition.
func DefaultParams(def *Definition) map[string]any {
	params := make(map[string]any, len(def.Parameters))
	for _, p := range def.Parameters {
		params[p.ID] = DefaultValue(p)
	}
	return params
}

// toFloat widens the numeric forms a parameter value can arrive in.
// JSON decodes numbers as float64; YAML defaults may decode as int.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

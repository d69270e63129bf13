package filter

import "testing"

func TestNormalize(t *testing.T) {
	rangeParam := Parameter{ID: "amount", Type: ParamRange, Min: -1, Max: 1}
	selectParam := Parameter{ID: "mode", Type: ParamSelect, Options: []string{"fast", "precise"}}
	checkParam := Parameter{ID: "solid", Type: ParamCheckbox}
	colorParam := Parameter{ID: "tint", Type: ParamColor}

	tests := []struct {
		name  string
		param Parameter
		in    any
		want  any
		ok    bool
	}{
		{"range float in bounds", rangeParam, 0.25, 0.25, true},
		{"range at min", rangeParam, -1.0, -1.0, true},
		{"range at max", rangeParam, 1.0, 1.0, true},
		{"range int widened", rangeParam, 1, 1.0, true},
		{"range int64 widened", rangeParam, int64(0), 0.0, true},
		{"range below min", rangeParam, -1.5, nil, false},
		{"range above max", rangeParam, 2.0, nil, false},
		{"range wrong type", rangeParam, "big", nil, false},
		{"select valid option", selectParam, "precise", "precise", true},
		{"select unknown option", selectParam, "slow", nil, false},
		{"select wrong type", selectParam, 3, nil, false},
		{"checkbox true", checkParam, true, true, true},
		{"checkbox false", checkParam, false, false, true},
		{"checkbox wrong type", checkParam, "true", nil, false},
		{"color hex", colorParam, "#ff8800", "#ff8800", true},
		{"color without hash", colorParam, "ff8800", "ff8800", true},
		{"color short form", colorParam, "#f80", "#f80", true},
		{"color invalid", colorParam, "#zzzzzz", nil, false},
		{"color wrong type", colorParam, 0xff8800, nil, false},
		{"unknown type", Parameter{ID: "x", Type: ParamType(9)}, 1.0, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.param, tt.in)
			if ok != tt.ok {
				t.Fatalf("Normalize(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Normalize(%v) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
		want  any
	}{
		{"range declared default", Parameter{Type: ParamRange, Min: 0, Max: 8, Default: 2.0}, 2.0},
		{"range int default widened", Parameter{Type: ParamRange, Min: 0, Max: 8, Default: 3}, 3.0},
		{"range default out of bounds", Parameter{Type: ParamRange, Min: 0, Max: 8, Default: 99.0}, 0.0},
		{"range no default", Parameter{Type: ParamRange, Min: -1, Max: 1}, -1.0},
		{"select declared default", Parameter{Type: ParamSelect, Options: []string{"a", "b"}, Default: "b"}, "b"},
		{"select invalid default", Parameter{Type: ParamSelect, Options: []string{"a", "b"}, Default: "z"}, "a"},
		{"select no default", Parameter{Type: ParamSelect, Options: []string{"a", "b"}}, "a"},
		{"checkbox declared default", Parameter{Type: ParamCheckbox, Default: true}, true},
		{"checkbox invalid default", Parameter{Type: ParamCheckbox, Default: "yes"}, false},
		{"checkbox no default", Parameter{Type: ParamCheckbox}, false},
		{"color declared default", Parameter{Type: ParamColor, Default: "#ff8800"}, "#ff8800"},
		{"color invalid default", Parameter{Type: ParamColor, Default: "chartreuse"}, DefaultColor},
		{"color no default", Parameter{Type: ParamColor}, DefaultColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultValue(tt.param); got != tt.want {
				t.Errorf("DefaultValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	def := &Definition{
		ID:   "tuner",
		Name: "Tuner",
		Parameters: []Parameter{
			{ID: "amount", Type: ParamRange, Min: -1, Max: 1, Default: 0.5},
			{ID: "mode", Type: ParamSelect, Options: []string{"soft", "hard"}},
			{ID: "clip", Type: ParamCheckbox, Default: true},
			{ID: "tint", Type: ParamColor},
		},
	}
	params := DefaultParams(def)
	if len(params) != 4 {
		t.Fatalf("len(params) = %d, want 4", len(params))
	}
	want := map[string]any{
		"amount": 0.5,
		"mode":   "soft",
		"clip":   true,
		"tint":   DefaultColor,
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("params[%q] = %v, want %v", k, params[k], v)
		}
	}

	if got := DefaultParams(&Definition{ID: "plain", Name: "Plain"}); len(got) != 0 {
		t.Errorf("parameterless DefaultParams = %v, want empty", got)
	}
}

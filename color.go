package easel

import (
	"fmt"
	"image/color"
)

// Color is a straight-alpha 8-bit RGBA color, the component layout used by
// layer surfaces and by filter color parameters.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color from 8-bit RGB components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// NRGBA converts the color to the standard library's straight-alpha type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not fully opaque.
// This is the form filter color parameters are serialized in.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHex parses a hex color string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", each with an
// optional leading '#'. The second return value reports whether the string
// was a valid color; parameter validation depends on it.
func ParseHex(hex string) (Color, bool) {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3: // RGB
		if !parseHex(hex[0:1], &r) || !parseHex(hex[1:2], &g) || !parseHex(hex[2:3], &b) {
			return Color{}, false
		}
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		if !parseHex(hex[0:1], &r) || !parseHex(hex[1:2], &g) ||
			!parseHex(hex[2:3], &b) || !parseHex(hex[3:4], &a) {
			return Color{}, false
		}
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		if !parseHex(hex[0:2], &r) || !parseHex(hex[2:4], &g) || !parseHex(hex[4:6], &b) {
			return Color{}, false
		}
	case 8: // RRGGBBAA
		if !parseHex(hex[0:2], &r) || !parseHex(hex[2:4], &g) ||
			!parseHex(hex[4:6], &b) || !parseHex(hex[6:8], &a) {
			return Color{}, false
		}
	default:
		return Color{}, false
	}

	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

// parseHex is a helper for hex parsing.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(255, 255, 255)
	Transparent = Color{}
)

package wire

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/easel"
)

// Reference filter functions. They exist so the repo runs end-to-end
// against a real service instance; the editing core itself never
// computes filter pixels.

// ErrBadParam is returned when a filter parameter has the wrong type or
// an out-of-range value.
var ErrBadParam = errors.New("wire: bad filter parameter")

// RegisterReference registers the built-in reference filters on s:
// invert, grayscale, brightness, boxblur, gaussian, fill.
func RegisterReference(s *Server) {
	s.Register("invert", Invert)
	s.Register("grayscale", Grayscale)
	s.Register("brightness", Brightness)
	s.Register("boxblur", BoxBlur)
	s.Register("gaussian", Gaussian)
	s.Register("fill", Fill)
}

// Invert flips each color channel, leaving alpha unchanged. Paramless.
func Invert(req Request) ([]uint8, error) {
	out := make([]uint8, len(req.Pixels))
	for i := 0; i < len(req.Pixels); i += 4 {
		out[i+0] = 255 - req.Pixels[i+0]
		out[i+1] = 255 - req.Pixels[i+1]
		out[i+2] = 255 - req.Pixels[i+2]
		out[i+3] = req.Pixels[i+3]
	}
	return out, nil
}

// Grayscale replaces each pixel's color with its BT.601 luma, leaving
// alpha unchanged. Paramless.
func Grayscale(req Request) ([]uint8, error) {
	out := make([]uint8, len(req.Pixels))
	for i := 0; i < len(req.Pixels); i += 4 {
		r := uint32(req.Pixels[i+0])
		g := uint32(req.Pixels[i+1])
		b := uint32(req.Pixels[i+2])
		y := uint8((299*r + 587*g + 114*b) / 1000)
		out[i+0] = y
		out[i+1] = y
		out[i+2] = y
		out[i+3] = req.Pixels[i+3]
	}
	return out, nil
}

// Brightness shifts each color channel by amount*255, where the
// "amount" parameter lies in [-1, 1]. Alpha is unchanged.
func Brightness(req Request) ([]uint8, error) {
	amount, err := paramFloat(req.Params, "amount")
	if err != nil {
		return nil, err
	}
	if amount < -1 || amount > 1 {
		return nil, fmt.Errorf("%w: amount %v outside [-1, 1]", ErrBadParam, amount)
	}
	delta := int(amount * 255)
	out := make([]uint8, len(req.Pixels))
	for i := 0; i < len(req.Pixels); i += 4 {
		out[i+0] = clampByte(int(req.Pixels[i+0]) + delta)
		out[i+1] = clampByte(int(req.Pixels[i+1]) + delta)
		out[i+2] = clampByte(int(req.Pixels[i+2]) + delta)
		out[i+3] = req.Pixels[i+3]
	}
	return out, nil
}

// BoxBlur averages each channel over a (2r+1)² window, where the
// "radius" parameter r lies in [0, 16]. Samples outside the region are
// clamped to its edge.
func BoxBlur(req Request) ([]uint8, error) {
	radius, err := paramFloat(req.Params, "radius")
	if err != nil {
		return nil, err
	}
	r := int(radius)
	if r < 0 || r > 16 {
		return nil, fmt.Errorf("%w: radius %v outside [0, 16]", ErrBadParam, radius)
	}
	if r == 0 {
		out := make([]uint8, len(req.Pixels))
		copy(out, req.Pixels)
		return out, nil
	}

	w, h := req.Width, req.Height
	out := make([]uint8, len(req.Pixels))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum [4]uint32
			for dy := -r; dy <= r; dy++ {
				sy := clampInt(y+dy, 0, h-1)
				for dx := -r; dx <= r; dx++ {
					sx := clampInt(x+dx, 0, w-1)
					si := (sy*w + sx) * 4
					sum[0] += uint32(req.Pixels[si+0])
					sum[1] += uint32(req.Pixels[si+1])
					sum[2] += uint32(req.Pixels[si+2])
					sum[3] += uint32(req.Pixels[si+3])
				}
			}
			n := uint32((2*r + 1) * (2*r + 1))
			di := (y*w + x) * 4
			out[di+0] = uint8(sum[0] / n)
			out[di+1] = uint8(sum[1] / n)
			out[di+2] = uint8(sum[2] / n)
			out[di+3] = uint8(sum[3] / n)
		}
	}
	return out, nil
}

// Gaussian applies a separable Gaussian blur whose "radius" parameter
// (the standard deviation in pixels) lies in [0, 16]. Two 1D passes
// keep the cost linear in the radius; samples outside the region clamp
// to its edge.
func Gaussian(req Request) ([]uint8, error) {
	radius, err := paramFloat(req.Params, "radius")
	if err != nil {
		return nil, err
	}
	if radius < 0 || radius > 16 {
		return nil, fmt.Errorf("%w: radius %v outside [0, 16]", ErrBadParam, radius)
	}
	out := make([]uint8, len(req.Pixels))
	if radius == 0 {
		copy(out, req.Pixels)
		return out, nil
	}

	kernel := gaussianKernel(radius)
	half := len(kernel) / 2
	w, h := req.Width, req.Height

	// Horizontal pass into a float scratch buffer, vertical pass back
	// to bytes.
	tmp := make([]float64, len(req.Pixels))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for k, weight := range kernel {
				si := (y*w + clampInt(x+k-half, 0, w-1)) * 4
				r += float64(req.Pixels[si+0]) * weight
				g += float64(req.Pixels[si+1]) * weight
				b += float64(req.Pixels[si+2]) * weight
				a += float64(req.Pixels[si+3]) * weight
			}
			ti := (y*w + x) * 4
			tmp[ti+0] = r
			tmp[ti+1] = g
			tmp[ti+2] = b
			tmp[ti+3] = a
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for k, weight := range kernel {
				si := (clampInt(y+k-half, 0, h-1)*w + x) * 4
				r += tmp[si+0] * weight
				g += tmp[si+1] * weight
				b += tmp[si+2] * weight
				a += tmp[si+3] * weight
			}
			di := (y*w + x) * 4
			out[di+0] = clampByte(int(math.Round(r)))
			out[di+1] = clampByte(int(math.Round(g)))
			out[di+2] = clampByte(int(math.Round(b)))
			out[di+3] = clampByte(int(math.Round(a)))
		}
	}
	return out, nil
}

// gaussianKernel builds a normalized 1D kernel covering three standard
// deviations each side of center.
func gaussianKernel(sigma float64) []float64 {
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float64, 2*half+1)
	twoSigmaSq := 2 * sigma * sigma
	var sum float64
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Fill replaces every pixel with the "color" parameter, a hex color
// string such as "#ff8800".
func Fill(req Request) ([]uint8, error) {
	s, err := paramString(req.Params, "color")
	if err != nil {
		return nil, err
	}
	c, ok := easel.ParseHex(s)
	if !ok {
		return nil, fmt.Errorf("%w: color %q is not a hex color", ErrBadParam, s)
	}
	out := make([]uint8, len(req.Pixels))
	for i := 0; i < len(out); i += 4 {
		out[i+0] = c.R
		out[i+1] = c.G
		out[i+2] = c.B
		out[i+3] = c.A
	}
	return out, nil
}

// paramFloat reads a required numeric parameter. JSON numbers decode as
// float64; integers that traveled as int are accepted too.
func paramFloat(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadParam, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %q is %T, want number", ErrBadParam, key, v)
	}
}

// paramString reads a required string parameter.
func paramString(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrBadParam, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrBadParam, key, v)
	}
	return s, nil
}

// clampByte restricts a value to [0, 255].
func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clampInt restricts v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

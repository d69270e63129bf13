package easel

import (
	"fmt"
	"image"
	"image/color"
)

// Surface is the rectangular pixel buffer backing a raster layer.
// Pixels are straight-alpha RGBA, 4 bytes per pixel, row-major with the
// top row first. That layout is shared byte-for-byte with the filter
// service wire format, so regions can be extracted and written back
// without conversion.
type Surface struct {
	width  int
	height int
	data   []uint8
}

// NewSurface creates a transparent surface with the given dimensions.
func NewSurface(width, height int) *Surface {
	return &Surface{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the surface in pixels.
func (s *Surface) Width() int {
	return s.width
}

// Height returns the height of the surface in pixels.
func (s *Surface) Height() int {
	return s.height
}

// Rect returns the surface rectangle at origin (0, 0).
func (s *Surface) Rect() Rect {
	return Rect{X: 0, Y: 0, W: s.width, H: s.height}
}

// Data returns the raw pixel data (straight-alpha RGBA).
func (s *Surface) Data() []uint8 {
	return s.data
}

// SetPixel sets the color of a single pixel. Out-of-bounds writes are
// ignored.
func (s *Surface) SetPixel(x, y int, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	i := (y*s.width + x) * 4
	s.data[i+0] = c.R
	s.data[i+1] = c.G
	s.data[i+2] = c.B
	s.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel. Out-of-bounds reads
// return Transparent.
func (s *Surface) GetPixel(x, y int) Color {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return Transparent
	}
	i := (y*s.width + x) * 4
	return Color{R: s.data[i+0], G: s.data[i+1], B: s.data[i+2], A: s.data[i+3]}
}

// Clear fills the entire surface with a color.
func (s *Surface) Clear(c Color) {
	for i := 0; i < len(s.data); i += 4 {
		s.data[i+0] = c.R
		s.data[i+1] = c.G
		s.data[i+2] = c.B
		s.data[i+3] = c.A
	}
}

// Clone returns an independent deep copy of the surface. Preview
// snapshots and history capture depend on the copy sharing no storage
// with the original.
func (s *Surface) Clone() *Surface {
	c := NewSurface(s.width, s.height)
	copy(c.data, s.data)
	return c
}

// Equal reports whether two surfaces have identical dimensions and
// bit-identical pixel data.
func (s *Surface) Equal(o *Surface) bool {
	if s.width != o.width || s.height != o.height {
		return false
	}
	for i, b := range s.data {
		if o.data[i] != b {
			return false
		}
	}
	return true
}

// Region copies the pixels of r into a fresh buffer, row-major with the
// top row first. r must lie within the surface bounds.
func (s *Surface) Region(r Rect) ([]uint8, error) {
	if r.Empty() {
		return nil, fmt.Errorf("easel: empty region %+v", r)
	}
	if r.Intersect(s.Rect()) != r {
		return nil, fmt.Errorf("easel: region %+v outside surface %dx%d", r, s.width, s.height)
	}
	out := make([]uint8, r.W*r.H*4)
	for row := 0; row < r.H; row++ {
		src := ((r.Y+row)*s.width + r.X) * 4
		dst := row * r.W * 4
		copy(out[dst:dst+r.W*4], s.data[src:src+r.W*4])
	}
	return out, nil
}

// SetRegion writes pix back into the pixels of r. pix must hold exactly
// r.W*r.H*4 bytes and r must lie within the surface bounds.
func (s *Surface) SetRegion(r Rect, pix []uint8) error {
	if r.Empty() {
		return fmt.Errorf("easel: empty region %+v", r)
	}
	if r.Intersect(s.Rect()) != r {
		return fmt.Errorf("easel: region %+v outside surface %dx%d", r, s.width, s.height)
	}
	if len(pix) != r.W*r.H*4 {
		return fmt.Errorf("easel: region %dx%d needs %d bytes, got %d", r.W, r.H, r.W*r.H*4, len(pix))
	}
	for row := 0; row < r.H; row++ {
		dst := ((r.Y+row)*s.width + r.X) * 4
		src := row * r.W * 4
		copy(s.data[dst:dst+r.W*4], pix[src:src+r.W*4])
	}
	return nil
}

// DrawOver composites src onto s with source-over blending, placing the
// top-left corner of src at (x, y). Pixels falling outside s are clipped.
// Both surfaces are straight alpha.
func (s *Surface) DrawOver(src *Surface, x, y int) {
	clip := Rect{X: x, Y: y, W: src.width, H: src.height}.Intersect(s.Rect())
	if clip.Empty() {
		return
	}
	for row := 0; row < clip.H; row++ {
		si := ((clip.Y - y + row) * src.width * 4) + (clip.X-x)*4
		di := ((clip.Y + row) * s.width * 4) + clip.X*4
		for col := 0; col < clip.W; col++ {
			sp := src.data[si : si+4 : si+4]
			dp := s.data[di : di+4 : di+4]
			sa := uint32(sp[3])
			da := uint32(dp[3])

			// Straight-alpha source-over: both terms scaled by 255 so
			// the division recovers 8-bit components exactly.
			denom := sa*255 + da*(255-sa)
			if denom == 0 {
				dp[0], dp[1], dp[2], dp[3] = 0, 0, 0, 0
			} else {
				for c := 0; c < 3; c++ {
					n := uint32(sp[c])*sa*255 + uint32(dp[c])*da*(255-sa)
					dp[c] = uint8((n + denom/2) / denom)
				}
				dp[3] = uint8((denom + 127) / 255)
			}
			si += 4
			di += 4
		}
	}
}

// At implements the image.Image interface.
func (s *Surface) At(x, y int) color.Color {
	return s.GetPixel(x, y).NRGBA()
}

// ColorModel implements the image.Image interface.
func (s *Surface) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements the image.Image interface.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

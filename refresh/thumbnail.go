package refresh

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/easel"
)

// Thumbnail geometry.
const (
	// ThumbSize is the fixed edge length of a layer thumbnail.
	ThumbSize = 40

	// checkerCell is the edge length of one checkerboard cell.
	checkerCell = 5
)

// Checkerboard colors: the fixed pair every thumbnail uses as its
// transparency background.
var (
	checkerLight = easel.RGB(0xcc, 0xcc, 0xcc)
	checkerDark  = easel.RGB(0x99, 0x99, 0x99)
)

// Thumbnailer renders a layer's content fitted into a box×box surface,
// honoring the layer transform. Layer kinds whose content lives outside
// the core (vector layers, group composites) register one; raster
// layers fall back to a direct scaled blit when none is registered.
// Returning nil means "nothing to draw", leaving a bare checkerboard.
type Thumbnailer interface {
	Thumbnail(l *easel.Layer, box int) *easel.Surface
}

// ThumbnailerFunc adapts a function to the Thumbnailer interface.
type ThumbnailerFunc func(l *easel.Layer, box int) *easel.Surface

// Thumbnail implements Thumbnailer.
func (f ThumbnailerFunc) Thumbnail(l *easel.Layer, box int) *easel.Surface {
	return f(l, box)
}

// Checkerboard returns a size×size surface painted with the alternating
// two-color transparency pattern.
func Checkerboard(size int) *easel.Surface {
	s := easel.NewSurface(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := checkerLight
			if ((x/checkerCell)+(y/checkerCell))%2 == 1 {
				c = checkerDark
			}
			s.SetPixel(x, y, c)
		}
	}
	return s
}

// RenderThumb produces the ThumbSize×ThumbSize thumbnail for a layer: a
// checkerboard background with the layer's content scaled to fit,
// aspect preserved and centered. A registered Thumbnailer is preferred
// because it can honor rotation and scale; otherwise raster content is
// blitted through a plain bilinear scale.
func RenderThumb(l *easel.Layer, custom Thumbnailer) *easel.Surface {
	out := Checkerboard(ThumbSize)

	var content *easel.Surface
	if custom != nil {
		content = custom.Thumbnail(l, ThumbSize)
	}
	if content == nil && l.Surface() != nil {
		content = scaleToFit(l.Surface(), ThumbSize)
	}
	if content != nil {
		x := (ThumbSize - content.Width()) / 2
		y := (ThumbSize - content.Height()) / 2
		out.DrawOver(content, x, y)
	}
	return out
}

// scaleToFit scales src into a box×box bound, preserving aspect ratio.
func scaleToFit(src *easel.Surface, box int) *easel.Surface {
	sw, sh := src.Width(), src.Height()
	if sw <= 0 || sh <= 0 {
		return nil
	}
	scale := float64(box) / float64(sw)
	if s := float64(box) / float64(sh); s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	tw := int(float64(sw) * scale)
	th := int(float64(sh) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	fitted := easel.NewSurface(tw, th)
	copy(fitted.Data(), dst.Pix)
	return fitted
}

package refresh

import (
	"testing"

	"github.com/gogpu/easel"
)

func fillLayer(name string, w, h int, c easel.Color) *easel.Layer {
	l := easel.NewRasterLayer(name, w, h)
	l.Surface().Clear(c)
	return l
}

func TestCheckerboard(t *testing.T) {
	s := Checkerboard(ThumbSize)
	if s.Width() != ThumbSize || s.Height() != ThumbSize {
		t.Fatalf("size = %dx%d, want %dx%d", s.Width(), s.Height(), ThumbSize, ThumbSize)
	}

	tests := []struct {
		x, y int
		want easel.Color
	}{
		{0, 0, checkerLight},
		{checkerCell - 1, checkerCell - 1, checkerLight},
		{checkerCell, 0, checkerDark},
		{0, checkerCell, checkerDark},
		{checkerCell, checkerCell, checkerLight},
		{2 * checkerCell, 0, checkerLight},
		{ThumbSize - 1, ThumbSize - 1, checkerDark},
	}
	for _, tt := range tests {
		if got := s.GetPixel(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderThumbCentersSmallContent(t *testing.T) {
	red := easel.RGB(0xff, 0, 0)
	l := fillLayer("dot", 4, 4, red)

	thumb := RenderThumb(l, nil)
	if thumb.Width() != ThumbSize || thumb.Height() != ThumbSize {
		t.Fatalf("thumb size = %dx%d, want %dx%d", thumb.Width(), thumb.Height(), ThumbSize, ThumbSize)
	}

	// Small content is never upscaled; 4x4 lands centered at (18,18).
	if got := thumb.GetPixel(18, 18); got != red {
		t.Errorf("pixel (18,18) = %v, want %v", got, red)
	}
	if got := thumb.GetPixel(21, 21); got != red {
		t.Errorf("pixel (21,21) = %v, want %v", got, red)
	}
	if got := thumb.GetPixel(17, 17); got == red {
		t.Error("content bled outside its centered box")
	}
	if got := thumb.GetPixel(22, 22); got == red {
		t.Error("content bled outside its centered box")
	}
}

func TestRenderThumbScalesWideContent(t *testing.T) {
	blue := easel.RGB(0, 0, 0xff)
	l := fillLayer("wide", 80, 40, blue)

	thumb := RenderThumb(l, nil)

	// 80x40 fits as 40x20, vertically centered.
	if got := thumb.GetPixel(0, 10); got != blue {
		t.Errorf("pixel (0,10) = %v, want %v", got, blue)
	}
	if got := thumb.GetPixel(39, 29); got != blue {
		t.Errorf("pixel (39,29) = %v, want %v", got, blue)
	}
	if got := thumb.GetPixel(20, 9); got == blue {
		t.Error("content bled above its centered band")
	}
	if got := thumb.GetPixel(20, 30); got == blue {
		t.Error("content bled below its centered band")
	}
}

func TestRenderThumbScalesTallContent(t *testing.T) {
	green := easel.RGB(0, 0xaa, 0)
	l := fillLayer("tall", 10, 80, green)

	thumb := RenderThumb(l, nil)

	// 10x80 fits as 5x40, horizontally centered at x=17.
	if got := thumb.GetPixel(17, 0); got != green {
		t.Errorf("pixel (17,0) = %v, want %v", got, green)
	}
	if got := thumb.GetPixel(21, 39); got != green {
		t.Errorf("pixel (21,39) = %v, want %v", got, green)
	}
	if got := thumb.GetPixel(16, 20); got == green {
		t.Error("content bled left of its centered band")
	}
	if got := thumb.GetPixel(22, 20); got == green {
		t.Error("content bled right of its centered band")
	}
}

func TestRenderThumbVectorLayerBareCheckerboard(t *testing.T) {
	l := easel.NewVectorLayer("shape")
	thumb := RenderThumb(l, nil)
	if !thumb.Equal(Checkerboard(ThumbSize)) {
		t.Error("vector layer without a thumbnailer should stay a bare checkerboard")
	}
}

func TestRenderThumbPrefersCustomThumbnailer(t *testing.T) {
	red := easel.RGB(0xff, 0, 0)
	purple := easel.RGB(0x80, 0, 0x80)
	l := fillLayer("art", 16, 16, red)

	var gotBox int
	custom := ThumbnailerFunc(func(_ *easel.Layer, box int) *easel.Surface {
		gotBox = box
		s := easel.NewSurface(6, 6)
		s.Clear(purple)
		return s
	})

	thumb := RenderThumb(l, custom)
	if gotBox != ThumbSize {
		t.Errorf("thumbnailer box = %d, want %d", gotBox, ThumbSize)
	}
	if got := thumb.GetPixel(20, 20); got != purple {
		t.Errorf("pixel (20,20) = %v, want the custom content %v", got, purple)
	}
}

func TestRenderThumbNilCustomFallsBack(t *testing.T) {
	red := easel.RGB(0xff, 0, 0)
	l := fillLayer("art", 40, 40, red)

	custom := ThumbnailerFunc(func(*easel.Layer, int) *easel.Surface { return nil })
	thumb := RenderThumb(l, custom)
	if got := thumb.GetPixel(20, 20); got != red {
		t.Errorf("pixel (20,20) = %v, want the raster fallback %v", got, red)
	}
}

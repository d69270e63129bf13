package easel

import (
	"math"
	"testing"
)

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"zero", Rect{}, true},
		{"positive", Rect{0, 0, 10, 10}, false},
		{"zero width", Rect{5, 5, 0, 10}, true},
		{"zero height", Rect{5, 5, 10, 0}, true},
		{"negative width", Rect{0, 0, -1, 10}, true},
		{"one pixel", Rect{100, 100, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Empty(); got != tt.want {
				t.Errorf("%+v.Empty() = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"identical", Rect{0, 0, 10, 10}, Rect{0, 0, 10, 10}, Rect{0, 0, 10, 10}},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}},
		{"overlap corner", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, Rect{10, 0, 0, 10}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{20, 20, -10, -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got != tt.want {
				t.Errorf("%+v.Intersect(%+v) = %+v, want %+v", tt.a, tt.b, got, tt.want)
			}
			if got.Empty() != (tt.want.W <= 0 || tt.want.H <= 0) {
				t.Errorf("Empty() disagrees with expected dimensions")
			}
			// Intersection is commutative.
			if rev := tt.b.Intersect(tt.a); rev != got {
				t.Errorf("Intersect not commutative: %+v vs %+v", got, rev)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 5, 5}
	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"top-left corner", 10, 20, true},
		{"interior", 12, 22, true},
		{"bottom-right inside", 14, 24, true},
		{"right edge outside", 15, 22, false},
		{"bottom edge outside", 12, 25, false},
		{"left of rect", 9, 22, false},
		{"above rect", 12, 19, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("%+v.Contains(%d, %d) = %v, want %v", r, tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestBoundsOf(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want Rect
	}{
		{"empty", nil, Rect{}},
		{"single integer point", []Point{Pt(3, 4)}, Rect{3, 4, 0, 0}},
		{"integer quad", []Point{Pt(10, 10), Pt(30, 10), Pt(30, 30), Pt(10, 30)}, Rect{10, 10, 20, 20}},
		{"fractional expands outward", []Point{Pt(1.2, 1.7), Pt(4.3, 5.1)}, Rect{1, 1, 4, 5}},
		{"negative coordinates", []Point{Pt(-2.5, -0.5), Pt(1.5, 1.5)}, Rect{-3, -1, 5, 3}},
		{"unordered points", []Point{Pt(30, 30), Pt(10, 10)}, Rect{10, 10, 20, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundsOf(tt.pts); got != tt.want {
				t.Errorf("BoundsOf(%v) = %+v, want %+v", tt.pts, got, tt.want)
			}
		})
	}
}

func TestPointOps(t *testing.T) {
	p := Pt(3, 4)
	q := Pt(1, 2)

	if got := p.Add(q); got != Pt(4, 6) {
		t.Errorf("Add = %+v, want {4 6}", got)
	}
	if got := p.Sub(q); got != Pt(2, 2) {
		t.Errorf("Sub = %+v, want {2 2}", got)
	}
	if got := p.Mul(2); got != Pt(6, 8) {
		t.Errorf("Mul = %+v, want {6 8}", got)
	}
	if got := Pt(0, 0).Distance(p); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		p    Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, 20), Pt(3, 4), Pt(13, 24)},
		{"scale", Scale(2, 3), Pt(3, 4), Pt(6, 12)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("TransformPoint(%+v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	matrices := []Matrix{
		Identity(),
		Translate(30, 40),
		Scale(2, 0.5),
		Rotate(math.Pi / 6),
		Translate(10, -5).Multiply(Scale(3, 3)).Multiply(Rotate(0.7)),
	}
	pts := []Point{Pt(0, 0), Pt(1, 1), Pt(-7.5, 12.25), Pt(100, -3)}

	for _, m := range matrices {
		inv := m.Invert()
		for _, p := range pts {
			got := inv.TransformPoint(m.TransformPoint(p))
			if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
				t.Errorf("Matrix%+v: inverse round trip of %+v = %+v", m, p, got)
			}
		}
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	// A singular matrix inverts to identity rather than exploding.
	m := Scale(0, 0)
	if got := m.Invert(); !got.IsIdentity() {
		t.Errorf("Scale(0,0).Invert() = %+v, want identity", got)
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate-then-scale differs from scale-then-translate.
	ts := Translate(10, 0).Multiply(Scale(2, 2))
	st := Scale(2, 2).Multiply(Translate(10, 0))

	p := Pt(1, 0)
	if got := ts.TransformPoint(p); got != Pt(12, 0) {
		t.Errorf("Translate*Scale point = %+v, want {12 0}", got)
	}
	if got := st.TransformPoint(p); got != Pt(22, 0) {
		t.Errorf("Scale*Translate point = %+v, want {22 0}", got)
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	if Translate(1, 0).IsIdentity() {
		t.Error("Translate(1,0).IsIdentity() = true")
	}
	if !Scale(1, 1).IsIdentity() {
		t.Error("Scale(1,1).IsIdentity() = false")
	}
}

package ftautohint

import (
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/ftcore/hint"
)

func TestDirection(t *testing.T) {
	cases := []struct {
		dx, dy int32
		want   Direction
	}{
		{10, 0, DirRight},
		{-10, 0, DirLeft},
		{0, 10, DirUp},
		{0, -10, DirDown},
		{0, 0, DirNone},
		{5, 5, DirNone},
		{100, 1, DirRight},
		{1, 100, DirUp},
	}
	for _, c := range cases {
		if got := direction(c.dx, c.dy); got != c.want {
			t.Errorf("direction(%d,%d) = %v, want %v", c.dx, c.dy, got, c.want)
		}
	}
}

// rectOutline builds a simple closed rectangle outline, all points
// on-curve, already expressed in device 26.6 units as if the loader had
// already scaled it (the hinter never sees font units directly).
func rectOutline(x0, y0, x1, y1 fixed.F26Dot6) geom.Outline {
	return geom.Outline{
		Points: []geom.Vector{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		},
		Tags:     []geom.PointTag{geom.TagOnCurve, geom.TagOnCurve, geom.TagOnCurve, geom.TagOnCurve},
		Contours: []int{3},
	}
}

func TestBuildSegmentsRectangle(t *testing.T) {
	o := rectOutline(100, 100, 500, 700)
	a := BuildOutline(&o)
	a.BuildSegments()

	if len(a.HorzEdges) != 2 {
		t.Fatalf("HorzEdges = %d, want 2", len(a.HorzEdges))
	}
	if len(a.VertEdges) != 2 {
		t.Fatalf("VertEdges = %d, want 2", len(a.VertEdges))
	}
	if a.VertEdges[0].Link != a.VertEdges[1] || a.VertEdges[1].Link != a.VertEdges[0] {
		t.Errorf("expected the two vertical edges to link as a stem pair")
	}
}

func TestHintRectangleSnapsToGrid(t *testing.T) {
	globals := NewFaceGlobals(1000, 800, -200)
	h := New(globals)

	// A rectangle whose edges sit slightly off pixel boundaries, scaled as
	// if by a 1:1 (identity 16.16) transform: device units already equal
	// the requested font-unit-ish inputs for this test.
	o := rectOutline(fixed.F26Dot6(103), fixed.F26Dot6(101), fixed.F26Dot6(497), fixed.F26Dot6(699))

	sc := hint.Scale{XScale: 1 << 16, YScale: 1 << 16, XPpem: 12, YPpem: 12}
	if err := h.Hint(&o, sc, nil); err != nil {
		t.Fatalf("Hint: %v", err)
	}

	for i, p := range o.Points {
		if p.X%64 != 0 {
			t.Errorf("point %d X=%d not pixel-aligned", i, p.X)
		}
		if p.Y%64 != 0 {
			t.Errorf("point %d Y=%d not pixel-aligned", i, p.Y)
		}
	}

	// The two vertical edges (x0, x1) must remain a visually distinct
	// stem: hinting must not collapse the rectangle's width to zero.
	if o.Points[0].X == o.Points[1].X {
		t.Errorf("hinting collapsed the rectangle's width")
	}
	if o.Points[0].Y == o.Points[3].Y {
		t.Errorf("hinting collapsed the rectangle's height")
	}
}

func TestHintEmptyOutline(t *testing.T) {
	globals := NewFaceGlobals(1000, 800, -200)
	h := New(globals)
	o := geom.Outline{}
	if err := h.Hint(&o, hint.Scale{XScale: 1 << 16, YScale: 1 << 16}, nil); err != nil {
		t.Fatalf("Hint on empty outline: %v", err)
	}
}

func TestFaceGlobalsRescaleIsCached(t *testing.T) {
	g := NewFaceGlobals(1000, 800, -200)
	sc := Scale{XScale: 1 << 16, YScale: 1 << 16, XPpem: 12, YPpem: 12}
	g.Rescale(sc)
	first := g.Scaled.BlueRefs[BlueCapitalTop]

	g.Rescale(sc) // same scale: must be a no-op, not recompute from mutated state
	if g.Scaled.BlueRefs[BlueCapitalTop] != first {
		t.Errorf("Rescale with an unchanged scale altered BlueRefs")
	}

	g.Rescale(Scale{XScale: 2 << 16, YScale: 2 << 16, XPpem: 24, YPpem: 24})
	if g.Scaled.BlueRefs[BlueCapitalTop] == first {
		t.Errorf("Rescale with a changed scale did not recompute BlueRefs")
	}
}

func TestNearestStandard(t *testing.T) {
	widths := []int32{80, 120}
	if v, ok := nearestStandard(widths, 84, 16); !ok || v != 80 {
		t.Errorf("nearestStandard(84) = %d,%v want 80,true", v, ok)
	}
	if _, ok := nearestStandard(widths, 400, 16); ok {
		t.Errorf("nearestStandard(400) should not match within tolerance 16")
	}
}

package ftautohint

import (
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

func fixed26(v int32) fixed.F26Dot6 { return fixed.F26Dot6(v) }

// Direction classifies the dominant travel direction of a point's
// neighboring segment, spec.md §4.4.2. Ambiguous (near-diagonal) points get
// DirNone and are left to weak interpolation in the grid-fit pass.
type Direction int8

const (
	DirNone Direction = iota
	DirRight
	DirLeft
	DirUp
	DirDown
)

// PointFlags marks per-point classification bits spec.md §4.4.2/§4.4.5 need:
// which points are curve control points (never stem-edge anchors), which
// sit at a local extremum (candidates for synthetic edges), and which have
// already been moved by grid-fitting (Touch) versus left to interpolation.
type PointFlags uint16

const (
	FlagConic PointFlags = 1 << iota
	FlagCubic
	FlagExtremumX
	FlagExtremumY
	FlagTouchX
	FlagTouchY
	FlagWeak
)

func (f PointFlags) Has(b PointFlags) bool { return f&b != 0 }

// Point mirrors spec.md §4.4.2's per-point hint record. The loader hands the
// hinter an outline already scaled to device 26.6 space (FT_MulFix already
// applied), so Orig is that scaled-but-unhinted position and X/Y is the
// hinted position grid-fitting writes; there is no separate font-unit twin
// at this stage (see DESIGN.md "hinter operates post-scale").
type Point struct {
	OX, OY int32 // scaled, unhinted (device 26.6) -- read-only reference
	X, Y   int32 // hinted (device 26.6); starts equal to OX/OY
	Flags  PointFlags
}

// AnalyzedOutline is the working set spec.md §4.4.2-3 builds from one
// glyph's outline: the point array plus the segment/edge arrays derived
// from it, one pair of arrays per axis.
type AnalyzedOutline struct {
	Points   []Point
	Contours []int // last point index (inclusive) of each contour

	HorzSegments []*Segment // dominant motion along X; pos ~ constant Y
	VertSegments []*Segment // dominant motion along Y; pos ~ constant X
	HorzEdges    []*Edge    // coalesced from HorzSegments; Y-axis coordinate
	VertEdges    []*Edge    // coalesced from VertSegments; X-axis coordinate
}

// BuildOutline copies o's (already device-scaled) points into the analysis
// form and flags curve control points and local extrema.
func BuildOutline(o *geom.Outline) *AnalyzedOutline {
	n := len(o.Points)
	a := &AnalyzedOutline{
		Points:   make([]Point, n),
		Contours: append([]int(nil), o.Contours...),
	}
	for i, p := range o.Points {
		var flags PointFlags
		switch o.Tags[i] {
		case geom.TagConicOff:
			flags |= FlagConic
		case geom.TagCubicOff:
			flags |= FlagCubic
		}
		a.Points[i] = Point{OX: int32(p.X), OY: int32(p.Y), X: int32(p.X), Y: int32(p.Y), Flags: flags}
	}
	a.markExtrema()
	return a
}

// markExtrema flags points whose coordinate is a local min/max along an
// axis within its contour: spec.md §4.4.3's "synthetic extremum edges" are
// seeded from these when a disable flag doesn't suppress them.
func (a *AnalyzedOutline) markExtrema() {
	start := 0
	for _, end := range a.Contours {
		n := end - start + 1
		if n < 3 {
			start = end + 1
			continue
		}
		for i := start; i <= end; i++ {
			prev := start + (i-start-1+n)%n
			next := start + (i-start+1)%n
			p, pr, nx := a.Points[i], a.Points[prev], a.Points[next]
			if (p.OX-pr.OX)*(nx.OX-p.OX) < 0 {
				a.Points[i].Flags |= FlagExtremumX
			}
			if (p.OY-pr.OY)*(nx.OY-p.OY) < 0 {
				a.Points[i].Flags |= FlagExtremumY
			}
		}
		start = end + 1
	}
}

// WriteBack copies the hinted X/Y positions into o's point array (26.6
// device units), the final step of Hint.
func (a *AnalyzedOutline) WriteBack(o *geom.Outline) {
	for i := range o.Points {
		o.Points[i].X = fixed26(a.Points[i].X)
		o.Points[i].Y = fixed26(a.Points[i].Y)
	}
}

// Package ftrender implements the §4.3 renderer: outline flattening, the
// cell-based scanline rasterizer, and the LCD subpixel pipeline, driving
// the teacher's internal/rasterizer cell accumulator directly and doing its
// own per-row sweep (raster.go); no scanline/span package is used.
package ftrender

import (
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

// flattenSteps is the fixed subdivision count used to turn a conic or cubic
// bezier segment into a polyline before it reaches the cell rasterizer,
// grounded in the teacher's internal/conv/curve.go fixed-subdivision
// fallback path (approximationMethod: curve_inc) rather than its adaptive
// flatness-recursion path: glyph outlines are small enough that a fixed
// step count costs nothing and keeps the rasterizer's cell output
// deterministic per spec.md §8 property 6.
const flattenSteps = 8

// flattenContour walks one contour of tagged points and returns its
// polyline approximation, starting and ending at the same point. Two
// consecutive off-curve points of the same kind synthesize an implied
// on-curve midpoint between them, the rule spec.md §3 assigns to conic
// (quadratic) runs; Outline.Validate already rejects the cubic analogue
// (more than one consecutive cubic off-curve point without an on-curve
// follower), so a cubic run is always exactly two off-curve points bracketed
// by on-curve anchors.
func flattenContour(pts []geom.Vector, tags []geom.PointTag) []geom.Vector {
	n := len(pts)
	if n == 0 {
		return nil
	}
	idx := func(i int) int { return ((i % n) + n) % n }

	start := 0
	for i, t := range tags {
		if t == geom.TagOnCurve {
			start = i
			break
		}
	}
	cur := pts[start]
	if tags[start] != geom.TagOnCurve {
		// No on-curve point at all: synthesize the start from the first
		// pair of off-curve points.
		cur = midpoint(pts[start], pts[idx(start+1)])
	}
	out := []geom.Vector{cur}

	i := start
	for consumed := 0; consumed < n; {
		j := idx(i + 1)
		switch tags[j] {
		case geom.TagOnCurve:
			out = append(out, pts[j])
			cur = pts[j]
			i = j
			consumed++
		case geom.TagConicOff:
			k := idx(j + 1)
			var end geom.Vector
			step := 2
			if tags[k] == geom.TagConicOff {
				end = midpoint(pts[j], pts[k])
				step = 1
			} else {
				end = pts[k]
			}
			out = append(out, flattenConic(cur, pts[j], end)...)
			cur = end
			i += step
			consumed += step
		case geom.TagCubicOff:
			k := idx(j + 1)
			l := idx(j + 2)
			end := pts[l]
			out = append(out, flattenCubic(cur, pts[j], pts[k], end)...)
			cur = end
			i = l
			consumed += 3
		default:
			consumed++
			i = j
		}
	}
	return out
}

func midpoint(a, b geom.Vector) geom.Vector {
	return geom.Vector{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func flattenConic(p0, p1, p2 geom.Vector) []geom.Vector {
	out := make([]geom.Vector, 0, flattenSteps)
	for s := 1; s <= flattenSteps; s++ {
		t := float64(s) / float64(flattenSteps)
		mt := 1 - t
		x := mt*mt*f64(p0.X) + 2*mt*t*f64(p1.X) + t*t*f64(p2.X)
		y := mt*mt*f64(p0.Y) + 2*mt*t*f64(p1.Y) + t*t*f64(p2.Y)
		out = append(out, vec(x, y))
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 geom.Vector) []geom.Vector {
	out := make([]geom.Vector, 0, flattenSteps)
	for s := 1; s <= flattenSteps; s++ {
		t := float64(s) / float64(flattenSteps)
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		x := a*f64(p0.X) + b*f64(p1.X) + c*f64(p2.X) + d*f64(p3.X)
		y := a*f64(p0.Y) + b*f64(p1.Y) + c*f64(p2.Y) + d*f64(p3.Y)
		out = append(out, vec(x, y))
	}
	return out
}

// f64 widens an F26Dot6 value to float64 without rescaling: the bezier
// interpolation below is linear, so it is done directly in 26.6 units and
// only rounded back to fixed point once, in vec.
func f64(v fixed.F26Dot6) float64 { return float64(v) }

func vec(x, y float64) geom.Vector {
	return geom.Vector{X: fixed.F26Dot6(roundHalfAway(x)), Y: fixed.F26Dot6(roundHalfAway(y))}
}

func roundHalfAway(v float64) int32 {
	if v >= 0 {
		return int32(v + 0.5)
	}
	return -int32(-v + 0.5)
}

// Package geom implements the 2-D primitives shared by every driver and the
// hinter: vectors, the 2x2 transform matrix, bounding boxes, and the
// point/tag/contour outline representation. Matrix.Invert follows the
// cofactor-over-determinant shape used by the teacher's affine transform,
// narrowed from a 2x3 affine map down to a pure 2x2 linear map since glyph
// outlines carry translation separately as a Vector delta.
package geom

import "github.com/foxglyph/ftcore/internal/ftcore/fixed"

// Vector is a 2-D point in subpixel (26.6) units.
type Vector struct {
	X, Y fixed.F26Dot6
}

// Add returns v+w.
func (v Vector) Add(w Vector) Vector { return Vector{v.X + w.X, v.Y + w.Y} }

// Sub returns v-w.
func (v Vector) Sub(w Vector) Vector { return Vector{v.X - w.X, v.Y - w.Y} }

// Matrix is a 2x2 linear transform applied as v' = M*v; coefficients are
// 16.16 fixed point.
type Matrix struct {
	XX, XY, YX, YY fixed.Fixed
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{XX: fixed.FromInt(1), YY: fixed.FromInt(1)}
}

// Transform applies the matrix to v, returning M*v.
func (m Matrix) Transform(v Vector) Vector {
	x := fixed.Fixed(v.X).Mul(m.XX) + fixed.Fixed(v.Y).Mul(m.XY)
	y := fixed.Fixed(v.X).Mul(m.YX) + fixed.Fixed(v.Y).Mul(m.YY)
	return Vector{fixed.F26Dot6(x), fixed.F26Dot6(y)}
}

// Multiply returns m composed with n, i.e. the matrix that applies n then m
// (result = m*n).
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		XX: m.XX.Mul(n.XX) + m.XY.Mul(n.YX),
		XY: m.XX.Mul(n.XY) + m.XY.Mul(n.YY),
		YX: m.YX.Mul(n.XX) + m.YY.Mul(n.YX),
		YY: m.YX.Mul(n.XY) + m.YY.Mul(n.YY),
	}
}

// Invert returns the inverse of m. ok is false when the determinant is zero,
// and also when it is nonzero but truncates to zero once scaled back to
// 16.16 (|det| < 1/65536); such a matrix is reported as not invertible.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := int64(m.XX)*int64(m.YY) - int64(m.XY)*int64(m.YX)
	if det == 0 {
		return Matrix{}, false
	}
	// Scale back from the 32.32 product space to 16.16 coefficients.
	scaledDet := fixed.Fixed(det >> 16)
	if scaledDet == 0 {
		return Matrix{}, false
	}
	inv.XX = m.YY.Div(scaledDet)
	inv.XY = -m.XY.Div(scaledDet)
	inv.YX = -m.YX.Div(scaledDet)
	inv.YY = m.XX.Div(scaledDet)
	return inv, true
}

// BBox is a bounding box, half-open at max per the data model.
type BBox struct {
	XMin, YMin, XMax, YMax fixed.F26Dot6
}

// Union extends b to also cover v.
func (b BBox) Union(v Vector) BBox {
	if v.X < b.XMin {
		b.XMin = v.X
	}
	if v.X > b.XMax {
		b.XMax = v.X
	}
	if v.Y < b.YMin {
		b.YMin = v.Y
	}
	if v.Y > b.YMax {
		b.YMax = v.Y
	}
	return b
}

// Empty returns an inverted box suitable as the seed for a sequence of Union
// calls.
func Empty() BBox {
	const maxV = fixed.F26Dot6(1<<31 - 1)
	return BBox{XMin: maxV, YMin: maxV, XMax: -maxV, YMax: -maxV}
}

// PointTag classifies an outline point.
type PointTag byte

const (
	TagOnCurve PointTag = iota
	TagConicOff
	TagCubicOff
)

// Outline is an ordered sequence of points, a parallel sequence of per-point
// tags, and a sequence of contour end-indices. See Validate for the
// invariants this type must satisfy.
type Outline struct {
	Points   []Vector
	Tags     []PointTag
	Contours []int // end-index (inclusive) of each contour
}

// NPoints returns the number of points in the outline.
func (o *Outline) NPoints() int { return len(o.Points) }

// Validate checks the data-model invariants: contour end-indices strictly
// increasing with the last equal to n_points-1, and no two consecutive
// cubic-off-curve points without a following on-curve point.
func (o *Outline) Validate() error {
	n := len(o.Points)
	if len(o.Tags) != n {
		return errMismatchedTags
	}
	if n == 0 && len(o.Contours) == 0 {
		return nil
	}
	prevEnd := -1
	for i, end := range o.Contours {
		if end <= prevEnd {
			return errNonIncreasingContour
		}
		if i == len(o.Contours)-1 && end != n-1 {
			return errLastContourMismatch
		}
		prevEnd = end
	}
	start := 0
	for _, end := range o.Contours {
		cubicRun := 0
		for i := start; i <= end; i++ {
			switch o.Tags[i] {
			case TagCubicOff:
				cubicRun++
				if cubicRun == 2 && (i == end || o.Tags[i+1] != TagOnCurve) {
					return errConsecutiveCubicOff
				}
			case TagOnCurve, TagConicOff:
				cubicRun = 0
			default:
				return errInvalidTag
			}
		}
		start = end + 1
	}
	return nil
}

// Bounds computes the bounding box of every point in the outline.
func (o *Outline) Bounds() BBox {
	b := Empty()
	for _, p := range o.Points {
		b = b.Union(p)
	}
	return b
}

// Transform applies m to every point of the outline in place.
func (o *Outline) Transform(m Matrix) {
	for i, p := range o.Points {
		o.Points[i] = m.Transform(p)
	}
}

// Translate shifts every point of the outline by delta in place.
func (o *Outline) Translate(delta Vector) {
	for i, p := range o.Points {
		o.Points[i] = p.Add(delta)
	}
}

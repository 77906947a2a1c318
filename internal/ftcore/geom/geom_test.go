package geom

import (
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
)

func TestMatrixInvertIdentity(t *testing.T) {
	inv, ok := Identity().Invert()
	if !ok {
		t.Fatalf("identity must be invertible")
	}
	if inv != Identity() {
		t.Fatalf("inverse of identity = %+v, want identity", inv)
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	m := Matrix{} // all zero, determinant zero
	if _, ok := m.Invert(); ok {
		t.Fatalf("zero matrix must not be invertible")
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Matrix{
		XX: fixed.FromFloat64(2),
		XY: fixed.FromFloat64(0.5),
		YX: fixed.FromFloat64(-0.25),
		YY: fixed.FromFloat64(1.5),
	}
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("expected invertible matrix")
	}
	v := Vector{X: fixed.FromFloat64F26Dot6(10), Y: fixed.FromFloat64F26Dot6(-4)}
	got := inv.Transform(m.Transform(v))
	const tolerance = fixed.F26Dot6(2) // rounding slop across two fixed-point multiplies
	if abs(got.X-v.X) > tolerance || abs(got.Y-v.Y) > tolerance {
		t.Fatalf("round trip = %+v, want approximately %+v", got, v)
	}
}

func abs(f fixed.F26Dot6) fixed.F26Dot6 {
	if f < 0 {
		return -f
	}
	return f
}

func TestOutlineValidateContours(t *testing.T) {
	tests := []struct {
		name    string
		outline Outline
		wantErr bool
	}{
		{
			name: "single triangle",
			outline: Outline{
				Points:   make([]Vector, 3),
				Tags:     []PointTag{TagOnCurve, TagOnCurve, TagOnCurve},
				Contours: []int{2},
			},
		},
		{
			name: "non-increasing contours",
			outline: Outline{
				Points:   make([]Vector, 4),
				Tags:     []PointTag{TagOnCurve, TagOnCurve, TagOnCurve, TagOnCurve},
				Contours: []int{2, 1},
			},
			wantErr: true,
		},
		{
			name: "last contour mismatch",
			outline: Outline{
				Points:   make([]Vector, 4),
				Tags:     []PointTag{TagOnCurve, TagOnCurve, TagOnCurve, TagOnCurve},
				Contours: []int{1},
			},
			wantErr: true,
		},
		{
			name: "consecutive cubic off-curve",
			outline: Outline{
				Points:   make([]Vector, 3),
				Tags:     []PointTag{TagOnCurve, TagCubicOff, TagCubicOff},
				Contours: []int{2},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outline.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBBoxUnion(t *testing.T) {
	b := Empty()
	b = b.Union(Vector{X: fixed.FromF26Dot6Int(1), Y: fixed.FromF26Dot6Int(2)})
	b = b.Union(Vector{X: fixed.FromF26Dot6Int(-3), Y: fixed.FromF26Dot6Int(5)})
	if b.XMin != fixed.FromF26Dot6Int(-3) || b.XMax != fixed.FromF26Dot6Int(1) {
		t.Fatalf("unexpected X bounds: %+v", b)
	}
	if b.YMin != fixed.FromF26Dot6Int(2) || b.YMax != fixed.FromF26Dot6Int(5) {
		t.Fatalf("unexpected Y bounds: %+v", b)
	}
}

// Package ftglyph implements the retained glyph helper objects of spec.md
// §3 "Glyph artifacts": BitmapGlyph, OutlineGlyph, and the Glyph tagged
// union over them, grounded in the teacher's internal/font/glyph.go
// GlyphDataType (a closed bitmap/outline variant already) and
// internal/glyph/glyph_raster_bin.go (a standalone rasterize-to-binary
// helper), generalized here into a copyable, transformable object a caller
// can retain beyond the next face.Load call (spec.md §5: "a caller who
// wants to keep the result beyond the next call copies into a retained
// Glyph").
package ftglyph

import (
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

// Format tags which variant a Glyph holds, mirroring face.Format but scoped
// to the retained-object side of the pipeline.
type Format int

const (
	FormatOutline Format = iota
	FormatBitmap
)

// OutlineGlyph owns an Outline; the advance vector lives on the enclosing
// Glyph. Scalable: it can be transformed without loss (spec.md §3).
type OutlineGlyph struct {
	Outline geom.Outline
}

// BitmapGlyph owns a pixel buffer with pixel-mode, pitch, dimensions, and
// bearing offsets. The pixel buffer is owned and destroyed with the glyph
// (spec.md §3); since Go pixel buffers are GC-managed slices, "destroyed"
// means the last reference is dropped.
type BitmapGlyph struct {
	Bitmap     face.Bitmap
	Left, Top  int
}

// Glyph is the polymorphic container over the two variants (spec.md §3),
// carrying the common advance and format and dispatching copy/transform/
// render through the type switch below rather than a C-style class table,
// per DESIGN.md's "closed set -> tagged union" rule.
type Glyph struct {
	Format  Format
	Advance geom.Vector

	Outline *OutlineGlyph // non-nil iff Format == FormatOutline
	Bitmap  *BitmapGlyph  // non-nil iff Format == FormatBitmap
}

// NewFromSlot copies the slot's current artifact into a retained Glyph,
// the operation spec.md §7 property 7 names "new_glyph_from_slot". Outline
// points and bitmap pixels are deep-copied so the slot's next Load does not
// alias the retained object.
func NewFromSlot(slot *face.GlyphSlot) (*Glyph, error) {
	switch slot.Format {
	case face.FormatOutline:
		o := slot.Outline
		cp := geom.Outline{
			Points:   append([]geom.Vector(nil), o.Points...),
			Tags:     append([]geom.PointTag(nil), o.Tags...),
			Contours: append([]int(nil), o.Contours...),
		}
		return &Glyph{
			Format:  FormatOutline,
			Advance: slot.Advance,
			Outline: &OutlineGlyph{Outline: cp},
		}, nil
	case face.FormatBitmap:
		b := slot.Bitmap
		px := append([]byte(nil), b.Pixels...)
		return &Glyph{
			Format:  FormatBitmap,
			Advance: slot.Advance,
			Bitmap: &BitmapGlyph{
				Bitmap:     face.Bitmap{PixelMode: b.PixelMode, Width: b.Width, Rows: b.Rows, Pitch: b.Pitch, Pixels: px},
				Left:       slot.BitmapLeft,
				Top:        slot.BitmapTop,
			},
		}, nil
	default:
		return nil, ferrors.New("ftglyph", ferrors.CodeInvalidSlotHandle)
	}
}

// Copy returns a deep copy of g, so neither aliases the other's buffers.
func (g *Glyph) Copy() *Glyph {
	switch g.Format {
	case FormatOutline:
		o := g.Outline.Outline
		return &Glyph{
			Format:  FormatOutline,
			Advance: g.Advance,
			Outline: &OutlineGlyph{Outline: geom.Outline{
				Points:   append([]geom.Vector(nil), o.Points...),
				Tags:     append([]geom.PointTag(nil), o.Tags...),
				Contours: append([]int(nil), o.Contours...),
			}},
		}
	case FormatBitmap:
		b := g.Bitmap.Bitmap
		return &Glyph{
			Format:  FormatBitmap,
			Advance: g.Advance,
			Bitmap: &BitmapGlyph{
				Bitmap: face.Bitmap{PixelMode: b.PixelMode, Width: b.Width, Rows: b.Rows, Pitch: b.Pitch, Pixels: append([]byte(nil), b.Pixels...)},
				Left:   g.Bitmap.Left,
				Top:    g.Bitmap.Top,
			},
		}
	default:
		return &Glyph{}
	}
}

// Transform applies m and then delta to an outline glyph in place.
// Transforming a bitmap glyph is lossy and unsupported (spec.md §3:
// "Scalable" is a property of the outline variant only), so it fails with
// CodeInvalidGlyphFormat-equivalent (reusing CodeInvalidArgument, the
// closed code set's nearest fit).
func (g *Glyph) Transform(m geom.Matrix, delta geom.Vector) error {
	if g.Format != FormatOutline {
		return ferrors.New("ftglyph", ferrors.CodeInvalidArgument)
	}
	g.Outline.Outline.Transform(m)
	g.Outline.Outline.Translate(delta)
	g.Advance = m.Transform(g.Advance)
	return nil
}

// GetCBox returns the control box of the glyph: the outline's point
// bounding box for an outline glyph, or the pixel-rectangle bounds for a
// bitmap glyph (origin at bitmap_left/bitmap_top per spec.md §3 bearing
// convention).
func (g *Glyph) GetCBox() geom.BBox {
	switch g.Format {
	case FormatOutline:
		return g.Outline.Outline.Bounds()
	case FormatBitmap:
		b := g.Bitmap.Bitmap
		left := fixed.FromF26Dot6Int(g.Bitmap.Left)
		top := fixed.FromF26Dot6Int(g.Bitmap.Top)
		return geom.BBox{
			XMin: left,
			YMin: top - fixed.FromF26Dot6Int(b.Rows),
			XMax: left + fixed.FromF26Dot6Int(b.Width),
			YMax: top,
		}
	default:
		return geom.BBox{}
	}
}

package face

import "github.com/foxglyph/ftcore/internal/ftcore/geom"

// Format tags the kind of artifact currently held by a GlyphSlot.
type Format int

const (
	FormatNone Format = iota
	FormatOutline
	FormatBitmap
)

// PixelMode enumerates the bitmap pixel layouts spec.md §3 lists.
type PixelMode int

const (
	PixelModeMono PixelMode = iota
	PixelModeGray
	PixelModeLCDRGB
	PixelModeLCDBGR
	PixelModeLCDVRGB
	PixelModeLCDVBGR
)

// Bitmap is the pixel-buffer payload of a rasterized glyph. Pitch is
// signed: negative means top-down storage, matching spec.md §3.
type Bitmap struct {
	PixelMode   PixelMode
	Width, Rows int
	Pitch       int
	Pixels      []byte
}

// GlyphSlot is the working area a face reuses across loads: the last
// loaded outline or bitmap, bitmap bearing offsets, advance, linear
// advance, and metrics (spec.md §3). Re-loading frees the previous
// owned-bitmap buffer; the slot never holds a valid outline and a valid
// bitmap of two different glyphs at once (spec.md §4.5).
type GlyphSlot struct {
	face *Face

	Format Format

	Outline geom.Outline
	Bitmap  Bitmap

	BitmapLeft, BitmapTop int

	Advance       geom.Vector
	LinearAdvance geom.Vector

	ownsBitmap bool
}

func newGlyphSlot(f *Face) *GlyphSlot {
	return &GlyphSlot{face: f}
}

// Reset clears the slot to the "empty" state spec.md §4.5/§7 requires on
// any load failure.
func (g *GlyphSlot) Reset() {
	g.Format = FormatNone
	g.Outline = geom.Outline{}
	g.Bitmap = Bitmap{}
	g.BitmapLeft, g.BitmapTop = 0, 0
	g.Advance = geom.Vector{}
	g.LinearAdvance = geom.Vector{}
	g.ownsBitmap = false
}

// SetOutline installs a freshly produced outline, releasing any
// previously-owned bitmap buffer first.
func (g *GlyphSlot) SetOutline(o geom.Outline, advance geom.Vector) {
	g.releaseBitmap()
	g.Format = FormatOutline
	g.Outline = o
	g.Advance = advance
}

// SetBitmap installs a freshly produced bitmap, transferring ownership of
// pixels into the slot ("own-bitmap" flag, spec.md §4.2).
func (g *GlyphSlot) SetBitmap(b Bitmap, left, top int, advance geom.Vector) {
	g.releaseBitmap()
	g.Format = FormatBitmap
	g.Bitmap = b
	g.BitmapLeft, g.BitmapTop = left, top
	g.Advance = advance
	g.ownsBitmap = true
}

func (g *GlyphSlot) releaseBitmap() {
	if g.ownsBitmap {
		g.Bitmap = Bitmap{}
		g.ownsBitmap = false
	}
}

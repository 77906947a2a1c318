package ftrender

import (
	"github.com/foxglyph/ftcore/internal/basics"
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

// Renderer implements internal/ftcore/loader.Renderer: it accepts a
// font-unit-scaled outline in a GlyphSlot and produces the requested bitmap
// format (gray8 by default, 1-bit when LoadMonochrome is set, tripled-width
// LCD when a target_lcd/_lcd_v flag is set), per spec.md §4.3 steps 1-5.
type Renderer struct {
	// LCDFilter, when non-nil, is invoked once per output row of RGB/BGR
	// triplets (spec.md §4.3: "the rendering contract does NOT require a
	// specific filter, only that when a filter is installed it sees one row
	// of triplets at a time"). DefaultLCDFilter installs the teacher-style
	// fixed-weight low-pass used by FreeType's FIR5 filter.
	LCDFilter LCDFilter
}

// New builds a Renderer with the default LCD filter installed.
func New() *Renderer {
	return &Renderer{LCDFilter: DefaultLCDFilter()}
}

// Supports reports whether r accepts the slot's current format; the
// renderer's sole input format is a scaled outline (spec.md §4.3 step 1
// "validate the slot's format matches the renderer's input format").
func (r *Renderer) Supports(format face.Format, flags driver.LoadFlags) bool {
	return format == face.FormatOutline
}

// Render rasterizes slot.Outline into slot.Bitmap in place, per the
// five-step contract of spec.md §4.3.
func (r *Renderer) Render(slot *face.GlyphSlot, flags driver.LoadFlags) error {
	outline := slot.Outline
	bounds := outline.Bounds()
	if bounds.XMax < bounds.XMin {
		// Empty outline (e.g. space glyph): a 0x0 bitmap with the
		// advance preserved, not an error.
		slot.SetBitmap(face.Bitmap{PixelMode: face.PixelModeGray}, 0, 0, slot.Advance)
		return nil
	}

	width := int(bounds.XMax.Ceil()-bounds.XMin.Floor()) >> 6
	rows := int(bounds.YMax.Ceil()-bounds.YMin.Floor()) >> 6
	if width <= 0 {
		width = 1
	}
	if rows <= 0 {
		rows = 1
	}
	left := int(bounds.XMin.Floor()) >> 6
	top := int(bounds.YMax.Ceil()) >> 6
	originX := -bounds.XMin.Floor()
	originY := -bounds.YMin.Floor()

	switch {
	case flags.Has(driver.LoadTargetLCD):
		return r.renderLCD(slot, outline, width, rows, left, top, originX, originY, false)
	case flags.Has(driver.LoadTargetLCDV):
		return r.renderLCD(slot, outline, width, rows, left, top, originX, originY, true)
	default:
		return r.renderGray(slot, outline, width, rows, left, top, originX, originY, flags.Has(driver.LoadMonochrome))
	}
}

func (r *Renderer) renderGray(slot *face.GlyphSlot, outline geom.Outline, width, rows, left, top int, originX, originY fixed.F26Dot6, mono bool) error {
	ras := NewGlyphRasterizer()
	ras.AddOutline(outline, originX, originY)
	pitch := width
	buf := ras.Sweep(width, rows, pitch, basics.FillNonZero)

	pixelMode := face.PixelModeGray
	if mono {
		buf = packMono(buf, width, rows)
		pitch = (width + 7) / 8
		pixelMode = face.PixelModeMono
	}

	slot.SetBitmap(face.Bitmap{
		PixelMode: pixelMode,
		Width:     width,
		Rows:      rows,
		Pitch:     pitch,
		Pixels:    buf,
	}, left, top, slot.Advance)
	return nil
}

// renderLCD triples the effective resolution along the subpixel-striping
// axis by rendering three coverage passes offset by 1/3 pixel each, then
// interleaves them into RGB (or, for vertical LCD, stacked RGB rows) and
// applies the installed filter one row of triplets at a time (spec.md §4.3
// LCD pipeline).
func (r *Renderer) renderLCD(slot *face.GlyphSlot, outline geom.Outline, width, rows, left, top int, originX, originY fixed.F26Dot6, vertical bool) error {
	const third = fixed.F26Dot6(64 / 3)
	passes := make([][]byte, 3)
	for i := 0; i < 3; i++ {
		ras := NewGlyphRasterizer()
		off := fixed.F26Dot6(i) * third
		if vertical {
			ras.AddOutline(outline, originX, originY+off)
		} else {
			ras.AddOutline(outline, originX+off, originY)
		}
		passes[i] = ras.Sweep(width, rows, width, basics.FillNonZero)
	}

	pixelMode := face.PixelModeLCDRGB
	outWidth, outRows, pitch := width*3, rows, width*3
	if vertical {
		pixelMode = face.PixelModeLCDVRGB
		outWidth, outRows, pitch = width, rows*3, width
	}
	buf := make([]byte, outRows*pitch)

	triplet := make([]byte, 3)
	if !vertical {
		for y := 0; y < rows; y++ {
			for x := 0; x < width; x++ {
				triplet[0], triplet[1], triplet[2] = passes[0][y*width+x], passes[1][y*width+x], passes[2][y*width+x]
				if r.LCDFilter != nil {
					r.LCDFilter(triplet)
				}
				o := y*pitch + x*3
				copy(buf[o:o+3], triplet)
			}
		}
	} else {
		for y := 0; y < rows; y++ {
			for x := 0; x < width; x++ {
				triplet[0], triplet[1], triplet[2] = passes[0][y*width+x], passes[1][y*width+x], passes[2][y*width+x]
				if r.LCDFilter != nil {
					r.LCDFilter(triplet)
				}
				for k := 0; k < 3; k++ {
					o := (y*3+k)*pitch + x
					buf[o] = triplet[k]
				}
			}
		}
	}

	slot.SetBitmap(face.Bitmap{
		PixelMode: pixelMode,
		Width:     outWidth,
		Rows:      outRows,
		Pitch:     pitch,
		Pixels:    buf,
	}, left, top, slot.Advance)
	return nil
}

// packMono thresholds an 8-bit coverage buffer to 1bpp, MSB-first per row,
// spec.md §4.2 "monochrome — rasterize at 1-bit threshold".
func packMono(gray []byte, width, rows int) []byte {
	pitch := (width + 7) / 8
	out := make([]byte, pitch*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < width; x++ {
			if gray[y*width+x] >= 128 {
				out[y*pitch+x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}
	return out
}

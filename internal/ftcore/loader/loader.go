// Package loader composes the face/size/slot lifecycle, the auto-hinter
// capability, and renderer selection into the §4.5 glyph-loading state
// machine:
//
//	START - flags.no_scale? --yes--> LOAD_UNSCALED -> (emit outline, END)
//	  |no
//	  v
//	LOAD_SCALED --> hinting enabled? --no--> RENDER_OR_DONE
//	  |yes
//	  v
//	AUTOHINT --> RENDER_OR_DONE
//
//	RENDER_OR_DONE - flags.render? --no--> END (outline in slot)
//	                       |yes
//	                       v
//	                 SELECT_RENDERER -> RASTERIZE -> END
//
// Every transition fires through the library's debug hook table, mirroring
// the teacher's platform.EventCallback observer pattern adapted to the
// glyph pipeline's own checkpoints (internal/ftcore/diag).
package loader

import (
	"github.com/foxglyph/ftcore/internal/ftcore/diag"
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/ftcore/hint"
)

// Renderer is the capability the loader invokes at RASTERIZE. The concrete
// scanline/LCD pipeline lives in internal/ftrender and is wired in by the
// caller (typically the cache manager or a thin top-level API) by setting
// Loader.Renderer.
type Renderer interface {
	// Supports reports whether this renderer accepts the slot's current
	// format and the requested target flags.
	Supports(format face.Format, flags driver.LoadFlags) bool
	// Render rasterizes slot.Outline into slot.Bitmap in place.
	Render(slot *face.GlyphSlot, flags driver.LoadFlags) error
}

// Loader drives LoadGlyph for one Library. AutoHinter and Renderer may be
// nil; a nil AutoHinter makes auto-hinting a silent no-hint pass-through,
// and a nil Renderer makes LoadRender fail with CodeCannotRenderGlyph.
type Loader struct {
	Lib        *face.Library
	AutoHinter hint.Hinter
	Renderer   Renderer
}

// New builds a Loader bound to lib.
func New(lib *face.Library) *Loader {
	return &Loader{Lib: lib}
}

// LoadGlyph runs the full §4.5 state machine for (f, gindex, flags).
// gindex==0 (.notdef) is never rejected by itself (spec.md §4.2). On any
// failure the slot is reset to the empty state (spec.md §4.5/§7); the slot
// never simultaneously holds a valid outline and bitmap of different
// glyphs.
func (l *Loader) LoadGlyph(f *face.Face, gindex int, flags driver.LoadFlags) error {
	slot := f.Slot()
	l.Lib.Debug.Fire(diag.EventGlyphLoadStart, gindex)

	if gindex < 0 || gindex >= f.NumGlyphs {
		slot.Reset()
		return ferrors.New("loader", ferrors.CodeInvalidGlyphIndex)
	}

	size := f.CurrentSize()
	if size == nil && !flags.Has(driver.LoadNoScale) {
		slot.Reset()
		return ferrors.New("loader", ferrors.CodeInvalidSizeHandle)
	}

	var metrics driver.SizeMetrics
	if size != nil {
		metrics = size.Metrics()
	}

	out, err := f.Driver().LoadGlyph(f.Data(), metrics, gindex, flags)
	if err != nil {
		slot.Reset()
		return err
	}
	l.Lib.Debug.Fire(diag.EventGlyphLoadOutline, gindex)

	if out.EmbeddedBitmap != nil && !flags.Has(driver.LoadNoBitmap) {
		eb := out.EmbeddedBitmap
		slot.SetBitmap(face.Bitmap{
			PixelMode: face.PixelModeGray,
			Width:     eb.Width,
			Rows:      eb.Rows,
			Pitch:     eb.Pitch,
			Pixels:    eb.Pixels,
		}, eb.BitmapLeft, eb.BitmapTop, out.Advance)
		l.Lib.Debug.Fire(diag.EventGlyphLoadDone, gindex)
		return nil
	}

	outline := out.Outline
	if f.HasTransform && !flags.Has(driver.LoadIgnoreTransform) {
		outline.Transform(f.Transform)
	}

	if flags.Has(driver.LoadNoScale) {
		slot.SetOutline(outline, out.Advance)
		l.Lib.Debug.Fire(diag.EventGlyphLoadDone, gindex)
		return nil
	}

	// LOAD_SCALED: most drivers already return device-scaled coordinates
	// (out.IsScaled); otherwise apply the size's scale factors here, the
	// same FT_MulFix(font_unit, x_scale) arithmetic spec.md §4.2 assigns
	// to size creation.
	if !out.IsScaled {
		scaleOutline(&outline, metrics)
	}

	if !flags.Has(driver.LoadNoHinting) {
		useAutohint := flags.Has(driver.LoadForceAutohint) || !driverHints(f.Driver())
		if flags.Has(driver.LoadNoAutohint) {
			useAutohint = false
		}
		sc := hint.Scale{XScale: metrics.XScale, YScale: metrics.YScale, XPpem: metrics.XPpem, YPpem: metrics.YPpem}
		var hinter hint.Hinter
		switch {
		case useAutohint && l.AutoHinter != nil:
			hinter = l.AutoHinter
		case !useAutohint:
			if h, ok := f.Driver().(hint.Hinter); ok {
				hinter = h
			}
		}
		if hinter != nil {
			if err := hinter.Hint(&outline, sc, nil); err != nil {
				slot.Reset()
				return err
			}
			l.Lib.Debug.Fire(diag.EventGlyphHinted, gindex)
		}
	}

	slot.SetOutline(outline, out.Advance)
	slot.LinearAdvance = out.LinearAdvance

	if !flags.Has(driver.LoadRender) {
		l.Lib.Debug.Fire(diag.EventGlyphLoadDone, gindex)
		return nil
	}

	if l.Renderer == nil || !l.Renderer.Supports(face.FormatOutline, flags) {
		slot.Reset()
		return ferrors.New("loader", ferrors.CodeCannotRenderGlyph)
	}
	if err := l.Renderer.Render(slot, flags); err != nil {
		slot.Reset()
		return err
	}
	l.Lib.Debug.Fire(diag.EventGlyphRendered, gindex)
	l.Lib.Debug.Fire(diag.EventGlyphLoadDone, gindex)
	return nil
}

// driverHints reports whether d exposes its own PS-style hint.Hinter
// capability; when it doesn't, hinting always falls through to the
// auto-hinter.
func driverHints(d driver.Driver) bool {
	_, ok := d.(hint.Hinter)
	return ok
}

// scaleOutline maps a font-unit outline into 26.6 device space in place.
func scaleOutline(o *geom.Outline, m driver.SizeMetrics) {
	xs, ys := fixed.Fixed(m.XScale), fixed.Fixed(m.YScale)
	for i, p := range o.Points {
		o.Points[i] = geom.Vector{X: p.X.MulFix(xs), Y: p.Y.MulFix(ys)}
	}
}

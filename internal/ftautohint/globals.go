// Package ftautohint implements the format-independent auto-hinter of
// spec.md §4.4: outline analysis (points -> segments -> edges), blue-zone
// detection, and grid-fitting. It satisfies the internal/ftcore/hint.Hinter
// capability the loader selects into when a driver does not provide its
// own PostScript-style hinting or the caller sets force_autohint.
//
// The segment/edge coalescing-by-coordinate-with-tolerance shape is
// grounded in the teacher's internal/rasterizer/cells_aa.go /
// cell.go cell-merging idiom ("coalesce adjacent same-axis records within a
// tolerance, keep a linked chain per merged record"), applied here to
// hinter segments and edges instead of rasterizer cells, per DESIGN.md.
package ftautohint

import (
	"sort"

	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
)

// MaxWidths/MaxHeights/BlueMax are the fixed table sizes spec.md §4.4.1
// assigns (FT_MAX_WIDTHS / FT_MAX_HEIGHTS equivalents, five blue zones).
const (
	MaxWidths  = 12
	MaxHeights = 12
	BlueMax    = 5
)

// BlueZoneKind indexes the five reference zones spec.md §4.4.1 lists.
type BlueZoneKind int

const (
	BlueCapitalTop BlueZoneKind = iota
	BlueCapitalBottom
	BlueSmallTop
	BlueSmallBottom
	BlueSmallDescender
)

// Twin holds one axis's standard widths/heights and blue zone tables, in
// either font-unit ("design") or subpixel ("scaled") units depending on
// which FaceGlobals field it lives in (spec.md §4.4.1).
type Twin struct {
	Widths    []int32
	Heights   []int32
	BlueRefs  [BlueMax]int32
	BlueShoots [BlueMax]int32
	HasBlue   [BlueMax]bool
}

// FaceGlobals is the per-face metrics snapshot spec.md §4.4.1 describes:
// a design (font-unit) twin and a scaled (subpixel) twin, the latter
// recomputed whenever the size's x_scale/y_scale changes.
type FaceGlobals struct {
	UnitsPerEM int
	Design     Twin
	Scaled     Twin
	scaledFor  Scale
}

// NewFaceGlobals derives a design-units Twin from face metrics using the
// heuristic seeding documented in DESIGN.md (the original derives blue
// zones by scanning reference glyphs like "I H T" / "o n x"; this
// specification's non-goals exclude per-format glyph program execution at
// face-load time beyond what the loader already drives, so the zones below
// are proportional defaults a real driver can override via SetDesign).
func NewFaceGlobals(unitsPerEM, ascender, descender int) *FaceGlobals {
	g := &FaceGlobals{UnitsPerEM: unitsPerEM}
	em := int32(unitsPerEM)
	if em == 0 {
		em = 1000
	}
	capTop := em * 70 / 100
	xHeight := em * 48 / 100
	baseline := int32(0)
	desc := int32(descender)

	g.Design.BlueRefs = [BlueMax]int32{capTop, baseline, xHeight, baseline, desc}
	g.Design.BlueShoots = [BlueMax]int32{capTop + em/100, baseline - em/100, xHeight + em/100, baseline - em/100, desc - em/100}
	g.Design.HasBlue = [BlueMax]bool{true, true, true, true, descender != 0}

	stem := em * 8 / 100
	if stem < 1 {
		stem = 1
	}
	g.Design.Widths = []int32{stem}
	g.Design.Heights = []int32{stem}
	return g
}

// SetDesign overrides the heuristic design-unit blues/widths/heights with
// values a driver computed from real font data (e.g. OS/2 sCapHeight /
// sxHeight, or PostScript StemV/StemH private-dict entries).
func (g *FaceGlobals) SetDesign(widths, heights []int32, refs, shoots [BlueMax]int32, has [BlueMax]bool) {
	g.Design.Widths = append([]int32(nil), widths...)
	g.Design.Heights = append([]int32(nil), heights...)
	g.Design.BlueRefs = refs
	g.Design.BlueShoots = shoots
	g.Design.HasBlue = has
}

// Scale carries the per-size scale factors, matching
// internal/ftcore/hint.Scale so the Hinter can be driven from the loader's
// own value without an import cycle (ftautohint depends on hint's Scale
// shape by field, not by importing the package back).
type Scale struct {
	XScale, YScale int32
	XPpem, YPpem   uint
}

// Rescale recomputes g.Scaled from g.Design for sc, the "recomputed
// whenever x_scale or y_scale changes" rule of spec.md §4.4.1. A no-op if
// sc matches the last scale applied.
func (g *FaceGlobals) Rescale(sc Scale) {
	if g.scaledFor == sc && g.Scaled.Widths != nil {
		return
	}
	g.scaledFor = sc
	xs, ys := fixed.Fixed(sc.XScale), fixed.Fixed(sc.YScale)
	g.Scaled.Widths = scaleList(g.Design.Widths, xs)
	g.Scaled.Heights = scaleList(g.Design.Heights, ys)
	for i := 0; i < BlueMax; i++ {
		g.Scaled.BlueRefs[i] = scaleUnit(g.Design.BlueRefs[i], ys)
		g.Scaled.BlueShoots[i] = scaleUnit(g.Design.BlueShoots[i], ys)
		g.Scaled.HasBlue[i] = g.Design.HasBlue[i]
	}
	sort.Slice(g.Scaled.Widths, func(i, j int) bool { return g.Scaled.Widths[i] < g.Scaled.Widths[j] })
	sort.Slice(g.Scaled.Heights, func(i, j int) bool { return g.Scaled.Heights[i] < g.Scaled.Heights[j] })
}

func scaleList(in []int32, scale fixed.Fixed) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(fixed.F26Dot6(v).MulFix(scale))
	}
	return out
}

func scaleUnit(v int32, scale fixed.Fixed) int32 {
	return int32(fixed.F26Dot6(v).MulFix(scale))
}

// nearestStandard finds the entry of widths closest to w within tolerance
// (spec.md §4.4.5 step 2: "find the nearest standard width within a
// tolerance"); ok is false when nothing qualifies and w should be used as-is.
func nearestStandard(widths []int32, w int32, tolerance int32) (int32, bool) {
	best := int32(-1)
	bestDelta := tolerance + 1
	for _, cand := range widths {
		d := cand - w
		if d < 0 {
			d = -d
		}
		if d < bestDelta {
			bestDelta = d
			best = cand
		}
	}
	if best < 0 {
		return w, false
	}
	return best, true
}

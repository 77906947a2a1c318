package ftrender

import (
	"github.com/foxglyph/ftcore/internal/basics"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/rasterizer"
)

// aaScale/aaShift mirror the teacher's internal/rasterizer AA constants:
// 256 coverage levels, matching gray8 exactly.
const (
	aaShift = basics.PolySubpixelShift*2 + 1 - 8 // 8-bit-target derivation of the teacher's AA shift
	aaScale = 1 << 8
	aaMask  = aaScale - 1
)

// GlyphRasterizer fills a single glyph Outline into an 8-bit coverage
// buffer. It drives the teacher's internal/rasterizer.RasterizerCellsAASimple
// cell accumulator directly (rather than the generic scanline/span renderer
// stack the teacher built on top of it for interactive color blending) and
// re-implements the teacher's sweep/alpha arithmetic against a plain gray8
// byte buffer, since a glyph bitmap needs coverage only, not compositing
// over existing pixels.
type GlyphRasterizer struct {
	cells *rasterizer.RasterizerCellsAASimple
}

// NewGlyphRasterizer builds a rasterizer with the teacher's default cell
// block size (256 cells/block, internal/rasterizer.NewRasterizerCellsAASimple).
func NewGlyphRasterizer() *GlyphRasterizer {
	return &GlyphRasterizer{cells: rasterizer.NewRasterizerCellsAASimple(256)}
}

// subpixel converts an F26Dot6 (1/64 pixel) coordinate into the cell
// accumulator's 1/256-pixel integer subpixel space (basics.PolySubpixelScale).
func subpixel(v fixed.F26Dot6) int {
	return int(v) * (basics.PolySubpixelScale / 64)
}

// AddOutline feeds every contour of o into the cell accumulator, flattening
// conic/cubic runs via flattenContour first. originX/Y shift the outline
// (already in device 26.6 units) so the glyph's ink sits at a non-negative
// cell coordinate, the "translate to bitmap coordinates" step of spec.md
// §4.3.
func (g *GlyphRasterizer) AddOutline(o geom.Outline, originX, originY fixed.F26Dot6) {
	start := 0
	for _, end := range o.Contours {
		pts := o.Points[start : end+1]
		tags := o.Tags[start : end+1]
		poly := flattenContour(pts, tags)
		start = end + 1
		n := len(poly)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a := poly[i]
			b := poly[(i+1)%n]
			ax, ay := subpixel(a.X+originX), subpixel(a.Y+originY)
			bx, by := subpixel(b.X+originX), subpixel(b.Y+originY)
			g.cells.Line(ax, ay, bx, by)
		}
	}
}

// Sweep renders the accumulated cells into a width x rows gray8 buffer with
// the given row pitch (pitch >= width), covering rows [0,rows) top-down,
// where cell row `minY` maps to bitmap row `rows-1-(cellY-minY)` (spec.md
// §4.3: "origin at bottom-left by convention; sign-inverted vertical").
// fillRule selects non-zero or even-odd per the teacher's basics.FillingRule.
func (g *GlyphRasterizer) Sweep(width, rows, pitch int, fillRule basics.FillingRule) []byte {
	g.cells.SortCells()
	buf := make([]byte, rows*pitch)
	minY := g.cells.MinY()
	maxY := g.cells.MaxY()
	for y := minY; y <= maxY; y++ {
		row := rows - 1 - (y - minY)
		if row < 0 || row >= rows {
			continue
		}
		n := g.cells.ScanlineNumCells(uint32(y))
		if n == 0 {
			continue
		}
		cells := g.cells.ScanlineCells(uint32(y))
		cover := 0
		var i uint32
		for i < n {
			c := cells[i]
			x := c.X
			area := c.Area
			cover += c.Cover
			i++
			for i < n && cells[i].X == x {
				area += cells[i].Area
				cover += cells[i].Cover
				i++
			}
			if area != 0 {
				a := calcAlpha(fillRule, (cover<<(basics.PolySubpixelShift+1))-area)
				setPixel(buf, row, x, pitch, width, a)
				x++
			}
			if i < n && cells[i].X > x {
				a := calcAlpha(fillRule, cover<<(basics.PolySubpixelShift+1))
				if a != 0 {
					for px := x; px < cells[i].X; px++ {
						setPixel(buf, row, px, pitch, width, a)
					}
				}
			}
		}
	}
	return buf
}

// Bounds returns the accumulated cell bounding box in subpixel (1/256)
// units, used by the caller to size the output bitmap (spec.md §4.3 step 3
// "predict the output bitmap dimensions from the outline's control box").
func (g *GlyphRasterizer) Bounds() (minX, minY, maxX, maxY int) {
	return g.cells.MinX(), g.cells.MinY(), g.cells.MaxX(), g.cells.MaxY()
}

func calcAlpha(fillRule basics.FillingRule, area int) uint8 {
	cover := area >> (basics.PolySubpixelShift*2 + 1 - 8)
	if cover < 0 {
		cover = -cover
	}
	if fillRule == basics.FillEvenOdd {
		cover &= (aaScale*2 - 1)
		if cover > aaScale {
			cover = aaScale*2 - cover
		}
	}
	if cover > aaMask {
		cover = aaMask
	}
	return uint8(cover)
}

func setPixel(buf []byte, row, x, pitch, width int, a uint8) {
	if x < 0 || x >= width || row < 0 {
		return
	}
	off := row*pitch + x
	if off < 0 || off >= len(buf) {
		return
	}
	if v := int(buf[off]) + int(a); v > 255 {
		buf[off] = 255
	} else {
		buf[off] = byte(v)
	}
}

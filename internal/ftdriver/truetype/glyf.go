package truetype

import (
	"encoding/binary"

	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

// maxCompositeNesting bounds composite-glyph recursion against a maliciously
// self-referential component chain, matching the reference pack's
// table_glyf.go limit.
const maxCompositeNesting = 20

const (
	flagOnCurve      = 0x01
	flagXShort       = 0x02
	flagYShort       = 0x04
	flagRepeat       = 0x08
	flagXSame        = 0x10
	flagYSame        = 0x20
)

const (
	compArgsAreWords      = 1 << 0
	compArgsAreXYValues   = 1 << 1
	compRoundXYToGrid     = 1 << 2
	compWeHaveScale       = 1 << 3
	compMoreComponents    = 1 << 5
	compWeHaveXYScale     = 1 << 6
	compWeHaveTwoByTwo    = 1 << 7
	compWeHaveInstructions = 1 << 8
)

// outlineForGlyph decodes glyph gindex into a font-unit geom.Outline,
// recursively resolving composite components.
func (fd *faceData) outlineForGlyph(gindex int) (geom.Outline, error) {
	return fd.outlineForGlyphDepth(gindex, 0)
}

func (fd *faceData) outlineForGlyphDepth(gindex, depth int) (geom.Outline, error) {
	if depth > maxCompositeNesting {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
	}
	if gindex < 0 || gindex+1 >= len(fd.loca) {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidGlyphIndex)
	}
	start, end := fd.loca[gindex], fd.loca[gindex+1]
	if start == end {
		return geom.Outline{}, nil // empty glyph (e.g. space)
	}
	if int(end) > fd.glyfLen || int(start) > int(end) {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
	}
	data := fd.buf[fd.glyfOff+int(start) : fd.glyfOff+int(end)]
	if len(data) < 10 {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
	}
	numberOfContours := int(int16(binary.BigEndian.Uint16(data)))
	body := data[10:]
	if numberOfContours >= 0 {
		return parseSimpleGlyph(body, numberOfContours)
	}
	return fd.parseCompositeGlyph(body, depth)
}

func parseSimpleGlyph(data []byte, numberOfContours int) (geom.Outline, error) {
	if len(data) < 2*numberOfContours+2 {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
	}
	endPts := make([]int, numberOfContours)
	for i := range endPts {
		endPts[i] = int(binary.BigEndian.Uint16(data[2*i:]))
	}
	data = data[2*numberOfContours:]

	if len(data) < 2 {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
	}
	instrLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < instrLen {
		return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
	}
	data = data[instrLen:]

	if numberOfContours == 0 {
		return geom.Outline{}, nil
	}
	numPoints := endPts[numberOfContours-1] + 1

	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; {
		if len(data) == 0 {
			return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
		}
		f := data[0]
		data = data[1:]
		flags[i] = f
		i++
		if f&flagRepeat != 0 {
			if len(data) == 0 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
			}
			repeat := int(data[0])
			data = data[1:]
			for r := 0; r < repeat && i < numPoints; r++ {
				flags[i] = f
				i++
			}
		}
	}

	xs := make([]int32, numPoints)
	var x int32
	for i := 0; i < numPoints; i++ {
		f := flags[i]
		switch {
		case f&flagXShort != 0:
			if len(data) == 0 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
			}
			d := int32(data[0])
			data = data[1:]
			if f&flagXSame != 0 {
				x += d
			} else {
				x -= d
			}
		case f&flagXSame == 0:
			if len(data) < 2 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
			}
			x += int32(int16(binary.BigEndian.Uint16(data)))
			data = data[2:]
		}
		xs[i] = x
	}

	ys := make([]int32, numPoints)
	var y int32
	for i := 0; i < numPoints; i++ {
		f := flags[i]
		switch {
		case f&flagYShort != 0:
			if len(data) == 0 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
			}
			d := int32(data[0])
			data = data[1:]
			if f&flagYSame != 0 {
				y += d
			} else {
				y -= d
			}
		case f&flagYSame == 0:
			if len(data) < 2 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidOutline)
			}
			y += int32(int16(binary.BigEndian.Uint16(data)))
			data = data[2:]
		}
		ys[i] = y
	}

	out := geom.Outline{
		Points:   make([]geom.Vector, numPoints),
		Tags:     make([]geom.PointTag, numPoints),
		Contours: endPts,
	}
	for i := 0; i < numPoints; i++ {
		out.Points[i] = geom.Vector{X: fixed.F26Dot6(xs[i]), Y: fixed.F26Dot6(ys[i])}
		if flags[i]&flagOnCurve != 0 {
			out.Tags[i] = geom.TagOnCurve
		} else {
			out.Tags[i] = geom.TagConicOff
		}
	}
	return out, nil
}

func (fd *faceData) parseCompositeGlyph(data []byte, depth int) (geom.Outline, error) {
	var out geom.Outline
	for {
		if len(data) < 4 {
			return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
		}
		flags := binary.BigEndian.Uint16(data)
		componentGlyph := int(binary.BigEndian.Uint16(data[2:]))
		data = data[4:]

		var dx, dy fixed.F26Dot6
		anchored := flags&compArgsAreXYValues == 0
		if flags&compArgsAreWords != 0 {
			if len(data) < 4 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
			}
			if !anchored {
				dx = fixed.F26Dot6(int16(binary.BigEndian.Uint16(data)))
				dy = fixed.F26Dot6(int16(binary.BigEndian.Uint16(data[2:])))
			}
			data = data[4:]
		} else {
			if len(data) < 2 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
			}
			if !anchored {
				dx = fixed.F26Dot6(int8(data[0]))
				dy = fixed.F26Dot6(int8(data[1]))
			}
			data = data[2:]
		}

		m := geom.Identity()
		switch {
		case flags&compWeHaveScale != 0:
			if len(data) < 2 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
			}
			s := f2dot14ToFixed(binary.BigEndian.Uint16(data))
			m = geom.Matrix{XX: s, YY: s}
			data = data[2:]
		case flags&compWeHaveXYScale != 0:
			if len(data) < 4 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
			}
			m = geom.Matrix{
				XX: f2dot14ToFixed(binary.BigEndian.Uint16(data)),
				YY: f2dot14ToFixed(binary.BigEndian.Uint16(data[2:])),
			}
			data = data[4:]
		case flags&compWeHaveTwoByTwo != 0:
			if len(data) < 8 {
				return geom.Outline{}, ferrors.New("truetype", ferrors.CodeInvalidComposite)
			}
			m = geom.Matrix{
				XX: f2dot14ToFixed(binary.BigEndian.Uint16(data)),
				XY: f2dot14ToFixed(binary.BigEndian.Uint16(data[2:])),
				YX: f2dot14ToFixed(binary.BigEndian.Uint16(data[4:])),
				YY: f2dot14ToFixed(binary.BigEndian.Uint16(data[6:])),
			}
			data = data[8:]
		default:
			m = geom.Identity()
		}

		component, err := fd.outlineForGlyphDepth(componentGlyph, depth+1)
		if err != nil {
			return geom.Outline{}, err
		}
		component.Transform(m)
		if !anchored {
			component.Translate(geom.Vector{X: dx, Y: dy})
		}
		// Point-matched anchoring (args_are_xy_values clear) is not
		// supported: it requires correlating already-placed points between
		// parent and component, a rarely-emitted path most rasterizers
		// (including this one) treat as a no-op offset.

		base := len(out.Points)
		out.Points = append(out.Points, component.Points...)
		out.Tags = append(out.Tags, component.Tags...)
		for _, c := range component.Contours {
			out.Contours = append(out.Contours, base+c)
		}

		if flags&compMoreComponents == 0 {
			break
		}
	}
	return out, nil
}

func f2dot14ToFixed(v uint16) fixed.Fixed {
	return fixed.FromFloat64(fixed.F2Dot14(v).ToFloat64())
}

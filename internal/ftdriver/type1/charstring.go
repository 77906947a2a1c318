package type1

import (
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

const maxType1Nesting = 10

// t1Interp holds the mutable state of one Type 1 charstring execution.
// Unlike Type 2, Type 1 has no implicit width argument on the first
// stack-clearing operator: the left side bearing and advance width are
// instead set explicitly by hsbw/sbw.
type t1Interp struct {
	stack  []float64
	psArgs []float64 // the OtherSubrs/pop "PostScript stack", callothersubr-fed
	x, y   float64
	sbx    float64
	width  float64
	out    geom.Outline
	open   bool
	subrs  [][]byte
	depth  int
	done   bool
}

func (t *t1Interp) moveTo(dx, dy float64) {
	if t.open {
		t.closeContour()
	}
	t.x += dx
	t.y += dy
	t.out.Points = append(t.out.Points, geom.Vector{X: fixed.F26Dot6(int32(t.x)), Y: fixed.F26Dot6(int32(t.y))})
	t.out.Tags = append(t.out.Tags, geom.TagOnCurve)
	t.open = true
}

func (t *t1Interp) lineTo(dx, dy float64) {
	t.x += dx
	t.y += dy
	t.out.Points = append(t.out.Points, geom.Vector{X: fixed.F26Dot6(int32(t.x)), Y: fixed.F26Dot6(int32(t.y))})
	t.out.Tags = append(t.out.Tags, geom.TagOnCurve)
}

func (t *t1Interp) curveTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	cx1, cy1 := t.x+dx1, t.y+dy1
	cx2, cy2 := cx1+dx2, cy1+dy2
	t.x, t.y = cx2+dx3, cy2+dy3
	t.out.Points = append(t.out.Points,
		geom.Vector{X: fixed.F26Dot6(int32(cx1)), Y: fixed.F26Dot6(int32(cy1))},
		geom.Vector{X: fixed.F26Dot6(int32(cx2)), Y: fixed.F26Dot6(int32(cy2))},
		geom.Vector{X: fixed.F26Dot6(int32(t.x)), Y: fixed.F26Dot6(int32(t.y))},
	)
	t.out.Tags = append(t.out.Tags, geom.TagCubicOff, geom.TagCubicOff, geom.TagOnCurve)
}

func (t *t1Interp) closeContour() {
	t.out.Contours = append(t.out.Contours, len(t.out.Points)-1)
	t.open = false
}

func (t *t1Interp) run(code []byte) error {
	t.depth++
	defer func() { t.depth-- }()
	if t.depth > maxType1Nesting {
		return ferrors.New("type1", ferrors.CodeInvalidOutline)
	}

	i := 0
	for i < len(code) && !t.done {
		b0 := code[i]
		switch {
		case b0 >= 32 && b0 <= 246:
			t.stack = append(t.stack, float64(int(b0)-139))
			i++
			continue
		case b0 >= 247 && b0 <= 250:
			if i+2 > len(code) {
				return ferrors.New("type1", ferrors.CodeInvalidOutline)
			}
			t.stack = append(t.stack, float64((int(b0)-247)*256+int(code[i+1])+108))
			i += 2
			continue
		case b0 >= 251 && b0 <= 254:
			if i+2 > len(code) {
				return ferrors.New("type1", ferrors.CodeInvalidOutline)
			}
			t.stack = append(t.stack, float64(-(int(b0)-251)*256-int(code[i+1])-108))
			i += 2
			continue
		case b0 == 255:
			if i+5 > len(code) {
				return ferrors.New("type1", ferrors.CodeInvalidOutline)
			}
			v := int32(uint32(code[i+1])<<24 | uint32(code[i+2])<<16 | uint32(code[i+3])<<8 | uint32(code[i+4]))
			t.stack = append(t.stack, float64(v))
			i += 5
			continue
		}
		i++

		switch b0 {
		case 1, 3: // hstem, vstem
			t.stack = nil
		case 4: // vmoveto
			if len(t.stack) >= 1 {
				t.moveTo(0, t.stack[len(t.stack)-1])
			}
			t.stack = nil
		case 5: // rlineto
			if len(t.stack) >= 2 {
				t.lineTo(t.stack[0], t.stack[1])
			}
			t.stack = nil
		case 6: // hlineto
			if len(t.stack) >= 1 {
				t.lineTo(t.stack[0], 0)
			}
			t.stack = nil
		case 7: // vlineto
			if len(t.stack) >= 1 {
				t.lineTo(0, t.stack[0])
			}
			t.stack = nil
		case 8: // rrcurveto
			if len(t.stack) >= 6 {
				t.curveTo(t.stack[0], t.stack[1], t.stack[2], t.stack[3], t.stack[4], t.stack[5])
			}
			t.stack = nil
		case 9: // closepath
			if t.open {
				t.closeContour()
			}
			t.stack = nil
		case 10: // callsubr
			if len(t.stack) == 0 {
				return ferrors.New("type1", ferrors.CodeInvalidOutline)
			}
			idx := int(t.stack[len(t.stack)-1])
			t.stack = t.stack[:len(t.stack)-1]
			if idx < 0 || idx >= len(t.subrs) {
				return ferrors.New("type1", ferrors.CodeInvalidOutline)
			}
			if err := t.run(t.subrs[idx]); err != nil {
				return err
			}
		case 11: // return
			return nil
		case 13: // hsbw: sbx wx hsbw
			if len(t.stack) >= 2 {
				t.sbx = t.stack[0]
				t.width = t.stack[1]
				t.x, t.y = t.sbx, 0
			}
			t.stack = nil
		case 14: // endchar
			if t.open {
				t.closeContour()
			}
			t.done = true
		case 21: // rmoveto
			if len(t.stack) >= 2 {
				t.moveTo(t.stack[0], t.stack[1])
			}
			t.stack = nil
		case 22: // hmoveto
			if len(t.stack) >= 1 {
				t.moveTo(t.stack[0], 0)
			}
			t.stack = nil
		case 30: // vhcurveto: dy1 dx2 dy2 dx3
			if len(t.stack) >= 4 {
				t.curveTo(0, t.stack[0], t.stack[1], t.stack[2], t.stack[3], 0)
			}
			t.stack = nil
		case 31: // hvcurveto: dx1 dx2 dy2 dy3
			if len(t.stack) >= 4 {
				t.curveTo(t.stack[0], 0, t.stack[1], t.stack[2], 0, t.stack[3])
			}
			t.stack = nil
		case 12: // escape
			if i >= len(code) {
				return ferrors.New("type1", ferrors.CodeInvalidOutline)
			}
			b1 := code[i]
			i++
			t.runEscape(b1)
		default:
			t.stack = nil
		}
	}
	return nil
}

// runEscape handles the 12 <b1> two-byte operator family: sbw, div, seac,
// vstem3/hstem3 (hint-only, no geometric effect here), and the
// callothersubr/pop OtherSubrs protocol.
func (t *t1Interp) runEscape(b1 byte) {
	switch b1 {
	case 0, 1, 2: // dotsection, vstem3, hstem3: hinting only
		t.stack = nil
	case 6: // seac: accent composition over a base glyph is not resolved by
		// this driver; it would require recursing into another named
		// glyph's charstring mid-interpretation, which the caller (working
		// from a single decoded outline) has no hook for.
		t.stack = nil
	case 7: // sbw: sbx sby wx wy sbw
		if len(t.stack) >= 4 {
			t.sbx = t.stack[0]
			t.width = t.stack[2]
			t.x, t.y = t.stack[0], t.stack[1]
		}
		t.stack = nil
	case 12: // div
		if len(t.stack) >= 2 {
			a, b := t.stack[len(t.stack)-2], t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-2]
			if b != 0 {
				t.stack = append(t.stack, a/b)
			} else {
				t.stack = append(t.stack, 0)
			}
		}
	case 16: // callothersubr: arg1..argn n othersubr# callothersubr
		if len(t.stack) < 2 {
			t.stack = nil
			break
		}
		othersubr := int(t.stack[len(t.stack)-1])
		nArgs := int(t.stack[len(t.stack)-2])
		t.stack = t.stack[:len(t.stack)-2]
		if nArgs < 0 || nArgs > len(t.stack) {
			nArgs = len(t.stack)
		}
		args := t.stack[len(t.stack)-nArgs:]
		t.stack = t.stack[:len(t.stack)-nArgs]
		// Flex (0,1,2) and hint replacement (3) OtherSubrs are approximated
		// by handing back the final x/y (or subr index) callers expect to
		// retrieve via subsequent pop operators, without reconstructing the
		// smoothed flex curve geometry itself: the rmoveto sequence flex
		// wraps already leaves behind ordinary line-straight points.
		switch othersubr {
		case 3:
			t.psArgs = []float64{1}
		case 0:
			t.psArgs = []float64{t.x, t.y}
		default:
			cp := make([]float64, len(args))
			copy(cp, args)
			t.psArgs = cp
		}
	case 17: // pop: retrieve one value pushed by callothersubr
		v := 0.0
		if len(t.psArgs) > 0 {
			v = t.psArgs[len(t.psArgs)-1]
			t.psArgs = t.psArgs[:len(t.psArgs)-1]
		}
		t.stack = append(t.stack, v)
	case 33: // setcurrentpoint
		if len(t.stack) >= 2 {
			t.x, t.y = t.stack[0], t.stack[1]
		}
		t.stack = nil
	default:
		t.stack = nil
	}
}

// outlineForGlyph interprets name's Type 1 charstring into a font-unit
// geom.Outline plus its advance width.
func (fd *faceData) outlineForGlyph(name string) (geom.Outline, float64, error) {
	cs, ok := fd.charstrings[name]
	if !ok {
		return geom.Outline{}, 0, ferrors.New("type1", ferrors.CodeInvalidGlyphIndex)
	}
	t := &t1Interp{subrs: fd.subrs}
	if err := t.run(cs); err != nil {
		return geom.Outline{}, 0, err
	}
	if t.open {
		t.closeContour()
	}
	return t.out, t.width, nil
}

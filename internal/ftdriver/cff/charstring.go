package cff

import (
	"math"

	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

const maxCharstringNesting = 10

// subrBias implements the Type 2 charstring spec's subroutine-index bias,
// which shifts the raw callsubr/callgsubr operand into the subrs array's
// actual index range.
func subrBias(n int) int {
	switch {
	case n < 1240:
		return 107
	case n < 33900:
		return 1131
	default:
		return 32768
	}
}

// t2Interp holds the mutable state of one Type 2 charstring execution:
// the operand stack, current point, outline under construction, and the
// hint-count needed to size hintmask/cntrmask bytes.
type t2Interp struct {
	stack   []float64
	x, y    float64
	out     geom.Outline
	open    bool
	nStems  int
	width   float64
	widthSet bool
	nominalWidthX, defaultWidthX float64
	globalSubrs, localSubrs      [][]byte
	globalBias, localBias        int
	depth                        int
	done                         bool
}

func (t *t2Interp) moveTo(dx, dy float64) {
	if t.open {
		t.closeContour()
	}
	t.x += dx
	t.y += dy
	t.out.Points = append(t.out.Points, geom.Vector{X: fixed.F26Dot6(int32(t.x)), Y: fixed.F26Dot6(int32(t.y))})
	t.out.Tags = append(t.out.Tags, geom.TagOnCurve)
	t.open = true
}

func (t *t2Interp) lineTo(dx, dy float64) {
	t.x += dx
	t.y += dy
	t.out.Points = append(t.out.Points, geom.Vector{X: fixed.F26Dot6(int32(t.x)), Y: fixed.F26Dot6(int32(t.y))})
	t.out.Tags = append(t.out.Tags, geom.TagOnCurve)
}

func (t *t2Interp) curveTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
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

func (t *t2Interp) closeContour() {
	t.out.Contours = append(t.out.Contours, len(t.out.Points)-1)
	t.open = false
}

// takeWidth consumes the optional leading width argument the first
// stack-clearing operator in a charstring may carry, per the Type 2
// spec's "the width, if present, must be the first number on the stack"
// rule: present iff the operator's normal arg count is odd (move ops) or
// even-off-by-one (stem ops) relative to what's actually on the stack.
func (t *t2Interp) takeWidth(nargsExpected int) {
	if t.widthSet {
		return
	}
	t.widthSet = true
	if len(t.stack) > nargsExpected {
		t.width = t.nominalWidthX + t.stack[0]
		t.stack = t.stack[1:]
	} else {
		t.width = t.defaultWidthX
	}
}

// run executes one Type 2 charstring (recursively, for callsubr/callgsubr)
// against t's shared state.
func (t *t2Interp) run(code []byte) error {
	t.depth++
	defer func() { t.depth-- }()
	if t.depth > maxCharstringNesting {
		return ferrors.New("cff", ferrors.CodeInvalidOutline)
	}

	i := 0
	for i < len(code) && !t.done {
		b0 := code[i]
		switch {
		case b0 == 28:
			if i+3 > len(code) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			v := int16(uint16(code[i+1])<<8 | uint16(code[i+2]))
			t.stack = append(t.stack, float64(v))
			i += 3
			continue
		case b0 >= 32 && b0 <= 246:
			t.stack = append(t.stack, float64(int(b0)-139))
			i++
			continue
		case b0 >= 247 && b0 <= 250:
			if i+2 > len(code) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			t.stack = append(t.stack, float64((int(b0)-247)*256+int(code[i+1])+108))
			i += 2
			continue
		case b0 >= 251 && b0 <= 254:
			if i+2 > len(code) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			t.stack = append(t.stack, float64(-(int(b0)-251)*256-int(code[i+1])-108))
			i += 2
			continue
		case b0 == 255:
			if i+5 > len(code) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			v := int32(uint32(code[i+1])<<24 | uint32(code[i+2])<<16 | uint32(code[i+3])<<8 | uint32(code[i+4]))
			t.stack = append(t.stack, float64(v)/65536)
			i += 5
			continue
		}
		i++

		switch b0 {
		case 1, 3, 18, 23: // hstem, vstem, hstemhm, vstemhm
			t.takeWidth(len(t.stack) &^ 1)
			t.nStems += len(t.stack) / 2
			t.stack = nil
		case 19, 20: // hintmask, cntrmask
			t.takeWidth(len(t.stack) &^ 1)
			t.nStems += len(t.stack) / 2
			t.stack = nil
			skip := (t.nStems + 7) / 8
			i += skip
		case 21: // rmoveto
			t.takeWidth(2)
			if len(t.stack) >= 2 {
				t.moveTo(t.stack[0], t.stack[1])
			}
			t.stack = nil
		case 22: // hmoveto
			t.takeWidth(1)
			if len(t.stack) >= 1 {
				t.moveTo(t.stack[0], 0)
			}
			t.stack = nil
		case 4: // vmoveto
			t.takeWidth(1)
			if len(t.stack) >= 1 {
				t.moveTo(0, t.stack[0])
			}
			t.stack = nil
		case 5: // rlineto
			for k := 0; k+1 < len(t.stack); k += 2 {
				t.lineTo(t.stack[k], t.stack[k+1])
			}
			t.stack = nil
		case 6: // hlineto
			horiz := true
			for k := 0; k < len(t.stack); k++ {
				if horiz {
					t.lineTo(t.stack[k], 0)
				} else {
					t.lineTo(0, t.stack[k])
				}
				horiz = !horiz
			}
			t.stack = nil
		case 7: // vlineto
			horiz := false
			for k := 0; k < len(t.stack); k++ {
				if horiz {
					t.lineTo(t.stack[k], 0)
				} else {
					t.lineTo(0, t.stack[k])
				}
				horiz = !horiz
			}
			t.stack = nil
		case 8: // rrcurveto
			for k := 0; k+5 < len(t.stack); k += 6 {
				t.curveTo(t.stack[k], t.stack[k+1], t.stack[k+2], t.stack[k+3], t.stack[k+4], t.stack[k+5])
			}
			t.stack = nil
		case 24: // rcurveline
			k := 0
			for ; k+5 < len(t.stack)-2; k += 6 {
				t.curveTo(t.stack[k], t.stack[k+1], t.stack[k+2], t.stack[k+3], t.stack[k+4], t.stack[k+5])
			}
			if k+1 < len(t.stack) {
				t.lineTo(t.stack[k], t.stack[k+1])
			}
			t.stack = nil
		case 25: // rlinecurve
			k := 0
			for ; k+1 < len(t.stack)-6; k += 2 {
				t.lineTo(t.stack[k], t.stack[k+1])
			}
			if k+5 < len(t.stack) {
				t.curveTo(t.stack[k], t.stack[k+1], t.stack[k+2], t.stack[k+3], t.stack[k+4], t.stack[k+5])
			}
			t.stack = nil
		case 26: // vvcurveto
			k := 0
			dx1 := 0.0
			if len(t.stack)%4 == 1 {
				dx1 = t.stack[0]
				k = 1
			}
			first := true
			for ; k+3 < len(t.stack); k += 4 {
				d1 := 0.0
				if first {
					d1 = dx1
					first = false
				}
				t.curveTo(d1, t.stack[k], t.stack[k+1], t.stack[k+2], 0, t.stack[k+3])
			}
			t.stack = nil
		case 27: // hhcurveto
			k := 0
			dy1 := 0.0
			if len(t.stack)%4 == 1 {
				dy1 = t.stack[0]
				k = 1
			}
			first := true
			for ; k+3 < len(t.stack); k += 4 {
				d1 := 0.0
				if first {
					d1 = dy1
					first = false
				}
				t.curveTo(t.stack[k], d1, t.stack[k+1], t.stack[k+2], t.stack[k+3], 0)
			}
			t.stack = nil
		case 30, 31: // vhcurveto, hvcurveto
			horiz := b0 == 31
			k := 0
			for k+3 < len(t.stack) {
				last := k+4 >= len(t.stack)-1
				extra := 0.0
				if last && k+4 < len(t.stack) {
					extra = t.stack[k+4]
				}
				if horiz {
					t.curveTo(t.stack[k], 0, t.stack[k+1], t.stack[k+2], extra, t.stack[k+3])
				} else {
					t.curveTo(0, t.stack[k], t.stack[k+1], t.stack[k+2], t.stack[k+3], extra)
				}
				horiz = !horiz
				k += 4
			}
			t.stack = nil
		case 10: // callsubr
			if len(t.stack) == 0 {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			idx := int(t.stack[len(t.stack)-1]) + t.localBias
			t.stack = t.stack[:len(t.stack)-1]
			if idx < 0 || idx >= len(t.localSubrs) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			if err := t.run(t.localSubrs[idx]); err != nil {
				return err
			}
		case 29: // callgsubr
			if len(t.stack) == 0 {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			idx := int(t.stack[len(t.stack)-1]) + t.globalBias
			t.stack = t.stack[:len(t.stack)-1]
			if idx < 0 || idx >= len(t.globalSubrs) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			if err := t.run(t.globalSubrs[idx]); err != nil {
				return err
			}
		case 11: // return
			return nil
		case 14: // endchar
			t.takeWidth(0)
			if t.open {
				t.closeContour()
			}
			t.done = true
		case 12: // escape: flex family
			if i >= len(code) {
				return ferrors.New("cff", ferrors.CodeInvalidOutline)
			}
			b1 := code[i]
			i++
			t.runFlex(b1)
		default:
			t.stack = nil
		}
	}
	return nil
}

// runFlex implements the four flex operators (12 34/35/36/37) as two
// ordinary curveTo calls each; Type 2's flex is purely a compact encoding
// of two curves plus a flex-height hint the rasterizer here does not act
// on, so expanding to curves loses nothing this engine uses.
func (t *t2Interp) runFlex(b1 byte) {
	s := t.stack
	switch b1 {
	case 34: // hflex
		if len(s) < 7 {
			break
		}
		t.curveTo(s[0], 0, s[1], s[2], s[3], 0)
		t.curveTo(s[4], 0, s[5], -s[2], s[6], 0)
	case 35: // flex
		if len(s) < 13 {
			break
		}
		t.curveTo(s[0], s[1], s[2], s[3], s[4], s[5])
		t.curveTo(s[6], s[7], s[8], s[9], s[10], s[11])
	case 36: // hflex1
		if len(s) < 9 {
			break
		}
		t.curveTo(s[0], s[1], s[2], s[3], s[4], 0)
		t.curveTo(s[5], 0, s[6], s[7], s[8], -(s[1] + s[3] + s[7]))
	case 37: // flex1
		if len(s) < 11 {
			break
		}
		dx := s[0] + s[2] + s[4] + s[6] + s[8]
		dy := s[1] + s[3] + s[5] + s[7] + s[9]
		t.curveTo(s[0], s[1], s[2], s[3], s[4], s[5])
		if math.Abs(dx) > math.Abs(dy) {
			t.curveTo(s[6], s[7], s[8], s[9], s[10], -dy)
		} else {
			t.curveTo(s[6], s[7], s[8], s[9], -dx, s[10])
		}
	}
	t.stack = nil
}

// outlineForGlyph interprets gindex's charstring into a font-unit
// geom.Outline plus its advance width. CID-keyed fonts select their local
// subrs through fdSelect/fdLocalSubr; simple fonts use the single
// top-level Private dict.
func (fd *faceData) outlineForGlyph(gindex int) (geom.Outline, float64, error) {
	if gindex < 0 || gindex >= len(fd.charStrings) {
		return geom.Outline{}, 0, ferrors.New("cff", ferrors.CodeInvalidGlyphIndex)
	}
	localSubrs := fd.localSubrs
	nominalW, defaultW := fd.nominalWidthX, fd.defaultWidthX
	if fd.isCID && fd.fdSelect != nil && gindex < len(fd.fdSelect) {
		fdi := fd.fdSelect[gindex]
		if fdi >= 0 && fdi < len(fd.fdLocalSubr) {
			localSubrs = fd.fdLocalSubr[fdi]
			nominalW = fd.fdNominalW[fdi]
			defaultW = fd.fdDefaultW[fdi]
		}
	}

	t := &t2Interp{
		globalSubrs:   fd.globalSubrs,
		localSubrs:    localSubrs,
		globalBias:    subrBias(len(fd.globalSubrs)),
		localBias:     subrBias(len(localSubrs)),
		nominalWidthX: nominalW,
		defaultWidthX: defaultW,
	}
	if err := t.run(fd.charStrings[gindex]); err != nil {
		return geom.Outline{}, 0, err
	}
	if t.open {
		t.closeContour()
	}
	if !t.widthSet {
		t.width = defaultW
	}
	return t.out, t.width, nil
}

package type1

import (
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

// SizeInit allocates a fresh SizeMetrics with no scale set yet.
func (d *Driver) SizeInit(face driver.FaceData) (driver.SizeMetrics, error) {
	return driver.SizeMetrics{}, nil
}

func (d *Driver) SizeDone(face driver.FaceData, m driver.SizeMetrics) {}

// SizeRequest computes 16.16 x/y scale factors against the font's 1000-unit
// em, the same FT_DivFix arithmetic the truetype and cff drivers use.
func (d *Driver) SizeRequest(face driver.FaceData, m *driver.SizeMetrics, req driver.SizeRequest) error {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return ferrors.New("type1", ferrors.CodeInvalidFaceHandle)
	}
	upem := fd.unitsPerEM

	switch req.Kind {
	case driver.SizeRequestNominal:
		if req.PixelWidth == 0 || req.PixelHeight == 0 {
			return ferrors.New("type1", ferrors.CodeInvalidPixelSize)
		}
		m.XScale = scaleFromPixels26Dot6(int64(req.PixelWidth)<<6, upem)
		m.YScale = scaleFromPixels26Dot6(int64(req.PixelHeight)<<6, upem)
		m.XPpem, m.YPpem = req.PixelWidth, req.PixelHeight
	case driver.SizeRequestCharSize:
		hres, vres := req.HorizResolution, req.VertResolution
		if hres == 0 {
			hres = 72
		}
		if vres == 0 {
			vres = 72
		}
		xPixels26 := int64(req.CharWidth) * int64(hres) / 72
		yPixels26 := int64(req.CharHeight) * int64(vres) / 72
		if req.CharWidth == 0 {
			xPixels26 = yPixels26
		}
		if req.CharHeight == 0 {
			yPixels26 = xPixels26
		}
		m.XScale = scaleFromPixels26Dot6(xPixels26, upem)
		m.YScale = scaleFromPixels26Dot6(yPixels26, upem)
		m.XPpem = uint(xPixels26 >> 6)
		m.YPpem = uint(yPixels26 >> 6)
	case driver.SizeRequestCustom:
		m.XScale, m.YScale = req.XScale, req.YScale
		m.XPpem = uint(fixed.Fixed(req.XScale).Mul(fixed.FromInt(upem)).Round().ToFloat64())
		m.YPpem = uint(fixed.Fixed(req.YScale).Mul(fixed.FromInt(upem)).Round().ToFloat64())
	default:
		return ferrors.New("type1", ferrors.CodeInvalidArgument)
	}
	return nil
}

func scaleFromPixels26Dot6(pixels26_6 int64, unitsPerEM int) int32 {
	if unitsPerEM == 0 {
		return 0
	}
	return int32((pixels26_6 << 16) / int64(unitsPerEM))
}

func (d *Driver) SlotInit(face driver.FaceData) error { return nil }
func (d *Driver) SlotDone(face driver.FaceData)       {}

// LoadGlyph interprets gindex's Type 1 charstring into an unscaled
// (font-unit) cubic-and-line outline plus its hsbw/sbw-derived advance
// width.
func (d *Driver) LoadGlyph(face driver.FaceData, m driver.SizeMetrics, gindex int, flags driver.LoadFlags) (driver.GlyphOutput, error) {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return driver.GlyphOutput{}, ferrors.New("type1", ferrors.CodeInvalidFaceHandle)
	}
	if gindex < 0 || gindex >= len(fd.names) {
		return driver.GlyphOutput{}, ferrors.New("type1", ferrors.CodeInvalidGlyphIndex)
	}

	outline, width, err := fd.outlineForGlyph(fd.names[gindex])
	if err != nil {
		return driver.GlyphOutput{}, err
	}
	if err := outline.Validate(); err != nil {
		return driver.GlyphOutput{}, ferrors.Newf("type1", ferrors.CodeInvalidOutline, "%v", err)
	}

	adv := geom.Vector{X: fixed.F26Dot6(int32(width))}
	linear := adv
	if !flags.Has(driver.LoadNoScale) {
		xs := fixed.Fixed(m.XScale)
		adv = geom.Vector{X: adv.X.MulFix(xs)}
	}

	return driver.GlyphOutput{
		Outline:       outline,
		Advance:       adv,
		LinearAdvance: linear,
		IsScaled:      false,
	}, nil
}

// GetCharIndex maps a character code to a glyph index through the custom
// Encoding array scanned at FaceInit, then to a glyph index through the
// name table. Codes left unmapped (including any font declaring the
// predefined StandardEncoding, which this driver does not resolve) return
// .notdef.
func (d *Driver) GetCharIndex(face driver.FaceData, code uint32) (int, error) {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return 0, ferrors.New("type1", ferrors.CodeInvalidFaceHandle)
	}
	if code > 255 {
		return 0, nil
	}
	name := fd.encoding[code]
	if name == "" {
		return 0, nil
	}
	gid, ok := fd.nameToGID[name]
	if !ok {
		return 0, nil
	}
	return gid, nil
}

var _ driver.CharIndexer = (*Driver)(nil)

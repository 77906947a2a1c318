package cff

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
// em, the same FT_DivFix arithmetic the truetype driver uses against its
// own units_per_EM.
func (d *Driver) SizeRequest(face driver.FaceData, m *driver.SizeMetrics, req driver.SizeRequest) error {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return ferrors.New("cff", ferrors.CodeInvalidFaceHandle)
	}
	upem := fd.unitsPerEM

	switch req.Kind {
	case driver.SizeRequestNominal:
		if req.PixelWidth == 0 || req.PixelHeight == 0 {
			return ferrors.New("cff", ferrors.CodeInvalidPixelSize)
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
		return ferrors.New("cff", ferrors.CodeInvalidArgument)
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

// LoadGlyph interprets gindex's Type 2 charstring into an unscaled
// (font-unit) cubic outline plus its charstring-derived advance width.
func (d *Driver) LoadGlyph(face driver.FaceData, m driver.SizeMetrics, gindex int, flags driver.LoadFlags) (driver.GlyphOutput, error) {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return driver.GlyphOutput{}, ferrors.New("cff", ferrors.CodeInvalidFaceHandle)
	}

	outline, width, err := fd.outlineForGlyph(gindex)
	if err != nil {
		return driver.GlyphOutput{}, err
	}
	if err := outline.Validate(); err != nil {
		return driver.GlyphOutput{}, ferrors.Newf("cff", ferrors.CodeInvalidOutline, "%v", err)
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

// GetCharIndex maps a character code to a glyph index through the active
// encoding. Only codes in the one-byte range used by CFF simple-font
// encodings are resolvable; codes above 255 always return .notdef, since
// CFF's native character-to-glyph mapping is single-byte (Unicode cmap
// lookups for CFF-flavored sfnts are instead handled by the wrapping
// sfnt's own 'cmap' table, outside this driver's scope).
func (d *Driver) GetCharIndex(face driver.FaceData, code uint32) (int, error) {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return 0, ferrors.New("cff", ferrors.CodeInvalidFaceHandle)
	}
	if code > 255 || fd.isCID {
		return 0, nil
	}
	return fd.encoding[code], nil
}

var _ driver.CharIndexer = (*Driver)(nil)

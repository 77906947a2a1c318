package truetype

import (
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

// Driver is the glyf-flavored sfnt format module (spec.md §6), registered
// under the name "truetype".
type Driver struct{}

// New returns a ready-to-register TrueType driver.
func New() *Driver { return &Driver{} }

var (
	_ driver.Driver       = (*Driver)(nil)
	_ driver.CharIndexer  = (*Driver)(nil)
)

// SizeInit allocates a fresh SizeMetrics with no scale set yet.
func (d *Driver) SizeInit(face driver.FaceData) (driver.SizeMetrics, error) {
	return driver.SizeMetrics{}, nil
}

// SizeDone is a no-op: SizeMetrics carries no driver-owned resources.
func (d *Driver) SizeDone(face driver.FaceData, m driver.SizeMetrics) {}

// SizeRequest computes the 16.16 x/y scale factors for req against the
// face's units_per_EM, the FT_Request_Metrics arithmetic spec.md §4.2
// assigns to size creation.
func (d *Driver) SizeRequest(face driver.FaceData, m *driver.SizeMetrics, req driver.SizeRequest) error {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return ferrors.New("truetype", ferrors.CodeInvalidFaceHandle)
	}
	upem := fd.unitsPerEM

	switch req.Kind {
	case driver.SizeRequestNominal:
		if req.PixelWidth == 0 || req.PixelHeight == 0 {
			return ferrors.New("truetype", ferrors.CodeInvalidPixelSize)
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
		return ferrors.New("truetype", ferrors.CodeInvalidArgument)
	}
	return nil
}

// scaleFromPixels26Dot6 computes FT_DivFix(pixels26_6, units_per_EM): the
// 16.16 scale that maps a raw font-unit coordinate (stored unshifted in an
// F26Dot6) into 26.6 device space via F26Dot6.MulFix.
func scaleFromPixels26Dot6(pixels26_6 int64, unitsPerEM int) int32 {
	if unitsPerEM == 0 {
		return 0
	}
	v := (pixels26_6 << 16) / int64(unitsPerEM)
	return int32(v)
}

// SlotInit/SlotDone: the slot is engine-owned (internal/ftcore/face); the
// driver has no private per-slot state to allocate.
func (d *Driver) SlotInit(face driver.FaceData) error { return nil }
func (d *Driver) SlotDone(face driver.FaceData)       {}

// LoadGlyph decodes gindex's glyf outline and its hmtx advance, returning an
// unscaled (font-unit) outline for the loader to scale and hint.
func (d *Driver) LoadGlyph(face driver.FaceData, m driver.SizeMetrics, gindex int, flags driver.LoadFlags) (driver.GlyphOutput, error) {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return driver.GlyphOutput{}, ferrors.New("truetype", ferrors.CodeInvalidFaceHandle)
	}
	if gindex < 0 || gindex >= fd.numGlyphs {
		return driver.GlyphOutput{}, ferrors.New("truetype", ferrors.CodeInvalidGlyphIndex)
	}

	outline, err := fd.outlineForGlyph(gindex)
	if err != nil {
		return driver.GlyphOutput{}, err
	}
	if err := outline.Validate(); err != nil {
		return driver.GlyphOutput{}, ferrors.Newf("truetype", ferrors.CodeInvalidOutline, "%v", err)
	}

	advance := 0
	if gindex < len(fd.hmtx) {
		advance = int(fd.hmtx[gindex].advanceWidth)
	}
	adv := geom.Vector{X: fixed.F26Dot6(advance)}
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

// GetCharIndex satisfies driver.CharIndexer by delegating to the active
// cmap subtable selected at FaceInit.
func (d *Driver) GetCharIndex(face driver.FaceData, code uint32) (int, error) {
	fd, ok := face.Private.(*faceData)
	if !ok {
		return 0, ferrors.New("truetype", ferrors.CodeInvalidFaceHandle)
	}
	return fd.CharIndex(code), nil
}

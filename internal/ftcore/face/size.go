package face

import (
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
)

// Size is a scaling context for a face at a chosen resolution (spec.md §3).
// Multiple sizes may exist per face. NewSize creates an additional Size
// without selecting it; SetPixelSizes/SetCharSize create a Size when the
// face has none yet and make it the face's current size, matching
// "implicit creation through the first set_size call".
type Size struct {
	face    *Face
	XPpem   uint
	YPpem   uint
	metrics driver.SizeMetrics
}

// Face returns the Face sz was created on.
func (sz *Size) Face() *Face { return sz.face }

// NewSize creates an explicit additional Size on f without selecting it.
func NewSize(f *Face) (*Size, error) {
	m, err := f.driver.SizeInit(f.data)
	if err != nil {
		return nil, err
	}
	sz := &Size{face: f, metrics: m}
	f.sizes = append(f.sizes, sz)
	return sz, nil
}

// request runs a SizeRequest through the owning face's driver and, on
// success, makes sz the face's current size (the "first set_size" rule),
// recomputing driver-specific metric caches (spec.md §4.2).
func (sz *Size) request(req driver.SizeRequest) error {
	if req.Kind == driver.SizeRequestNominal && (req.PixelWidth == 0 || req.PixelHeight == 0) {
		return ferrors.New("face", ferrors.CodeInvalidPixelSize)
	}
	if err := sz.face.driver.SizeRequest(sz.face.data, &sz.metrics, req); err != nil {
		return err
	}
	sz.XPpem = sz.metrics.XPpem
	sz.YPpem = sz.metrics.YPpem
	sz.face.size = sz
	return nil
}

// SetPixelSizes requests a nominal pixel width/height size on f, creating a
// Size if f has none yet and reusing f's current size otherwise (so callers
// that repeatedly change size on one face do not leak Size objects).
func (f *Face) SetPixelSizes(width, height uint) error {
	sz, err := f.sizeForRequest()
	if err != nil {
		return err
	}
	return sz.request(driver.SizeRequest{Kind: driver.SizeRequestNominal, PixelWidth: width, PixelHeight: height})
}

// SetCharSize requests a char-size-at-dpi size, per spec.md §8 boundary
// behavior 12: a zero size is rejected with CodeInvalidPixelSize.
func (f *Face) SetCharSize(width, height int, hres, vres uint) error {
	if width == 0 && height == 0 {
		return ferrors.New("face", ferrors.CodeInvalidPixelSize)
	}
	sz, err := f.sizeForRequest()
	if err != nil {
		return err
	}
	return sz.request(driver.SizeRequest{
		Kind: driver.SizeRequestCharSize, CharWidth: width, CharHeight: height,
		HorizResolution: hres, VertResolution: vres,
	})
}

// SetCustomSize installs explicit x/y scale overrides bypassing
// units_per_EM-derived scaling.
func (f *Face) SetCustomSize(xScale, yScale int32) error {
	sz, err := f.sizeForRequest()
	if err != nil {
		return err
	}
	return sz.request(driver.SizeRequest{Kind: driver.SizeRequestCustom, XScale: xScale, YScale: yScale})
}

func (f *Face) sizeForRequest() (*Size, error) {
	if f.size != nil {
		return f.size, nil
	}
	return NewSize(f)
}

// Metrics exposes the driver-computed scale factors and ppem.
func (sz *Size) Metrics() driver.SizeMetrics { return sz.metrics }

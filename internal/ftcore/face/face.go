// Package face implements the §4.2 face/size/slot lifecycle: Library is the
// process-wide registry root, Face a long-lived decoded-font handle, Size a
// scaling context, GlyphSlot the working area reused across loads. OpenFace
// resets the stream to offset 0 before each driver probe and stops at the
// first driver that recognizes the format or reports a parse error, never a
// silent scan-abort, per spec.md §4.2.
package face

import (
	"github.com/foxglyph/ftcore/internal/ftcore/diag"
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/ftcore/module"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

// Library is the process-wide registry root: the module list and an
// optional debug hook table. Every entry point takes a *Library explicitly
// (see DESIGN.md "Global state") rather than relying on a package-level
// singleton the way the original's default raster/LCD filter paths do.
type Library struct {
	Registry *module.Registry
	Debug    *diag.Table

	// RasterPool is scratch space reused by render calls on this library;
	// concurrent renders on the same Library are undefined per spec.md §5.
	RasterPool []byte
}

// NewLibrary builds a Library with an empty module registry.
func NewLibrary() *Library {
	return &Library{Registry: module.NewRegistry(), Debug: diag.NewTable()}
}

// CharMapEncoding enumerates the character code spaces spec.md §6 lists.
type CharMapEncoding int

const (
	EncodingUnicode CharMapEncoding = iota
	EncodingAdobeStandard
	EncodingAdobeExpert
	EncodingAdobeCustom
	EncodingSJIS
	EncodingGB2312
	EncodingBig5
	EncodingWansung
	EncodingJohab
)

// CharMap is one character-code-space -> glyph-index mapping a face
// publishes.
type CharMap struct {
	Encoding               CharMapEncoding
	PlatformID, EncodingID uint16
}

// Face is a long-lived object describing one typeface loaded from one
// resource (spec.md §3 "Face, Size, Slot").
type Face struct {
	driverName string
	driver     driver.Driver
	data       driver.FaceData

	NumGlyphs       int
	UnitsPerEM      int
	DesignBBox      geom.BBox
	Ascender        int
	Descender       int
	Height          int
	MaxAdvanceWidth int
	FamilyName      string
	StyleName       string
	FixedPitch      bool

	CharMaps    []CharMap
	ActiveIndex int // index into CharMaps of the currently-selected map, -1 if none

	sizes []*Size
	size  *Size // currently-selected size

	slot *GlyphSlot

	Transform    geom.Matrix
	HasTransform bool
}

// OpenFace scans lib's registered font drivers in registration order,
// resetting s to offset 0 before each probe (spec.md §4.2). The first
// driver to recognize the stream owns the face; a probe returning "unknown
// format" lets scanning continue, a parsing error aborts with that error
// (spec.md §4.1 failure semantics).
func OpenFace(lib *Library, s stream.Stream, faceIndex int) (*Face, error) {
	for _, entry := range lib.Registry.Drivers() {
		d, ok := entry.Interface.(driver.Driver)
		if !ok {
			continue
		}
		data, recognized, err := d.FaceInit(s, faceIndex)
		if err != nil {
			return nil, err
		}
		if !recognized {
			continue
		}
		f := &Face{
			driverName:      entry.Info.Name,
			driver:          d,
			data:            data,
			NumGlyphs:       data.NumGlyphs,
			UnitsPerEM:      data.UnitsPerEM,
			DesignBBox:      data.DesignBBox,
			Ascender:        data.Ascender,
			Descender:       data.Descender,
			Height:          data.Height,
			MaxAdvanceWidth: data.MaxAdvanceWidth,
			FamilyName:      data.FamilyName,
			StyleName:       data.StyleName,
			FixedPitch:      data.FixedPitch,
			ActiveIndex:     -1,
			Transform:       geom.Identity(),
		}
		for _, cm := range data.CharMaps {
			f.CharMaps = append(f.CharMaps, CharMap{
				Encoding:   encodingFromString(cm.Encoding),
				PlatformID: cm.PlatformID,
				EncodingID: cm.EncodingID,
			})
		}
		if len(f.CharMaps) > 0 {
			f.ActiveIndex = 0
		}
		f.slot = newGlyphSlot(f)
		lib.Debug.Fire(diag.EventFaceOpened, f.FamilyName)
		return f, nil
	}
	return nil, ferrors.New("face", ferrors.CodeUnknownFileFormat)
}

func encodingFromString(s string) CharMapEncoding {
	switch s {
	case "adobe_standard":
		return EncodingAdobeStandard
	case "adobe_expert":
		return EncodingAdobeExpert
	case "adobe_custom":
		return EncodingAdobeCustom
	case "sjis":
		return EncodingSJIS
	case "gb2312":
		return EncodingGB2312
	case "big5":
		return EncodingBig5
	case "wansung":
		return EncodingWansung
	case "johab":
		return EncodingJohab
	default:
		return EncodingUnicode
	}
}

// Done releases every size owned by f and the driver's private face data,
// per spec.md §4.1 ("Done-face unregisters every size and releases driver
// data").
func (f *Face) Done() {
	if f.driver == nil {
		f.sizes, f.size, f.slot = nil, nil, nil
		return
	}
	for _, sz := range f.sizes {
		f.driver.SizeDone(f.data, sz.metrics)
	}
	f.sizes = nil
	f.size = nil
	if f.slot != nil {
		f.driver.SlotDone(f.data)
		f.slot = nil
	}
	f.driver.FaceDone(f.data)
}

// Driver exposes the owning driver for callers that need the optional
// Kerner/CharIndexer/FileAttacher/AdvanceGetter extensions.
func (f *Face) Driver() driver.Driver { return f.driver }

// Data exposes the driver-private payload, needed by optional extension
// calls (GetKerning, GetCharIndex, ...) that take driver.FaceData.
func (f *Face) Data() driver.FaceData { return f.data }

// SetCharMap selects idx as the active char-map; -1 clears the selection.
func (f *Face) SetCharMap(idx int) error {
	if idx < -1 || idx >= len(f.CharMaps) {
		return ferrors.New("face", ferrors.CodeInvalidArgument)
	}
	f.ActiveIndex = idx
	return nil
}

// CharIndex maps a character code through the active char-map to a glyph
// index via the driver's optional CharIndexer, falling back to 0 (.notdef)
// when no char-map is active or the driver doesn't implement it.
func (f *Face) CharIndex(code uint32) (int, error) {
	if f.ActiveIndex < 0 {
		return 0, nil
	}
	if ci, ok := f.driver.(driver.CharIndexer); ok {
		return ci.GetCharIndex(f.data, code)
	}
	return 0, nil
}

// Slot returns the face's single active glyph slot.
func (f *Face) Slot() *GlyphSlot { return f.slot }

// CurrentSize returns the face's current size, or nil if none has been
// requested yet.
func (f *Face) CurrentSize() *Size { return f.size }

// Sizes returns every Size object owned by the face.
func (f *Face) Sizes() []*Size { return append([]*Size(nil), f.sizes...) }

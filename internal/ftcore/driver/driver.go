// Package driver defines the uniform contract every font-format module
// exposes to the face/size/slot lifecycle and glyph loader, collapsing the
// teacher's FontEngineInterface/LoadedFaceInterface split
// (internal/font/freetype2) back into the single driver-class contract
// spec.md §4.1 describes, since each driver here owns its own per-format
// parsing directly rather than delegating to an external library.
package driver

import (
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

// FaceIniter wires the parse-time half of the driver contract: given a
// stream positioned at offset 0, either recognize the format and populate a
// Face payload, or silently decline.
type FaceIniter interface {
	// FaceInit probes s for this driver's format. Recognized returns false
	// with a nil error when the stream is simply not this format (scanning
	// continues); a non-nil error means the stream WAS recognized but is
	// malformed (scanning aborts per spec.md §4.1).
	FaceInit(s stream.Stream, faceIndex int) (data FaceData, recognized bool, err error)
}

// FaceData is the driver-populated subset of Face attributes, filled in by
// FaceInit and copied into the engine-owned Face record.
type FaceData struct {
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
	CharMaps        []CharMapData
	// Private is a driver-owned payload handed back on every later call
	// (table offsets, parsed dictionaries, charstring indexes, ...).
	Private any
}

// CharMapData describes one charmap a FaceInit call publishes.
type CharMapData struct {
	Encoding string // "unicode", "adobe_standard", "adobe_expert", "adobe_custom", "sjis", "gb2312", "big5", "wansung", "johab"
	PlatformID, EncodingID uint16
}

// SizeRequest is the caller-supplied sizing request spec.md §4.2 describes:
// exactly one of the three shapes is populated, selected by Kind.
type SizeRequest struct {
	Kind SizeRequestKind

	// Nominal pixel size.
	PixelWidth, PixelHeight uint

	// Char size at a given dpi (26.6 point size).
	CharWidth, CharHeight   int
	HorizResolution, VertResolution uint

	// Custom overrides; when Kind is SizeRequestCustom, both scales are
	// honored verbatim instead of being derived from units_per_EM.
	XScale, YScale int32 // 16.16
}

// SizeRequestKind selects which SizeRequest shape is populated.
type SizeRequestKind int

const (
	SizeRequestNominal SizeRequestKind = iota
	SizeRequestCharSize
	SizeRequestCustom
)

// SizeMetrics is the driver-computed per-size state (e.g. hinted blue
// zones) recomputed on every scale change, opaque to the engine.
type SizeMetrics struct {
	XScale, YScale int32 // 16.16, font units -> 1/64 pixel
	XPpem, YPpem   uint
	Private        any
}

// LoadFlags is the exhaustive bitset of options spec.md §4.2/§6 enumerate.
type LoadFlags uint32

const (
	LoadDefault LoadFlags = 0
	LoadNoScale LoadFlags = 1 << iota
	LoadNoHinting
	LoadRender
	LoadNoBitmap
	LoadVerticalLayout
	LoadForceAutohint
	LoadCropBitmap
	LoadPedantic
	LoadIgnoreGlobalAdvanceWidth
	LoadNoRecurse
	LoadIgnoreTransform
	LoadMonochrome
	LoadLinearDesign
	LoadNoAutohint
	LoadTargetNormal
	LoadTargetLight
	LoadTargetMono
	LoadTargetLCD
	LoadTargetLCDV
)

// Has reports whether every bit in mask is set.
func (f LoadFlags) Has(mask LoadFlags) bool { return f&mask == mask }

// GlyphOutput is what LoadGlyph hands back to the loader: a font-unit
// outline (when LoadNoScale is set) or scaled outline, plus advance and
// optional embedded bitmap data the driver itself decoded (e.g. TrueType
// sbit / CFF embedded bitmaps).
type GlyphOutput struct {
	Outline       geom.Outline
	Advance       geom.Vector
	LinearAdvance geom.Vector
	IsScaled      bool

	EmbeddedBitmap *EmbeddedBitmap // non-nil if the driver produced a bitmap directly
}

// EmbeddedBitmap is a driver-decoded bitmap (an sbit strike, say) handed to
// the loader instead of an outline.
type EmbeddedBitmap struct {
	PixelMode           string
	Width, Rows         int
	Pitch               int
	Pixels              []byte
	BitmapLeft, BitmapTop int
}

// Driver is the uniform capability contract spec.md §4.1 requires of every
// font-format module: init/done of size and slot, load-glyph, plus the
// optional kerning/attach/advances/char-index extensions.
type Driver interface {
	FaceIniter

	FaceDone(face FaceData)

	SizeInit(face FaceData) (SizeMetrics, error)
	SizeDone(face FaceData, m SizeMetrics)
	SizeRequest(face FaceData, m *SizeMetrics, req SizeRequest) error

	SlotInit(face FaceData) error
	SlotDone(face FaceData)

	LoadGlyph(face FaceData, m SizeMetrics, gindex int, flags LoadFlags) (GlyphOutput, error)
}

// KerningPair is the result of an optional GetKerning call.
type KerningPair struct{ X, Y geom.Vector }

// Kerner is the optional kerning extension.
type Kerner interface {
	GetKerning(face FaceData, left, right int) (KerningPair, error)
}

// FileAttacher is the optional metrics-attachment extension (e.g. Type 1
// AFM advance-width overrides).
type FileAttacher interface {
	AttachFile(face FaceData, s stream.Stream) error
}

// AdvanceGetter is the optional bulk-advances extension used by text
// shaping callers that want advances without a full LoadGlyph per index.
type AdvanceGetter interface {
	GetAdvances(face FaceData, m SizeMetrics, first, count int, vertical bool) ([]geom.Vector, error)
}

// CharIndexer is the optional char-code -> glyph-index extension; a driver
// that omits it leaves char-to-glyph mapping to the generic CharMap table
// the engine builds from FaceData.CharMaps.
type CharIndexer interface {
	GetCharIndex(face FaceData, charCode uint32) (int, error)
}

// Package ftengine is the small top-level wiring a caller needs to get a
// fully populated face.Library without hand-assembling the module registry
// itself: every format driver registered, the default rasterizer installed,
// and a per-face loader helper that scopes the auto-hinter to that face's
// own metrics. It owns no parsing logic of its own; it only composes
// internal/ftdriver/*, internal/ftrender, and internal/ftautohint the way a
// real caller (cmd/ftview, a future shaping library) would.
package ftengine

import (
	"os"

	"github.com/foxglyph/ftcore/internal/ftautohint"
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftcore/loader"
	"github.com/foxglyph/ftcore/internal/ftcore/module"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
	"github.com/foxglyph/ftcore/internal/ftdriver/cff"
	"github.com/foxglyph/ftcore/internal/ftdriver/cid"
	"github.com/foxglyph/ftcore/internal/ftdriver/truetype"
	"github.com/foxglyph/ftcore/internal/ftdriver/type1"
	"github.com/foxglyph/ftcore/internal/ftrender"
)

// rendererFormatName is the RendererByFormat key the single installed
// rasterizer registers under; nothing downstream of this package inspects
// it, so one constant name is enough.
const rendererFormatName = "outline"

// NewLibrary builds a face.Library with every format driver registered and
// the default scanline/LCD rasterizer installed as the library's only
// renderer. The cid driver is registered before cff: OpenFace stops at the
// first driver to recognize a stream (face.OpenFace's doc comment), and a
// CID-keyed CFF font is also valid input to the plain cff driver, so cid
// must get the first look or every CID font would silently come back as an
// ordinary (non-CID-aware) CFF face.
func NewLibrary() (*face.Library, error) {
	lib := face.NewLibrary()

	drivers := []struct {
		name string
		drv  driver.Driver
	}{
		{"cid", cid.New()},
		{"truetype", truetype.New()},
		{"cff", cff.New()},
		{"type1", type1.New()},
	}
	for _, d := range drivers {
		info := module.Info{Kind: module.KindFontDriver, Name: d.name, Version: 1}
		if err := lib.Registry.RegisterDriver(info, d.drv); err != nil {
			return nil, err
		}
	}

	r := ftrender.New()
	info := module.Info{Kind: module.KindRenderer, Name: rendererFormatName, Version: 1}
	if err := lib.Registry.RegisterRenderer(info, r); err != nil {
		return nil, err
	}
	return lib, nil
}

// NewLoaderForFace builds a loader.Loader wired with lib's registered
// rasterizer and an auto-hinter scoped to f's own UnitsPerEM/Ascender/
// Descender. A Loader is cheap and stateless beyond its AutoHinter, so
// callers managing several open faces build one per face rather than
// sharing. The cache manager's ManagerLoader does not: it runs every
// cached face through the single Loader it was given.
func NewLoaderForFace(lib *face.Library, f *face.Face) *loader.Loader {
	l := &loader.Loader{Lib: lib}
	if entry, ok := lib.Registry.RendererByFormat(rendererFormatName); ok {
		if r, ok := entry.Interface.(loader.Renderer); ok {
			l.Renderer = r
		}
	}
	globals := ftautohint.NewFaceGlobals(f.UnitsPerEM, f.Ascender, f.Descender)
	l.AutoHinter = ftautohint.New(globals)
	return l
}

// OpenFaceFromFile memory-maps path via stream.OpenDisk and opens a Face
// against lib. The returned close func tears down the face, then the
// stream, then the underlying file handle, in that order (a face must not
// outlive the bytes its driver's FaceData still points into).
func OpenFaceFromFile(lib *face.Library, path string, faceIndex int) (*face.Face, func() error, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil, err
	}
	s := stream.OpenDisk(fh, fi.Size())
	f, err := face.OpenFace(lib, s, faceIndex)
	if err != nil {
		s.Close()
		fh.Close()
		return nil, nil, err
	}
	closeFace := func() error {
		f.Done()
		if err := s.Close(); err != nil {
			fh.Close()
			return err
		}
		return fh.Close()
	}
	return f, closeFace, nil
}

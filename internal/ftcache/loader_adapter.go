package ftcache

import (
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/loader"
	"github.com/foxglyph/ftcore/internal/ftglyph"
)

// ManagerLoader adapts a Manager and the §4.5 loader.Loader into the
// GlyphLoader capability ImageCache and BitmapSetCache need, so a cache
// miss renders through the same pipeline a direct face.Load call would
// use rather than a second copy of it.
type ManagerLoader struct {
	Mgr    *Manager
	Loader *loader.Loader
}

// LoadRetained resolves faceID/pixWidth/pixHeight to a sized face, runs
// LoadGlyph with flags, and copies the filled slot into a retained
// ftglyph.Glyph via ftglyph.NewFromSlot.
func (m *ManagerLoader) LoadRetained(faceID FaceID, pixWidth, pixHeight uint, flags driver.LoadFlags, gindex int) (*ftglyph.Glyph, error) {
	sz, err := m.Mgr.LookupSize(faceID, pixWidth, pixHeight)
	if err != nil {
		return nil, err
	}
	f := sz.Face()
	if err := m.Loader.LoadGlyph(f, gindex, flags); err != nil {
		return nil, err
	}
	return ftglyph.NewFromSlot(f.Slot())
}

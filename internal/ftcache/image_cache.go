package ftcache

import (
	"fmt"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftglyph"
)

// ImageCacheKey names one glyph of one face at one pixel size and load-flag
// combination, spec.md §4.6's "concrete caches" ImageCache key.
type ImageCacheKey struct {
	FaceID              FaceID
	PixWidth, PixHeight uint
	TypeFlags           uint32
	GIndex              int
}

// FaceIDOf satisfies FaceKeyed so ResetFace can sweep this cache.
func (k ImageCacheKey) FaceIDOf() FaceID { return k.FaceID }

// GlyphLoader is the capability ImageCache needs from the loading
// pipeline: render gindex at the requested size/flags into a retained
// ftglyph.Glyph. ManagerLoader (loader_adapter.go) satisfies this shape by
// running internal/ftcore/loader.Loader.
type GlyphLoader interface {
	LoadRetained(faceID FaceID, pixWidth, pixHeight uint, flags driver.LoadFlags, gindex int) (*ftglyph.Glyph, error)
}

// ImageCache is the Manager-registered cache of rendered/scaled glyph
// images (spec.md §4.6), consolidating what upstream FreeType splits into
// FTC_ImageCache and FTC_SBitCache into one cache keyed on (face, size,
// flags, glyph index) — see SPEC_FULL.md's note on ftcimage.h.
type ImageCache struct {
	cache  *Cache
	loader GlyphLoader
}

// NewImageCache registers an ImageCache on mgr.
func NewImageCache(mgr *Manager, loader GlyphLoader) (*ImageCache, error) {
	ic := &ImageCache{loader: loader}
	c, err := mgr.RegisterCache(Class{
		Hash: func(key any) uint32 { return hashImageKey(key.(ImageCacheKey)) },
		Equal: func(a, b any) bool {
			return a.(ImageCacheKey) == b.(ImageCacheKey)
		},
		Init: func(key any, mgr *Manager) (any, error) {
			k := key.(ImageCacheKey)
			return ic.loader.LoadRetained(k.FaceID, k.PixWidth, k.PixHeight, driver.LoadFlags(k.TypeFlags), k.GIndex)
		},
		Weight: func(key, value any) int64 { return glyphWeight(value.(*ftglyph.Glyph)) },
	})
	if err != nil {
		return nil, err
	}
	ic.cache = c
	return ic, nil
}

// Lookup returns the glyph for key, rendering and caching it on a miss.
// pin increments the node's reference count, which exempts it from budget
// eviction; ResetFace on the glyph's own face still removes it.
func (ic *ImageCache) Lookup(key ImageCacheKey, pin bool) (*ftglyph.Glyph, error) {
	v, err := ic.cache.Lookup(key, pin)
	if err != nil {
		return nil, err
	}
	return v.(*ftglyph.Glyph), nil
}

func glyphWeight(g *ftglyph.Glyph) int64 {
	if g == nil {
		return 0
	}
	if g.Bitmap != nil {
		return int64(len(g.Bitmap.Bitmap.Pixels)) + 64
	}
	if g.Outline != nil {
		return int64(len(g.Outline.Outline.Points))*12 + 64
	}
	return 64
}

func hashImageKey(k ImageCacheKey) uint32 {
	h := uint32(2166136261)
	mix := func(v uint32) {
		h ^= v
		h *= 16777619
	}
	mix(uint32(k.PixWidth))
	mix(uint32(k.PixHeight))
	mix(k.TypeFlags)
	mix(uint32(k.GIndex))
	mix(hashFaceID(k.FaceID))
	return h
}

// hashFaceID derives a stable hash from a FaceID's most common concrete
// shapes (string path, or anything with a String() method); anything else
// falls back to a constant bucket, which only costs bucket-chain length,
// never correctness, since Equal still disambiguates.
func hashFaceID(id FaceID) uint32 {
	switch v := id.(type) {
	case string:
		h := uint32(2166136261)
		for i := 0; i < len(v); i++ {
			h ^= uint32(v[i])
			h *= 16777619
		}
		return h
	case fmt.Stringer:
		h := uint32(2166136261)
		s := v.String()
		for i := 0; i < len(s); i++ {
			h ^= uint32(s[i])
			h *= 16777619
		}
		return h
	default:
		return 0x9e3779b9
	}
}

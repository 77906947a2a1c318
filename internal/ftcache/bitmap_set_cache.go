package ftcache

import (
	"github.com/foxglyph/ftcore/internal/array"
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
)

func loadFlagsOf(flags uint32) driver.LoadFlags { return driver.LoadFlags(flags) }

// BitmapSetCacheKey names one face/size/flags page of bitmaps, spec.md
// §4.6's second concrete cache: a lazily-materialized set of small glyph
// bitmaps sharing one allocation page, rather than one node per glyph.
type BitmapSetCacheKey struct {
	FaceID              FaceID
	PixWidth, PixHeight uint
	TypeFlags           uint32
}

// FaceIDOf satisfies FaceKeyed.
func (k BitmapSetCacheKey) FaceIDOf() FaceID { return k.FaceID }

// bitmapPage is BitmapSetCache's per-key value: glyph bitmaps sharing one
// array.BlockAllocator-backed byte pool, mirroring the teacher's
// FmanCachedGlyphs node-array allocation (internal/array.BlockAllocator
// carving fixed-size POD records out of growable blocks) applied here to
// raw bitmap bytes instead of teacher glyph records.
type bitmapPage struct {
	alloc  *array.BlockAllocator
	glyphs map[int][]byte // gindex -> slice into alloc's storage
	pitch  map[int]int
	dims   map[int][2]int // width, rows
}

func newBitmapPage() *bitmapPage {
	return &bitmapPage{
		alloc:  array.NewBlockAllocator(4096),
		glyphs: make(map[int][]byte),
		pitch:  make(map[int]int),
		dims:   make(map[int][2]int),
	}
}

// materialize copies pixels for gindex into the page's block-allocated
// storage. It does not touch the Manager's weight accounting; Bitmap
// re-weighs the page through reweigh after each materialization.
func (p *bitmapPage) materialize(gindex, width, rows, pitch int, pixels []byte) []byte {
	buf := p.alloc.Allocate(len(pixels), 1)
	copy(buf, pixels)
	p.glyphs[gindex] = buf
	p.pitch[gindex] = pitch
	p.dims[gindex] = [2]int{width, rows}
	return buf
}

// BitmapSetCache is the Manager-registered cache of lazily-filled bitmap
// pages.
type BitmapSetCache struct {
	cache  *Cache
	loader GlyphLoader
	mgr    *Manager
}

// NewBitmapSetCache registers a BitmapSetCache on mgr.
func NewBitmapSetCache(mgr *Manager, loader GlyphLoader) (*BitmapSetCache, error) {
	bc := &BitmapSetCache{loader: loader, mgr: mgr}
	c, err := mgr.RegisterCache(Class{
		Hash: func(key any) uint32 { return hashPageKey(key.(BitmapSetCacheKey)) },
		Equal: func(a, b any) bool {
			return a.(BitmapSetCacheKey) == b.(BitmapSetCacheKey)
		},
		Init: func(key any, mgr *Manager) (any, error) {
			return newBitmapPage(), nil
		},
		Weight: func(key, value any) int64 {
			p := value.(*bitmapPage)
			total := int64(64)
			for _, b := range p.glyphs {
				total += int64(len(b))
			}
			return total
		},
	})
	if err != nil {
		return nil, err
	}
	bc.cache = c
	return bc, nil
}

// Bitmap returns the materialized pixel slice for (key, gindex), loading
// and rendering it through the GlyphLoader on first access and
// re-weighting its page in the Manager's budget.
func (bc *BitmapSetCache) Bitmap(key BitmapSetCacheKey, gindex int, flags uint32) ([]byte, int, int, int, error) {
	v, err := bc.cache.Lookup(key, false)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	page := v.(*bitmapPage)
	if b, ok := page.glyphs[gindex]; ok {
		d := page.dims[gindex]
		return b, d[0], d[1], page.pitch[gindex], nil
	}

	g, err := bc.loader.LoadRetained(key.FaceID, key.PixWidth, key.PixHeight, loadFlagsOf(flags), gindex)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if g.Bitmap == nil {
		return nil, 0, 0, 0, nil
	}
	b := g.Bitmap.Bitmap
	buf := page.materialize(gindex, b.Width, b.Rows, b.Pitch, b.Pixels)

	// Find the node backing this page and update its weight now that the
	// page grew, the Manager.adjustWeight hook the design calls for.
	bc.reweigh(key, page)
	return buf, b.Width, b.Rows, b.Pitch, nil
}

func (bc *BitmapSetCache) reweigh(key BitmapSetCacheKey, page *bitmapPage) {
	h := bc.cache.class.Hash(key)
	idx := int(h) % len(bc.cache.buckets)
	for n := bc.cache.buckets[idx]; n != nil; n = n.bucketNext {
		if bc.cache.class.Equal(n.key, key) {
			newWeight := bc.cache.class.Weight(key, page)
			bc.mgr.adjustWeight(n, newWeight)
			bc.mgr.compressIfOverBudget(n)
			return
		}
	}
}

func hashPageKey(k BitmapSetCacheKey) uint32 {
	h := uint32(2166136261)
	mix := func(v uint32) {
		h ^= v
		h *= 16777619
	}
	mix(uint32(k.PixWidth))
	mix(uint32(k.PixHeight))
	mix(k.TypeFlags)
	mix(hashFaceID(k.FaceID))
	return h
}

package ftcache

import (
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/ftglyph"
)

// fakeLoader stands in for the §4.5 loading pipeline in cache tests, so
// ImageCache/BitmapSetCache behavior can be checked without a real font.
type fakeLoader struct {
	calls int
}

func (f *fakeLoader) LoadRetained(faceID FaceID, pixWidth, pixHeight uint, flags driver.LoadFlags, gindex int) (*ftglyph.Glyph, error) {
	f.calls++
	return &ftglyph.Glyph{
		Format: ftglyph.FormatOutline,
		Outline: &ftglyph.OutlineGlyph{Outline: geom.Outline{
			Points:   make([]geom.Vector, gindex+1),
			Contours: []int{gindex},
		}},
	}, nil
}

func TestImageCacheLookupLoadsOnce(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	fl := &fakeLoader{}
	ic, err := NewImageCache(mgr, fl)
	if err != nil {
		t.Fatal(err)
	}
	key := ImageCacheKey{FaceID: "f1", PixWidth: 12, PixHeight: 12, GIndex: 3}
	g1, err := ic.Lookup(key, false)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := ic.Lookup(key, false)
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 {
		t.Fatal("expected the same cached glyph on second lookup")
	}
	if fl.calls != 1 {
		t.Fatalf("expected loader called once, got %d", fl.calls)
	}
}

func TestImageCacheDistinguishesGIndex(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	fl := &fakeLoader{}
	ic, err := NewImageCache(mgr, fl)
	if err != nil {
		t.Fatal(err)
	}
	k1 := ImageCacheKey{FaceID: "f1", PixWidth: 12, PixHeight: 12, GIndex: 1}
	k2 := ImageCacheKey{FaceID: "f1", PixWidth: 12, PixHeight: 12, GIndex: 2}
	if _, err := ic.Lookup(k1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := ic.Lookup(k2, false); err != nil {
		t.Fatal(err)
	}
	if fl.calls != 2 {
		t.Fatalf("expected loader called twice for distinct gindexes, got %d", fl.calls)
	}
}

func TestGlyphWeightVariantsDifferByOutlineSize(t *testing.T) {
	small := &ftglyph.Glyph{Format: ftglyph.FormatOutline, Outline: &ftglyph.OutlineGlyph{Outline: geom.Outline{Points: make([]geom.Vector, 1)}}}
	big := &ftglyph.Glyph{Format: ftglyph.FormatOutline, Outline: &ftglyph.OutlineGlyph{Outline: geom.Outline{Points: make([]geom.Vector, 100)}}}
	if glyphWeight(big) <= glyphWeight(small) {
		t.Fatalf("expected bigger outline to weigh more: %d vs %d", glyphWeight(big), glyphWeight(small))
	}
}

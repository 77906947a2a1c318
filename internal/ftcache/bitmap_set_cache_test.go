package ftcache

import (
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftglyph"
)

type fakeBitmapLoader struct {
	calls int
}

func (f *fakeBitmapLoader) LoadRetained(faceID FaceID, pixWidth, pixHeight uint, flags driver.LoadFlags, gindex int) (*ftglyph.Glyph, error) {
	f.calls++
	width, rows := 4, 4
	pitch := width
	pixels := make([]byte, pitch*rows)
	for i := range pixels {
		pixels[i] = byte(gindex + 1)
	}
	return &ftglyph.Glyph{
		Format: ftglyph.FormatBitmap,
		Bitmap: &ftglyph.BitmapGlyph{
			Bitmap: face.Bitmap{PixelMode: face.PixelModeGray, Width: width, Rows: rows, Pitch: pitch, Pixels: pixels},
		},
	}, nil
}

func TestBitmapSetCacheMaterializesOncePerGlyph(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	fl := &fakeBitmapLoader{}
	bc, err := NewBitmapSetCache(mgr, fl)
	if err != nil {
		t.Fatal(err)
	}
	key := BitmapSetCacheKey{FaceID: "f1", PixWidth: 10, PixHeight: 10}

	b1, w, rows, pitch, err := bc.Bitmap(key, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w != 4 || rows != 4 || pitch != 4 {
		t.Fatalf("unexpected dims: %d %d %d", w, rows, pitch)
	}
	if b1[0] != 6 {
		t.Fatalf("expected pixel value 6 for gindex 5, got %d", b1[0])
	}

	b2, _, _, _, err := bc.Bitmap(key, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if &b1[0] != &b2[0] {
		t.Fatal("expected the same materialized buffer on second access")
	}
	if fl.calls != 1 {
		t.Fatalf("expected loader called once, got %d", fl.calls)
	}

	if _, _, _, _, err := bc.Bitmap(key, 6, 0); err != nil {
		t.Fatal(err)
	}
	if fl.calls != 2 {
		t.Fatalf("expected loader called again for a new glyph in the same page, got %d", fl.calls)
	}
}

func TestBitmapSetCacheReweighsPageAfterMaterialize(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	fl := &fakeBitmapLoader{}
	bc, err := NewBitmapSetCache(mgr, fl)
	if err != nil {
		t.Fatal(err)
	}
	key := BitmapSetCacheKey{FaceID: "f1", PixWidth: 10, PixHeight: 10}
	if _, _, _, _, err := bc.Bitmap(key, 1, 0); err != nil {
		t.Fatal(err)
	}
	if mgr.curWeight <= 64 {
		t.Fatalf("expected weight to grow past the empty-page baseline, got %d", mgr.curWeight)
	}
}

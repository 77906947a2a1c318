// Command ftview is a small SDL2-backed glyph preview tool: it opens a
// font file, loads and renders one glyph through the bounded cache manager
// (internal/ftcache), and blits the resulting bitmap to a window, zoomed to
// a legible size since most preview glyphs are only a few dozen pixels
// across. Flags are parsed by hand with the standard flag package, the
// teacher's cmd/ convention rather than a third-party CLI framework.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/foxglyph/ftcore/internal/ftcache"
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftengine"
	"github.com/foxglyph/ftcore/internal/ftglyph"
)

func main() {
	fontPath := flag.String("font", "", "path to a TrueType/CFF/Type1/CID font file")
	char := flag.String("char", "A", "character to preview (first rune is used)")
	pixelSize := flag.Uint("size", 64, "pixel size to render the glyph at")
	zoom := flag.Int("zoom", 4, "integer window zoom factor over the rendered bitmap")
	flag.Parse()

	if *fontPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ftview -font <path> [-char X] [-size N] [-zoom N]")
		os.Exit(2)
	}
	runes := []rune(*char)
	if len(runes) == 0 {
		log.Fatal("-char must not be empty")
	}
	codepoint := uint32(runes[0])
	if *zoom < 1 {
		*zoom = 1
	}

	lib, err := ftengine.NewLibrary()
	if err != nil {
		log.Fatalf("ftengine.NewLibrary: %v", err)
	}

	f, closeFace, err := ftengine.OpenFaceFromFile(lib, *fontPath, 0)
	if err != nil {
		log.Fatalf("opening %s: %v", *fontPath, err)
	}
	defer closeFace()

	gid, err := f.CharIndex(codepoint)
	if err != nil {
		log.Fatalf("CharIndex(%q): %v", *char, err)
	}
	if gid == 0 {
		log.Printf("no glyph mapped for %q, previewing .notdef", *char)
	}

	// The face is already open, so the manager's requester just hands it
	// back rather than reopening the file a second time; a tool juggling
	// several fonts would instead open them lazily inside the requester.
	requester := func(id ftcache.FaceID) (*face.Face, error) {
		if id == *fontPath {
			return f, nil
		}
		return nil, fmt.Errorf("unknown face id %v", id)
	}
	mgr := ftcache.NewManager(requester, 0, 0, 0)
	ld := ftengine.NewLoaderForFace(lib, f)
	imgCache, err := ftcache.NewImageCache(mgr, &ftcache.ManagerLoader{Mgr: mgr, Loader: ld})
	if err != nil {
		log.Fatalf("NewImageCache: %v", err)
	}

	key := ftcache.ImageCacheKey{
		FaceID:    *fontPath,
		PixWidth:  *pixelSize,
		PixHeight: *pixelSize,
		TypeFlags: uint32(driver.LoadRender),
		GIndex:    gid,
	}
	g, err := imgCache.Lookup(key, false)
	if err != nil {
		log.Fatalf("rendering glyph: %v", err)
	}
	if g.Format != ftglyph.FormatBitmap || g.Bitmap == nil {
		log.Fatal("rendered glyph carries no bitmap (outline-only formats aren't previewable)")
	}

	if err := showBitmap(g.Bitmap.Bitmap, *zoom); err != nil {
		log.Fatalf("display: %v", err)
	}
}

// showBitmap opens an SDL2 window sized to bmp scaled by zoom, expands the
// gray8 coverage buffer into an RGB24 framebuffer (SDL2 has no native
// single-channel pixel format, the same gap the teacher's platform/sdl2
// backend documents for its own Gray8 case), and blits it once, then waits
// for the window to be closed.
func showBitmap(bmp face.Bitmap, zoom int) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl.Init: %w", err)
	}
	defer sdl.Quit()

	w, h := bmp.Width, bmp.Rows
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	winW, winH := int32(w*zoom), int32(h*zoom)

	window, err := sdl.CreateWindow("ftview", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		winW, winH, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("CreateWindow: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			return fmt.Errorf("CreateRenderer: %w", err)
		}
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGB24), sdl.TEXTUREACCESS_STATIC, int32(w), int32(h))
	if err != nil {
		return fmt.Errorf("CreateTexture: %w", err)
	}
	defer texture.Destroy()

	pixels, pitch := expandGray8ToRGB24(bmp, w, h)
	if err := texture.Update(nil, unsafe.Pointer(&pixels[0]), pitch); err != nil {
		return fmt.Errorf("texture.Update: %w", err)
	}

	renderer.Clear()
	renderer.Copy(texture, nil, nil)
	renderer.Present()

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				running = false
			}
		}
		sdl.Delay(16)
	}
	return nil
}

// expandGray8ToRGB24 replicates each coverage byte into an R=G=B triplet
// over a w x h canvas, the conversion the teacher's SDL2 backend performs
// for its own Gray8 case rather than relying on an SDL2-native
// single-channel format. w/h may exceed bmp's own dimensions (e.g. the
// empty-outline 0x0 bitmap a space glyph renders to, padded to a visible
// 1x1 window); bytes outside bmp's own bounds are left at zero.
func expandGray8ToRGB24(bmp face.Bitmap, w, h int) ([]byte, int) {
	pitch := w * 3
	out := make([]byte, pitch*h)
	for row := 0; row < bmp.Rows && row < h; row++ {
		srcRow := bmp.Pixels[row*bmp.Pitch : row*bmp.Pitch+bmp.Width]
		dstRow := out[row*pitch : (row+1)*pitch]
		for col, v := range srcRow {
			if col >= w {
				break
			}
			dstRow[col*3+0] = v
			dstRow[col*3+1] = v
			dstRow[col*3+2] = v
		}
	}
	return out, pitch
}

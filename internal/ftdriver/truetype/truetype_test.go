package truetype

import (
	"encoding/binary"
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

// buildTestFont assembles a minimal two-glyph sfnt in memory: gid0 is the
// empty .notdef, gid1 is a 100..900 unit square mapped from 'A' (U+0041)
// through a two-segment format-4 cmap.
func buildTestFont(t *testing.T) []byte {
	t.Helper()

	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:], 0x00010000)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(head[18:], 1000) // unitsPerEm
	binary.BigEndian.PutUint16(head[36:], 100)   // xMin
	binary.BigEndian.PutUint16(head[38:], 100)   // yMin
	binary.BigEndian.PutUint16(head[40:], 900)   // xMax
	binary.BigEndian.PutUint16(head[42:], 900)   // yMax
	binary.BigEndian.PutUint16(head[50:], 0)     // indexToLocFormat: short

	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp[0:], 0x00005000)
	binary.BigEndian.PutUint16(maxp[4:], 2) // numGlyphs

	hhea := make([]byte, 36)
	binary.BigEndian.PutUint32(hhea[0:], 0x00010000)
	binary.BigEndian.PutUint16(hhea[4:], 800)               // ascender
	binary.BigEndian.PutUint16(hhea[6:], uint16(int16(-200))) // descender
	binary.BigEndian.PutUint16(hhea[34:], 2)                // numberOfHMetrics

	hmtx := make([]byte, 8)
	binary.BigEndian.PutUint16(hmtx[0:], 0)   // gid0 advance
	binary.BigEndian.PutUint16(hmtx[2:], 0)   // gid0 lsb
	binary.BigEndian.PutUint16(hmtx[4:], 1000) // gid1 advance
	binary.BigEndian.PutUint16(hmtx[6:], 100)  // gid1 lsb

	glyf := buildSquareGlyf(t)
	loca := make([]byte, 6)
	binary.BigEndian.PutUint16(loca[0:], 0)                 // gid0 start
	binary.BigEndian.PutUint16(loca[2:], 0)                 // gid0 end == gid1 start (empty)
	binary.BigEndian.PutUint16(loca[4:], uint16(len(glyf)/2)) // gid1 end

	cmap := buildFormat4Cmap(t, 0x41, 1)

	tables := map[string][]byte{
		"head": head, "maxp": maxp, "hhea": hhea, "hmtx": hmtx,
		"loca": loca, "glyf": glyf, "cmap": cmap,
	}
	return assembleSFNT(tables)
}

func buildSquareGlyf(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	put16 := func(v uint16) { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); buf = append(buf, b...) }
	putS16 := func(v int16) { put16(uint16(v)) }

	put16(1)                 // numberOfContours
	putS16(100)               // xMin
	putS16(100)               // yMin
	putS16(900)               // xMax
	putS16(900)               // yMax
	put16(3)                  // endPtsOfContours[0]
	put16(0)                  // instructionLength

	flags := []byte{0x01, 0x01, 0x01, 0x01}
	buf = append(buf, flags...)

	xDeltas := []int16{100, 800, 0, -800}
	for _, d := range xDeltas {
		putS16(d)
	}
	yDeltas := []int16{100, 0, 800, 0}
	for _, d := range yDeltas {
		putS16(d)
	}
	return buf
}

func buildFormat4Cmap(t *testing.T, code uint16, gid uint16) []byte {
	t.Helper()
	var sub []byte
	put16 := func(v uint16) { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); sub = append(sub, b...) }
	putS16 := func(v int16) { put16(uint16(v)) }

	put16(4)  // format
	put16(0)  // length placeholder, fixed below
	put16(0)  // language
	put16(4)  // segCountX2 (2 segments)
	put16(4)  // searchRange
	put16(1)  // entrySelector
	put16(0)  // rangeShift
	put16(code)
	put16(0xFFFF) // endCode[]
	put16(0)      // reservedPad
	put16(code)
	put16(0xFFFF) // startCode[]
	putS16(int16(gid) - int16(code))
	putS16(1) // idDelta[]
	put16(0)
	put16(0) // idRangeOffset[]
	binary.BigEndian.PutUint16(sub[2:], uint16(len(sub)))

	header := make([]byte, 4+8)
	binary.BigEndian.PutUint16(header[2:], 1) // numTables
	binary.BigEndian.PutUint16(header[4:], 3) // platformID
	binary.BigEndian.PutUint16(header[6:], 1) // encodingID
	binary.BigEndian.PutUint32(header[8:], 12)
	return append(header, sub...)
}

func assembleSFNT(tables map[string][]byte) []byte {
	names := []string{"head", "maxp", "hhea", "hmtx", "loca", "glyf", "cmap"}
	numTables := len(names)
	dirSize := 12 + 16*numTables
	var body []byte
	offsets := make(map[string]uint32)
	off := uint32(dirSize)
	for _, n := range names {
		offsets[n] = off
		body = append(body, tables[n]...)
		off += uint32(len(tables[n]))
	}

	out := make([]byte, dirSize)
	binary.BigEndian.PutUint32(out[0:], 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(numTables))
	for i, n := range names {
		rec := out[12+16*i:]
		copy(rec[0:4], n)
		binary.BigEndian.PutUint32(rec[8:12], offsets[n])
		binary.BigEndian.PutUint32(rec[12:16], uint32(len(tables[n])))
	}
	return append(out, body...)
}

func TestFaceInitRecognizesMinimalFont(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatalf("FaceInit error: %v", err)
	}
	if !recognized {
		t.Fatal("expected font to be recognized")
	}
	if data.NumGlyphs != 2 {
		t.Fatalf("expected 2 glyphs, got %d", data.NumGlyphs)
	}
	if data.UnitsPerEM != 1000 {
		t.Fatalf("expected unitsPerEM 1000, got %d", data.UnitsPerEM)
	}
	if data.Ascender != 800 || data.Descender != -200 {
		t.Fatalf("unexpected vmetrics: asc=%d desc=%d", data.Ascender, data.Descender)
	}
}

func TestFaceInitDeclinesNonTrueTypeData(t *testing.T) {
	d := New()
	_, recognized, err := d.FaceInit(stream.NewMemoryStream([]byte("not a font, just some bytes")), 0)
	if err != nil {
		t.Fatalf("expected no error on unrecognized data, got %v", err)
	}
	if recognized {
		t.Fatal("expected unrecognized")
	}
}

func TestGetCharIndexMapsThroughCmap(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil || !recognized {
		t.Fatalf("FaceInit: %v, recognized=%v", err, recognized)
	}
	gid, err := d.GetCharIndex(data, 0x41)
	if err != nil {
		t.Fatal(err)
	}
	if gid != 1 {
		t.Fatalf("expected gid 1 for 'A', got %d", gid)
	}
	gid, err = d.GetCharIndex(data, 0x5A)
	if err != nil {
		t.Fatal(err)
	}
	if gid != 0 {
		t.Fatalf("expected .notdef for unmapped code, got %d", gid)
	}
}

func TestLoadGlyphDecodesSquareOutline(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil || !recognized {
		t.Fatalf("FaceInit: %v, recognized=%v", err, recognized)
	}
	out, err := d.LoadGlyph(data, driver.SizeMetrics{}, 1, driver.LoadNoScale)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Outline.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(out.Outline.Points))
	}
	if len(out.Outline.Contours) != 1 || out.Outline.Contours[0] != 3 {
		t.Fatalf("unexpected contours: %v", out.Outline.Contours)
	}
	if int(out.Advance.X) != 1000 {
		t.Fatalf("expected unscaled advance 1000, got %d", int(out.Advance.X))
	}
	if int(out.Outline.Points[0].X) != 100 || int(out.Outline.Points[2].X) != 900 {
		t.Fatalf("unexpected point coordinates: %+v", out.Outline.Points)
	}
}

func TestLoadGlyphEmptyGlyphHasNoOutline(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	data, _, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.LoadGlyph(data, driver.SizeMetrics{}, 0, driver.LoadNoScale)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Outline.Points) != 0 {
		t.Fatalf("expected empty outline for .notdef, got %d points", len(out.Outline.Points))
	}
}

func TestLoadGlyphRejectsOutOfRangeIndex(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	data, _, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.LoadGlyph(data, driver.SizeMetrics{}, 99, driver.LoadNoScale); err == nil {
		t.Fatal("expected error for out-of-range glyph index")
	}
}

func TestSizeRequestNominalScalesAdvance(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	data, _, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	var metrics driver.SizeMetrics
	if err := d.SizeRequest(data, &metrics, driver.SizeRequest{
		Kind: driver.SizeRequestNominal, PixelWidth: 1000, PixelHeight: 1000,
	}); err != nil {
		t.Fatal(err)
	}
	// unitsPerEM == 1000 and pixel size == 1000 means scale is identity
	// (1 font unit -> 1 device pixel), so advance 1000 units scales to
	// exactly 1000 pixels (64000 in 26.6).
	out, err := d.LoadGlyph(data, metrics, 1, driver.LoadDefault)
	if err != nil {
		t.Fatal(err)
	}
	if out.Advance.X.ToInt() != 1000 {
		t.Fatalf("expected scaled advance 1000px, got %d", out.Advance.X.ToInt())
	}
}

package cff

import (
	"encoding/binary"
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

// buildIndex assembles a CFF INDEX structure (1-byte offSize, adequate for
// this test's small entries) from entries; an empty entries list encodes
// the count==0 "no INDEX data follows" form.
func buildIndex(entries [][]byte) []byte {
	if len(entries) == 0 {
		return []byte{0, 0}
	}
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(entries)))
	out = append(out, 1) // offSize

	offsets := make([]byte, len(entries)+1)
	pos := 1
	offsets[0] = byte(pos)
	for i, e := range entries {
		pos += len(e)
		offsets[i+1] = byte(pos)
	}
	out = append(out, offsets...)
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

func dictOperandInt16(v int) []byte {
	return []byte{28, byte(int16(v) >> 8), byte(int16(v))}
}

// buildTopDict always produces a fixed-length 15-byte DICT (Encoding +
// CharStrings + Private entries, each int16-operand-encoded) regardless of
// the actual offset values supplied, so the caller can lay out the rest of
// the file first and fill in final offsets without the DICT's own length
// shifting anything downstream.
func buildTopDict(encodingOff, charStringsOff, privSize, privOff int) []byte {
	var d []byte
	d = append(d, dictOperandInt16(encodingOff)...)
	d = append(d, 16) // Encoding
	d = append(d, dictOperandInt16(charStringsOff)...)
	d = append(d, 17) // CharStrings
	d = append(d, dictOperandInt16(privSize)...)
	d = append(d, dictOperandInt16(privOff)...)
	d = append(d, 18) // Private
	return d
}

// buildSimpleCustomEncoding builds a format-0 custom Encoding table mapping
// a single one-byte code to glyph index 1.
func buildSimpleCustomEncoding(code byte) []byte {
	return []byte{0x00, 0x01, code}
}

func buildTriangleCharstring() []byte {
	enc := func(v int) byte { return byte(v + 139) }
	var cs []byte
	cs = append(cs, enc(100), enc(0), 21) // rmoveto 100 0
	cs = append(cs, enc(-50), enc(100), enc(-50), enc(-100), 5) // rlineto x2
	cs = append(cs, 14) // endchar
	return cs
}

func buildTestCFFFont(t *testing.T) []byte {
	t.Helper()

	header := []byte{1, 0, 4, 1}
	nameIdx := buildIndex([][]byte{[]byte("Test")})
	stringIdx := buildIndex(nil)
	globalSubrIdx := buildIndex(nil)

	// Pass 1: compute the fixed-size topDict's length to find later offsets.
	dummyTop := buildTopDict(0, 0, 0, 0)
	topDictIdx := buildIndex([][]byte{dummyTop})

	base := len(header) + len(nameIdx) + len(topDictIdx) + len(stringIdx) + len(globalSubrIdx)

	encoding := buildSimpleCustomEncoding(0x41)
	encodingOff := base
	charStringsOff := encodingOff + len(encoding)

	glyphs := [][]byte{{14}, buildTriangleCharstring()} // gid0 .notdef, gid1 triangle
	charStringsIdx := buildIndex(glyphs)
	privOff := charStringsOff + len(charStringsIdx)

	realTop := buildTopDict(encodingOff, charStringsOff, 0, privOff)
	if len(realTop) != len(dummyTop) {
		t.Fatalf("topDict length changed between passes: %d vs %d", len(realTop), len(dummyTop))
	}
	topDictIdx = buildIndex([][]byte{realTop})

	var buf []byte
	buf = append(buf, header...)
	buf = append(buf, nameIdx...)
	buf = append(buf, topDictIdx...)
	buf = append(buf, stringIdx...)
	buf = append(buf, globalSubrIdx...)
	buf = append(buf, encoding...)
	buf = append(buf, charStringsIdx...)
	return buf
}

func TestFaceInitParsesMinimalCFF(t *testing.T) {
	buf := buildTestCFFFont(t)
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
}

func TestFaceInitDeclinesNonCFFData(t *testing.T) {
	d := New()
	_, recognized, err := d.FaceInit(stream.NewMemoryStream([]byte("definitely not cff data")), 0)
	if err != nil {
		t.Fatalf("expected no error on unrecognized data, got %v", err)
	}
	if recognized {
		t.Fatal("expected unrecognized")
	}
}

func TestGetCharIndexMapsThroughCustomEncoding(t *testing.T) {
	buf := buildTestCFFFont(t)
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

func TestLoadGlyphDecodesTriangleOutline(t *testing.T) {
	buf := buildTestCFFFont(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil || !recognized {
		t.Fatalf("FaceInit: %v, recognized=%v", err, recognized)
	}
	out, err := d.LoadGlyph(data, driver.SizeMetrics{}, 1, driver.LoadNoScale)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Outline.Points) != 3 {
		t.Fatalf("expected 3 on-curve points for the triangle, got %d", len(out.Outline.Points))
	}
	if len(out.Outline.Contours) != 1 || out.Outline.Contours[0] != 2 {
		t.Fatalf("unexpected contours: %v", out.Outline.Contours)
	}
	if int(out.Outline.Points[0].X) != 100 || int(out.Outline.Points[0].Y) != 0 {
		t.Fatalf("unexpected first point: %+v", out.Outline.Points[0])
	}
}

func TestLoadGlyphEmptyNotdef(t *testing.T) {
	buf := buildTestCFFFont(t)
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
	buf := buildTestCFFFont(t)
	d := New()
	data, _, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.LoadGlyph(data, driver.SizeMetrics{}, 99, driver.LoadNoScale); err == nil {
		t.Fatal("expected error for out-of-range glyph index")
	}
}

func TestSubrBiasThresholds(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{{0, 107}, {1239, 107}, {1240, 1131}, {33899, 1131}, {33900, 32768}}
	for _, c := range cases {
		if got := subrBias(c.n); got != c.want {
			t.Errorf("subrBias(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

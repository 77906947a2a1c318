package cid

import (
	"encoding/binary"
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

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

// buildTopDict always produces a fixed-length DICT (ROS + charset +
// CharStrings + FDArray + FDSelect, each int16-operand-encoded) regardless
// of the actual offset values supplied, so the rest of the file can be laid
// out first and the offsets filled in afterward without the DICT's own
// length shifting anything downstream.
func buildTopDict(charsetOff, csOff, fdaOff, fdsOff int) []byte {
	var d []byte
	d = append(d, dictOperandInt16(0)...)
	d = append(d, dictOperandInt16(0)...)
	d = append(d, dictOperandInt16(0)...)
	d = append(d, 12, 30) // ROS
	d = append(d, dictOperandInt16(charsetOff)...)
	d = append(d, 15) // charset
	d = append(d, dictOperandInt16(csOff)...)
	d = append(d, 17) // CharStrings
	d = append(d, dictOperandInt16(fdaOff)...)
	d = append(d, 12, 36) // FDArray
	d = append(d, dictOperandInt16(fdsOff)...)
	d = append(d, 12, 37) // FDSelect
	return d
}

func buildTriangleCharstring() []byte {
	enc := func(v int) byte { return byte(v + 139) }
	var cs []byte
	cs = append(cs, enc(100), enc(0), 21)
	cs = append(cs, enc(-50), enc(100), enc(-50), enc(-100), 5)
	cs = append(cs, 14)
	return cs
}

// buildTestCIDFont assembles a minimal bare-CFF CID-keyed font: two glyphs
// (.notdef and a triangle carrying CID 9), one Font DICT in the FDArray
// with no Private entry of its own, and an FDSelect format-0 table routing
// both glyphs to that single FD.
func buildTestCIDFont(t *testing.T) []byte {
	t.Helper()

	header := []byte{1, 0, 4, 1}
	nameIdx := buildIndex([][]byte{[]byte("Test-CID")})
	stringIdx := buildIndex(nil)
	globalSubrIdx := buildIndex(nil)

	dummyTop := buildTopDict(0, 0, 0, 0)
	topDictIdx := buildIndex([][]byte{dummyTop})

	base := len(header) + len(nameIdx) + len(topDictIdx) + len(stringIdx) + len(globalSubrIdx)

	// custom charset, format 0: gid1 -> CID 9
	charset := []byte{0x00, 0x00, 0x09}
	charsetOff := base
	csOff := charsetOff + len(charset)

	glyphs := [][]byte{{14}, buildTriangleCharstring()}
	charStringsIdx := buildIndex(glyphs)
	fdaOff := csOff + len(charStringsIdx)

	fdArrayIdx := buildIndex([][]byte{{}}) // one empty Font DICT, no Private entry
	fdsOff := fdaOff + len(fdArrayIdx)

	fdSelect := []byte{0, 0, 0} // format 0, gid0 and gid1 both -> FD 0

	realTop := buildTopDict(charsetOff, csOff, fdaOff, fdsOff)
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
	buf = append(buf, charset...)
	buf = append(buf, charStringsIdx...)
	buf = append(buf, fdArrayIdx...)
	buf = append(buf, fdSelect...)
	return buf
}

func TestFaceInitRecognizesCIDKeyedFont(t *testing.T) {
	buf := buildTestCIDFont(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatalf("FaceInit error: %v", err)
	}
	if !recognized {
		t.Fatal("expected CID-keyed font to be recognized")
	}
	if data.NumGlyphs != 2 {
		t.Fatalf("expected 2 glyphs, got %d", data.NumGlyphs)
	}
}

func TestFaceInitDeclinesNonCFFData(t *testing.T) {
	// Arbitrary bytes that are not a CFF font at all are declined without
	// an error.
	buf := []byte("definitely not a cid-keyed cff font, long enough to pass the size check")
	d := New()
	_, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatalf("expected no error on unrecognized data, got %v", err)
	}
	if recognized {
		t.Fatal("expected unrecognized")
	}
}

func TestGetCharIndexResolvesCID(t *testing.T) {
	buf := buildTestCIDFont(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil || !recognized {
		t.Fatalf("FaceInit: %v, recognized=%v", err, recognized)
	}
	gid, err := d.GetCharIndex(data, 9)
	if err != nil {
		t.Fatal(err)
	}
	if gid != 1 {
		t.Fatalf("expected gid 1 for CID 9, got %d", gid)
	}
	gid, err = d.GetCharIndex(data, 42)
	if err != nil {
		t.Fatal(err)
	}
	if gid != 0 {
		t.Fatalf("expected .notdef for unmapped CID, got %d", gid)
	}
}

func TestLoadGlyphDecodesCIDGlyphViaFDArray(t *testing.T) {
	buf := buildTestCIDFont(t)
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
}

package type1

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

// encryptEexec is the inverse of eexecDecrypt: given plaintext it derives
// each cipher byte from the running key and the desired plaintext byte,
// updating the key from the cipher byte exactly as decryption does.
func encryptEexec(plain []byte, r uint16) []byte {
	const c1, c2 = 52845, 22719
	out := make([]byte, len(plain))
	for i, p := range plain {
		c := p ^ byte(r>>8)
		out[i] = c
		r = (uint16(c) + r) * c1 + c2
	}
	return out
}

// num encodes v using Type 1's integer operand grammar: single-byte for the
// -107..107 range used by all the values this test needs except the glyph
// width, which falls back to the 5-byte 32-bit form.
func num(v int) []byte {
	if v >= -107 && v <= 107 {
		return []byte{byte(v + 139)}
	}
	b := make([]byte, 5)
	b[0] = 255
	binary.BigEndian.PutUint32(b[1:], uint32(int32(v)))
	return b
}

func buildTriangleType1Charstring(sbx, width int) []byte {
	var cs []byte
	cs = append(cs, num(sbx)...)
	cs = append(cs, num(width)...)
	cs = append(cs, 13) // hsbw
	cs = append(cs, num(100)...)
	cs = append(cs, num(0)...)
	cs = append(cs, 21) // rmoveto
	cs = append(cs, num(-50)...)
	cs = append(cs, num(100)...)
	cs = append(cs, 5) // rlineto
	cs = append(cs, num(-50)...)
	cs = append(cs, num(-100)...)
	cs = append(cs, 5) // rlineto
	cs = append(cs, 9)
	cs = append(cs, 14) // endchar
	return cs
}

func buildTestType1Font(t *testing.T) []byte {
	t.Helper()

	// Charstrings are stored charstring-encrypted (key 4330); lenIV 0 means
	// no leading random bytes, not "unencrypted".
	notdefCS := encryptEexec([]byte{14}, 4330) // endchar only
	aCS := encryptEexec(buildTriangleType1Charstring(0, 500), 4330)

	var priv bytes.Buffer
	priv.WriteString("/lenIV 0 def\n")
	priv.WriteString("/Subrs 0 array\n")
	priv.WriteString("/CharStrings 2 dict dup begin\n")
	priv.WriteString("/.notdef " + strconv.Itoa(len(notdefCS)) + " RD ")
	priv.Write(notdefCS)
	priv.WriteString(" ND\n")
	priv.WriteString("/A " + strconv.Itoa(len(aCS)) + " RD ")
	priv.Write(aCS)
	priv.WriteString(" ND\n")
	priv.WriteString("end\n")

	garbage := []byte{0, 0, 0, 0}
	plainWithGarbage := append(append([]byte{}, garbage...), priv.Bytes()...)
	encrypted := encryptEexec(plainWithGarbage, 55665)
	hexEncrypted := hex.EncodeToString(encrypted)

	var buf bytes.Buffer
	buf.WriteString("%!PS-AdobeFont-1.0: Test 001.000\n")
	buf.WriteString("/FontName /Test def\n")
	buf.WriteString("/Encoding 256 array\n")
	buf.WriteString("0 1 255 {1 index exch /.notdef put} for\n")
	buf.WriteString("dup 65 /A put\n")
	buf.WriteString("readonly def\n")
	buf.WriteString("currentfile eexec\n")
	buf.WriteString(hexEncrypted)
	return buf.Bytes()
}

func TestFaceInitParsesMinimalType1Font(t *testing.T) {
	buf := buildTestType1Font(t)
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

func TestFaceInitDeclinesNonType1Data(t *testing.T) {
	d := New()
	_, recognized, err := d.FaceInit(stream.NewMemoryStream([]byte("definitely not a type1 font, long enough")), 0)
	if err != nil {
		t.Fatalf("expected no error on unrecognized data, got %v", err)
	}
	if recognized {
		t.Fatal("expected unrecognized")
	}
}

func TestGetCharIndexMapsThroughEncoding(t *testing.T) {
	buf := buildTestType1Font(t)
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
	buf := buildTestType1Font(t)
	d := New()
	data, recognized, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil || !recognized {
		t.Fatalf("FaceInit: %v, recognized=%v", err, recognized)
	}
	gid, err := d.GetCharIndex(data, 0x41)
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.LoadGlyph(data, driver.SizeMetrics{}, gid, driver.LoadNoScale)
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
	if int(out.Advance.X) != 500 {
		t.Fatalf("expected advance width 500, got %d", int(out.Advance.X))
	}
}

func TestLoadGlyphEmptyNotdef(t *testing.T) {
	buf := buildTestType1Font(t)
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
	buf := buildTestType1Font(t)
	d := New()
	data, _, err := d.FaceInit(stream.NewMemoryStream(buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.LoadGlyph(data, driver.SizeMetrics{}, 99, driver.LoadNoScale); err == nil {
		t.Fatal("expected error for out-of-range glyph index")
	}
}

func TestEexecRoundTrip(t *testing.T) {
	plain := []byte("some arbitrary private dict bytes 0123456789")
	cipher := encryptEexec(plain, 55665)
	got := eexecDecrypt(cipher, 55665, 0)
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plain)
	}
}

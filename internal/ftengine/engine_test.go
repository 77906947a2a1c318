package ftengine

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
)

func TestNewLibraryRegistersAllFormatDrivers(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	drivers := lib.Registry.Drivers()
	if len(drivers) != 4 {
		t.Fatalf("expected 4 registered drivers, got %d", len(drivers))
	}
	for _, name := range []string{"cid", "truetype", "cff", "type1"} {
		if _, ok := lib.Registry.DriverByName(name); !ok {
			t.Fatalf("expected driver %q to be registered", name)
		}
	}
	if _, ok := lib.Registry.RendererByFormat(rendererFormatName); !ok {
		t.Fatal("expected default renderer to be registered")
	}
}

// encryptEexec is the Type 1 private-dict cipher's encrypting direction,
// duplicated from internal/ftdriver/type1's test helper since it isn't
// part of that package's public API.
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

func num(v int) []byte {
	if v >= -107 && v <= 107 {
		return []byte{byte(v + 139)}
	}
	b := make([]byte, 5)
	b[0] = 255
	binary.BigEndian.PutUint32(b[1:], uint32(int32(v)))
	return b
}

func buildTestType1Font(t *testing.T) []byte {
	t.Helper()

	// Charstrings are stored charstring-encrypted (key 4330); lenIV 0 means
	// no leading random bytes, not "unencrypted".
	notdefCS := encryptEexec([]byte{14}, 4330)
	var aCS []byte
	aCS = append(aCS, num(0)...)
	aCS = append(aCS, num(500)...)
	aCS = append(aCS, 13) // hsbw
	aCS = append(aCS, num(100)...)
	aCS = append(aCS, num(0)...)
	aCS = append(aCS, 21) // rmoveto
	aCS = append(aCS, num(-50)...)
	aCS = append(aCS, num(100)...)
	aCS = append(aCS, 5) // rlineto
	aCS = append(aCS, num(-50)...)
	aCS = append(aCS, num(-100)...)
	aCS = append(aCS, 5) // rlineto
	aCS = append(aCS, 9, 14)
	aCS = encryptEexec(aCS, 4330)

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

func TestOpenFaceFromFileLoadsAndRendersGlyph(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.pfa")
	if err := os.WriteFile(path, buildTestType1Font(t), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, closeFace, err := OpenFaceFromFile(lib, path, 0)
	if err != nil {
		t.Fatalf("OpenFaceFromFile: %v", err)
	}
	defer closeFace()

	if err := f.SetPixelSizes(16, 16); err != nil {
		t.Fatalf("SetPixelSizes: %v", err)
	}

	gid, err := f.CharIndex(0x41)
	if err != nil {
		t.Fatalf("CharIndex: %v", err)
	}
	if gid != 1 {
		t.Fatalf("expected gid 1 for 'A', got %d", gid)
	}

	l := NewLoaderForFace(lib, f)
	if err := l.LoadGlyph(f, gid, driver.LoadRender); err != nil {
		t.Fatalf("LoadGlyph: %v", err)
	}

	slot := f.Slot()
	if slot.Bitmap.Width == 0 || slot.Bitmap.Rows == 0 {
		t.Fatalf("expected non-empty rendered bitmap, got %+v", slot.Bitmap)
	}
}

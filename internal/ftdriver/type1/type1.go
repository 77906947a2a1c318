// Package type1 implements the Adobe Type 1 font driver: PFA/PFB framing,
// the eexec/charstring decryption cipher, a minimal PostScript token
// scanner sufficient to pull CharStrings/Subrs/Encoding out of the
// decrypted private dict, and a Type 1 charstring interpreter. Grounded in
// original_source/src/type1's t1parse/t1load structure (segment framing,
// the decryption constants, and the dict-scanning approach) and
// original_source/src/shared/type1/t1encode.c (standard/custom Encoding
// array handling), adapted onto a single in-memory byte buffer instead of
// FreeType's streaming parser/stack machine.
package type1

import (
	"bytes"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

var errNotype1Dict = ferrors.New("type1", ferrors.CodeUnknownFileFormat)

// faceData is the driver-private payload stashed in driver.FaceData.Private.
type faceData struct {
	charstrings map[string][]byte // glyph name -> decrypted Type 1 charstring
	names       []string          // glyph index -> name, index 0 is .notdef
	nameToGID   map[string]int
	subrs       [][]byte
	encoding    [256]string // char code -> glyph name
	unitsPerEM  int
}

// Driver is the Type 1 outline format module, registered under "type1".
type Driver struct{}

func New() *Driver { return &Driver{} }

var _ driver.Driver = (*Driver)(nil)
var _ driver.CharIndexer = (*Driver)(nil)

// eexecDecrypt implements the Type 1 charstring/private-dict cipher: a
// running 16-bit key r, seeded by the caller, updated one plaintext-cipher
// byte pair at a time per the spec's fixed multiplier/increment constants.
func eexecDecrypt(cipher []byte, r uint16, skip int) []byte {
	const c1, c2 = 52845, 22719
	out := make([]byte, 0, len(cipher))
	for _, c := range cipher {
		p := c ^ byte(r>>8)
		r = (uint16(c)+r)*c1 + c2
		out = append(out, p)
	}
	if skip > len(out) {
		skip = len(out)
	}
	return out[skip:]
}

// FaceInit probes s for a Type 1 font (PFA or PFB framed) and, if found,
// decrypts its private dict and extracts CharStrings/Subrs/Encoding.
func (d *Driver) FaceInit(s stream.Stream, faceIndex int) (driver.FaceData, bool, error) {
	n := s.Size()
	if n < 16 {
		return driver.FaceData{}, false, nil
	}
	buf := make([]byte, n)
	if err := s.Read(0, buf); err != nil {
		return driver.FaceData{}, false, nil
	}

	clear, encryptedSeg, ok := splitSegments(buf)
	if !ok {
		return driver.FaceData{}, false, nil
	}

	priv := eexecDecrypt(encryptedSeg, 55665, 4)

	lenIV := 4
	if v, ok := scanIntAfter(priv, "/lenIV"); ok {
		lenIV = v
	}

	rawCharstrings, names, err := scanCharStrings(priv)
	if err != nil || len(rawCharstrings) == 0 {
		return driver.FaceData{}, true, ferrors.New("type1", ferrors.CodeUnknownFileFormat)
	}
	subrsRaw := scanSubrs(priv)

	fd := &faceData{
		charstrings: make(map[string][]byte, len(rawCharstrings)),
		names:       names,
		nameToGID:   make(map[string]int, len(names)),
		unitsPerEM:  1000,
	}
	for name, cs := range rawCharstrings {
		fd.charstrings[name] = eexecDecrypt(cs, 4330, lenIV)
	}
	for i, name := range names {
		fd.nameToGID[name] = i
	}
	fd.subrs = make([][]byte, len(subrsRaw))
	for i, s := range subrsRaw {
		fd.subrs[i] = eexecDecrypt(s, 4330, lenIV)
	}

	scanEncoding(clear, &fd.encoding, names)

	data := driver.FaceData{
		NumGlyphs:  len(names),
		UnitsPerEM: fd.unitsPerEM,
		Private:    fd,
	}
	return data, true, nil
}

func (d *Driver) FaceDone(face driver.FaceData) {}

// splitSegments returns the cleartext header and the (PFB-binary or
// PFA-hex-decoded) bytes of the eexec-encrypted private section.
func splitSegments(buf []byte) (clear, encrypted []byte, ok bool) {
	if buf[0] == 0x80 {
		return splitPFB(buf)
	}
	idx := bytes.Index(buf, []byte("eexec"))
	if idx < 0 {
		return nil, nil, false
	}
	clear = buf[:idx]
	rest := buf[idx+len("eexec"):]
	for len(rest) > 0 && isPSSpace(rest[0]) {
		rest = rest[1:]
	}
	if looksHex(rest) {
		encrypted = decodeHexRun(rest)
	} else {
		encrypted = rest
	}
	return clear, encrypted, true
}

func splitPFB(buf []byte) (clear, encrypted []byte, ok bool) {
	pos := 0
	for pos+6 <= len(buf) && buf[pos] == 0x80 {
		segType := buf[pos+1]
		if segType == 3 {
			break
		}
		length := int(buf[pos+2]) | int(buf[pos+3])<<8 | int(buf[pos+4])<<16 | int(buf[pos+5])<<24
		start := pos + 6
		if start+length > len(buf) {
			return nil, nil, false
		}
		seg := buf[start : start+length]
		switch segType {
		case 1:
			clear = append(clear, seg...)
		case 2:
			encrypted = append(encrypted, seg...)
		}
		pos = start + length
	}
	return clear, encrypted, encrypted != nil
}

func isPSSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// looksHex reports whether the first stretch of non-whitespace bytes are
// all hex digits, the PFA convention for an ASCII-armored eexec section.
func looksHex(buf []byte) bool {
	seen := 0
	for _, b := range buf {
		if isPSSpace(b) {
			continue
		}
		if !isHexDigit(b) {
			return false
		}
		seen++
		if seen >= 4 {
			return true
		}
	}
	return seen > 0
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func decodeHexRun(buf []byte) []byte {
	out := make([]byte, 0, len(buf)/2)
	hi := -1
	for _, b := range buf {
		if isPSSpace(b) {
			continue
		}
		if !isHexDigit(b) {
			break
		}
		v := hexVal(b)
		if hi < 0 {
			hi = v
		} else {
			out = append(out, byte(hi<<4|v))
			hi = -1
		}
	}
	return out
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}

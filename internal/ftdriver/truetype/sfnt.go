// Package truetype implements the glyf-outline SFNT driver: table directory
// probing, head/maxp/hhea/hmtx metrics, cmap character-to-glyph mapping, and
// glyf/loca outline decomposition (simple and composite glyphs), grounded in
// the reference pack's textlayout/fonts/truetype table_glyf.go (simple/
// composite point decoding) and golang-image/font/sfnt.go (table-directory
// and cmap subtable selection), adapted here onto the engine's own
// stream.Reader framing instead of either package's byte-slice helpers.
package truetype

import (
	"encoding/binary"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
)

const (
	tagTrueType = 0x00010000
	tagTrue     = 0x74727565 // 'true', Apple's sfnt version
	tagTTC      = 0x74746366 // 'ttcf'
)

// tableRecord is one entry of the sfnt table directory.
type tableRecord struct {
	offset, length uint32
}

// faceData is the driver-private payload handed back on every subsequent
// call through driver.FaceData.Private.
type faceData struct {
	buf    []byte
	tables map[string]tableRecord

	unitsPerEM        int
	numGlyphs         int
	indexToLocFormat  int16
	numberOfHMetrics  int

	loca []uint32
	hmtx []longHorMetric

	cmap cmapTable

	glyfOff, glyfLen int
}

type longHorMetric struct {
	advanceWidth uint16
	lsb          int16
}

func (fd *faceData) table(tag string) ([]byte, bool) {
	rec, ok := fd.tables[tag]
	if !ok {
		return nil, false
	}
	if int(rec.offset)+int(rec.length) > len(fd.buf) {
		return nil, false
	}
	return fd.buf[rec.offset : rec.offset+rec.length], true
}

// FaceInit probes s for a glyf-flavored sfnt (TrueType or Apple 'true'
// version tag). An 'OTTO' CFF-flavored sfnt is declined so the cff driver
// gets a turn at it, per spec.md §4.1's "first driver that recognizes the
// format" scan rule.
func (d *Driver) FaceInit(s stream.Stream, faceIndex int) (driver.FaceData, bool, error) {
	n := s.Size()
	if n < 12 || n > 1<<31 {
		return driver.FaceData{}, false, nil
	}
	buf := make([]byte, n)
	if err := s.Read(0, buf); err != nil {
		return driver.FaceData{}, false, nil
	}

	base := 0
	tag := binary.BigEndian.Uint32(buf[0:4])
	if tag == tagTTC {
		if len(buf) < 16 {
			return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
		}
		numFonts := binary.BigEndian.Uint32(buf[8:12])
		if faceIndex < 0 || uint32(faceIndex) >= numFonts {
			return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeInvalidArgument)
		}
		entryOff := 12 + 4*faceIndex
		if entryOff+4 > len(buf) {
			return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
		}
		base = int(binary.BigEndian.Uint32(buf[entryOff:]))
		if base+12 > len(buf) {
			return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
		}
		tag = binary.BigEndian.Uint32(buf[base : base+4])
	}
	if tag != tagTrueType && tag != tagTrue {
		return driver.FaceData{}, false, nil
	}

	numTables := int(binary.BigEndian.Uint16(buf[base+4:]))
	dirOff := base + 12
	if dirOff+16*numTables > len(buf) {
		return driver.FaceData{}, true, ferrors.Newf("truetype", ferrors.CodeUnknownFileFormat, "truncated table directory")
	}

	fd := &faceData{buf: buf, tables: make(map[string]tableRecord, numTables)}
	for i := 0; i < numTables; i++ {
		rec := buf[dirOff+16*i:]
		t := string(rec[0:4])
		fd.tables[t] = tableRecord{
			offset: binary.BigEndian.Uint32(rec[8:12]),
			length: binary.BigEndian.Uint32(rec[12:16]),
		}
	}

	for _, required := range [...]string{"head", "maxp", "hhea", "hmtx", "loca", "glyf"} {
		if _, ok := fd.tables[required]; !ok {
			return driver.FaceData{}, false, nil
		}
	}

	head, ok := fd.table("head")
	if !ok || len(head) < 54 {
		return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	fd.unitsPerEM = int(binary.BigEndian.Uint16(head[18:]))
	if fd.unitsPerEM == 0 {
		return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	fd.indexToLocFormat = int16(binary.BigEndian.Uint16(head[50:]))

	maxp, ok := fd.table("maxp")
	if !ok || len(maxp) < 6 {
		return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	fd.numGlyphs = int(binary.BigEndian.Uint16(maxp[4:]))

	hhea, ok := fd.table("hhea")
	if !ok || len(hhea) < 36 {
		return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	ascender := int(int16(binary.BigEndian.Uint16(hhea[4:])))
	descender := int(int16(binary.BigEndian.Uint16(hhea[6:])))
	lineGap := int(int16(binary.BigEndian.Uint16(hhea[8:])))
	fd.numberOfHMetrics = int(binary.BigEndian.Uint16(hhea[34:]))

	hmtxBuf, ok := fd.table("hmtx")
	if !ok {
		return driver.FaceData{}, true, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	if err := fd.parseHmtx(hmtxBuf); err != nil {
		return driver.FaceData{}, true, err
	}

	locaBuf, _ := fd.table("loca")
	if err := fd.parseLoca(locaBuf); err != nil {
		return driver.FaceData{}, true, err
	}

	glyfRec := fd.tables["glyf"]
	fd.glyfOff, fd.glyfLen = int(glyfRec.offset), int(glyfRec.length)

	var charMaps []driver.CharMapData
	if cmapBuf, ok := fd.table("cmap"); ok {
		sub, entries, err := selectCmapSubtable(cmapBuf)
		if err != nil {
			return driver.FaceData{}, true, err
		}
		fd.cmap = sub
		charMaps = entries
	}

	xMin := int16(binary.BigEndian.Uint16(head[36:]))
	yMin := int16(binary.BigEndian.Uint16(head[38:]))
	xMax := int16(binary.BigEndian.Uint16(head[40:]))
	yMax := int16(binary.BigEndian.Uint16(head[42:]))

	data := driver.FaceData{
		NumGlyphs:       fd.numGlyphs,
		UnitsPerEM:      fd.unitsPerEM,
		DesignBBox:      bboxFromFUnits(xMin, yMin, xMax, yMax),
		Ascender:        ascender,
		Descender:       descender,
		Height:          ascender - descender + lineGap,
		MaxAdvanceWidth: maxAdvanceWidth(fd.hmtx),
		FamilyName:      readNameRecord(fd, 1),
		StyleName:       readNameRecord(fd, 2),
		FixedPitch:      isFixedPitch(fd),
		CharMaps:        charMaps,
		Private:         fd,
	}
	return data, true, nil
}

// isFixedPitch reads the 'post' table's isFixedPitch field when present;
// absent the table, monospacing is reported as false rather than guessed
// from hmtx (a proportional font can still have many equal advances).
func isFixedPitch(fd *faceData) bool {
	post, ok := fd.table("post")
	if !ok || len(post) < 16 {
		return false
	}
	return binary.BigEndian.Uint32(post[12:16]) != 0
}

// FaceDone releases driver-private state; the whole parse lives in GC-owned
// slices, so there is nothing to free explicitly.
func (d *Driver) FaceDone(face driver.FaceData) {}

func maxAdvanceWidth(hmtx []longHorMetric) int {
	max := 0
	for _, m := range hmtx {
		if int(m.advanceWidth) > max {
			max = int(m.advanceWidth)
		}
	}
	return max
}

package truetype

import (
	"encoding/binary"

	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
)

// cmapTable is the single subtable selected as the face's active charmap;
// spec.md §6 scopes char-to-glyph mapping to "the active charmap", so only
// one subtable's bytes are retained rather than the full table.
type cmapTable struct {
	format int
	sub    []byte
}

// selectCmapSubtable scans every (platformID, encodingID, offset) entry,
// publishing one driver.CharMapData per recognized subtable and picking the
// best one as the active map: full-repertoire Unicode (format 12) over
// BMP-only Unicode (format 4) over the Mac Roman byte encoding (format 0),
// mirroring the priority golang-image/font/sfnt.go's cmap selection uses.
func selectCmapSubtable(buf []byte) (cmapTable, []driver.CharMapData, error) {
	if len(buf) < 4 {
		return cmapTable{}, nil, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	numTables := int(binary.BigEndian.Uint16(buf[2:]))
	if len(buf) < 4+8*numTables {
		return cmapTable{}, nil, ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}

	type candidate struct {
		platformID, encodingID uint16
		format                 int
		sub                    []byte
	}
	var candidates []candidate
	var charMaps []driver.CharMapData

	for i := 0; i < numTables; i++ {
		rec := buf[4+8*i:]
		platformID := binary.BigEndian.Uint16(rec[0:])
		encodingID := binary.BigEndian.Uint16(rec[2:])
		offset := binary.BigEndian.Uint32(rec[4:])
		if int(offset)+2 > len(buf) {
			continue
		}
		format := int(binary.BigEndian.Uint16(buf[offset:]))
		sub := buf[offset:]
		charMaps = append(charMaps, driver.CharMapData{
			Encoding:   encodingFromPlatform(platformID, encodingID),
			PlatformID: platformID,
			EncodingID: encodingID,
		})
		switch format {
		case 0, 4, 12:
			candidates = append(candidates, candidate{platformID, encodingID, format, sub})
		}
	}

	best := -1
	bestScore := -1
	for i, c := range candidates {
		score := 0
		switch {
		case c.format == 12:
			score = 3
		case c.format == 4 && (c.platformID == 3 || c.platformID == 0):
			score = 2
		case c.format == 0:
			score = 1
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return cmapTable{}, charMaps, nil
	}
	return cmapTable{format: candidates[best].format, sub: candidates[best].sub}, charMaps, nil
}

func encodingFromPlatform(platformID, encodingID uint16) string {
	switch {
	case platformID == 3 && encodingID == 1, platformID == 0:
		return "unicode"
	case platformID == 3 && encodingID == 10:
		return "unicode"
	case platformID == 1 && encodingID == 0:
		return "adobe_standard"
	default:
		return "unicode"
	}
}

// CharIndex maps a Unicode code point to a glyph index through the active
// cmap subtable, returning 0 (.notdef) for an unmapped code point rather
// than an error, per spec.md §6.
func (fd *faceData) CharIndex(code uint32) int {
	switch fd.cmap.format {
	case 0:
		return charIndexFormat0(fd.cmap.sub, code)
	case 4:
		return charIndexFormat4(fd.cmap.sub, code)
	case 12:
		return charIndexFormat12(fd.cmap.sub, code)
	default:
		return 0
	}
}

func charIndexFormat0(sub []byte, code uint32) int {
	if code > 255 || len(sub) < 6+256 {
		return 0
	}
	return int(sub[6+code])
}

func charIndexFormat4(sub []byte, code uint32) int {
	if code > 0xFFFF || len(sub) < 14 {
		return 0
	}
	segCountX2 := int(binary.BigEndian.Uint16(sub[6:]))
	segCount := segCountX2 / 2
	endCodeOff := 14
	startCodeOff := endCodeOff + segCountX2 + 2 // +2 skips reservedPad
	idDeltaOff := startCodeOff + segCountX2
	idRangeOffOff := idDeltaOff + segCountX2
	if idRangeOffOff+segCountX2 > len(sub) {
		return 0
	}
	c16 := uint16(code)
	for seg := 0; seg < segCount; seg++ {
		end := binary.BigEndian.Uint16(sub[endCodeOff+2*seg:])
		if c16 > end {
			continue
		}
		start := binary.BigEndian.Uint16(sub[startCodeOff+2*seg:])
		if c16 < start {
			return 0
		}
		delta := int16(binary.BigEndian.Uint16(sub[idDeltaOff+2*seg:]))
		rangeOff := binary.BigEndian.Uint16(sub[idRangeOffOff+2*seg:])
		if rangeOff == 0 {
			return int(uint16(int32(c16) + int32(delta)))
		}
		glyphIdxAddr := idRangeOffOff + 2*seg + int(rangeOff) + 2*int(c16-start)
		if glyphIdxAddr+2 > len(sub) {
			return 0
		}
		g := binary.BigEndian.Uint16(sub[glyphIdxAddr:])
		if g == 0 {
			return 0
		}
		return int(uint16(int32(g) + int32(delta)))
	}
	return 0
}

func charIndexFormat12(sub []byte, code uint32) int {
	if len(sub) < 16 {
		return 0
	}
	numGroups := binary.BigEndian.Uint32(sub[12:])
	const groupSize = 12
	if len(sub) < 16+int(numGroups)*groupSize {
		return 0
	}
	lo, hi := 0, int(numGroups)
	for lo < hi {
		mid := (lo + hi) / 2
		g := sub[16+mid*groupSize:]
		start := binary.BigEndian.Uint32(g[0:])
		end := binary.BigEndian.Uint32(g[4:])
		switch {
		case code < start:
			hi = mid
		case code > end:
			lo = mid + 1
		default:
			startGlyph := binary.BigEndian.Uint32(g[8:])
			return int(startGlyph + (code - start))
		}
	}
	return 0
}

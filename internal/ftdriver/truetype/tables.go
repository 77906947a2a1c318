package truetype

import (
	"encoding/binary"

	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
	"github.com/foxglyph/ftcore/internal/ftcore/fixed"
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
)

func (fd *faceData) parseHmtx(buf []byte) error {
	n := fd.numberOfHMetrics
	if n < 0 || len(buf) < n*4 {
		return ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
	}
	fd.hmtx = make([]longHorMetric, fd.numGlyphs)
	lastAdvance := uint16(0)
	for i := 0; i < fd.numGlyphs; i++ {
		switch {
		case i < n:
			off := i * 4
			fd.hmtx[i] = longHorMetric{
				advanceWidth: binary.BigEndian.Uint16(buf[off:]),
				lsb:          int16(binary.BigEndian.Uint16(buf[off+2:])),
			}
			lastAdvance = fd.hmtx[i].advanceWidth
		default:
			lsbOff := n*4 + (i-n)*2
			lsb := int16(0)
			if lsbOff+2 <= len(buf) {
				lsb = int16(binary.BigEndian.Uint16(buf[lsbOff:]))
			}
			fd.hmtx[i] = longHorMetric{advanceWidth: lastAdvance, lsb: lsb}
		}
	}
	return nil
}

func (fd *faceData) parseLoca(buf []byte) error {
	n := fd.numGlyphs + 1
	fd.loca = make([]uint32, n)
	if fd.indexToLocFormat == 0 {
		if len(buf) < n*2 {
			return ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
		}
		for i := range fd.loca {
			fd.loca[i] = 2 * uint32(binary.BigEndian.Uint16(buf[2*i:]))
		}
	} else {
		if len(buf) < n*4 {
			return ferrors.New("truetype", ferrors.CodeUnknownFileFormat)
		}
		for i := range fd.loca {
			fd.loca[i] = binary.BigEndian.Uint32(buf[4*i:])
		}
	}
	return nil
}

func bboxFromFUnits(xMin, yMin, xMax, yMax int16) geom.BBox {
	return geom.BBox{
		XMin: fixed.F26Dot6(xMin),
		YMin: fixed.F26Dot6(yMin),
		XMax: fixed.F26Dot6(xMax),
		YMax: fixed.F26Dot6(yMax),
	}
}

// readNameRecord returns the first ASCII/Latin-1-compatible decoding of
// nameID found in the 'name' table (a Windows Unicode BMP record is decoded
// by dropping the high zero byte of each UTF-16BE code unit, adequate for
// the family/style strings western fonts carry); absent the table or
// record, it returns "".
func readNameRecord(fd *faceData, nameID uint16) string {
	buf, ok := fd.table("name")
	if !ok || len(buf) < 6 {
		return ""
	}
	count := int(binary.BigEndian.Uint16(buf[2:]))
	stringOffset := int(binary.BigEndian.Uint16(buf[4:]))
	const recordSize = 12
	for i := 0; i < count; i++ {
		rec := buf[6+i*recordSize:]
		if len(rec) < recordSize {
			break
		}
		platformID := binary.BigEndian.Uint16(rec[0:])
		id := binary.BigEndian.Uint16(rec[6:])
		length := int(binary.BigEndian.Uint16(rec[8:]))
		offset := int(binary.BigEndian.Uint16(rec[10:]))
		if id != nameID {
			continue
		}
		start := stringOffset + offset
		if start < 0 || start+length > len(buf) {
			continue
		}
		raw := buf[start : start+length]
		if platformID == 1 { // Macintosh, already single-byte
			return string(raw)
		}
		// Windows/Unicode: UTF-16BE.
		out := make([]byte, 0, length/2)
		for j := 0; j+1 < len(raw); j += 2 {
			hi, lo := raw[j], raw[j+1]
			if hi == 0 {
				out = append(out, lo)
			} else {
				out = append(out, '?')
			}
		}
		return string(out)
	}
	return ""
}

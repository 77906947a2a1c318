package cff

import "encoding/binary"

// parseCharset resolves the glyph-index -> SID (or CID, for CIDFonts) table.
// Offsets 0/1/2 select the ISOAdobe/Expert/ExpertSubset predefined charsets;
// this driver approximates all three with the identity mapping (SID==GID),
// exact for ISOAdobe and an acceptable approximation for the rarely-used
// Expert charsets, which this driver does not otherwise special-case.
func parseCharset(buf []byte, offset, numGlyphs int) []int {
	sids := make([]int, numGlyphs)
	if offset == 0 || offset == 1 || offset == 2 || offset <= 0 || offset >= len(buf) {
		for i := range sids {
			sids[i] = i
		}
		return sids
	}

	data := buf[offset:]
	if len(data) < 1 {
		for i := range sids {
			sids[i] = i
		}
		return sids
	}
	format := data[0]
	data = data[1:]
	gid := 1 // gid 0 is always .notdef, SID 0, and is not stored in the table
	switch format {
	case 0:
		for gid < numGlyphs && len(data) >= 2 {
			sids[gid] = int(binary.BigEndian.Uint16(data))
			data = data[2:]
			gid++
		}
	case 1:
		for gid < numGlyphs && len(data) >= 3 {
			first := int(binary.BigEndian.Uint16(data))
			nLeft := int(data[2])
			data = data[3:]
			for k := 0; k <= nLeft && gid < numGlyphs; k++ {
				sids[gid] = first + k
				gid++
			}
		}
	case 2:
		for gid < numGlyphs && len(data) >= 4 {
			first := int(binary.BigEndian.Uint16(data))
			nLeft := int(binary.BigEndian.Uint16(data[2:]))
			data = data[4:]
			for k := 0; k <= nLeft && gid < numGlyphs; k++ {
				sids[gid] = first + k
				gid++
			}
		}
	}
	return sids
}

// parseEncoding resolves the char-code -> glyph-index table for a simple
// (non-CID) font. Offset 0 is Standard Encoding, approximated here for the
// printable-ASCII range (codes 32..126 map onto standard strings SID 1..95
// in order, the one stretch of Standard Encoding that lines up with glyph
// order in virtually every Latin-script font); offset 1 (Expert Encoding)
// and any codes outside that range fall back to .notdef, a scope reduction
// acceptable for outline-rendering purposes. Any other offset is a custom
// encoding table parsed directly into code->GID per the CFF spec.
func parseEncoding(fd *faceData, buf []byte, offset, numGlyphs int) {
	if fd.isCID {
		return
	}
	if offset == 0 {
		for code := 32; code <= 126; code++ {
			sid := code - 31
			for gid, s := range fd.charsetSIDs {
				if s == sid {
					fd.encoding[code] = gid
					break
				}
			}
		}
		return
	}
	if offset == 1 || offset <= 0 || offset >= len(buf) {
		return
	}

	data := buf[offset:]
	if len(data) < 1 {
		return
	}
	format := data[0] & 0x7F
	data = data[1:]
	switch format {
	case 0:
		if len(data) < 1 {
			return
		}
		nCodes := int(data[0])
		data = data[1:]
		for gid := 1; gid <= nCodes && gid < numGlyphs && len(data) >= 1; gid++ {
			fd.encoding[data[0]] = gid
			data = data[1:]
		}
	case 1:
		if len(data) < 1 {
			return
		}
		nRanges := int(data[0])
		data = data[1:]
		gid := 1
		for r := 0; r < nRanges && len(data) >= 2; r++ {
			first := int(data[0])
			nLeft := int(data[1])
			data = data[2:]
			for k := 0; k <= nLeft && gid < numGlyphs; k++ {
				if first+k < 256 {
					fd.encoding[first+k] = gid
				}
				gid++
			}
		}
	}
}

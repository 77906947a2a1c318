package type1

import (
	"bytes"
	"strconv"
)

func skipSpace(buf []byte, pos int) int {
	for pos < len(buf) && isPSSpace(buf[pos]) {
		pos++
	}
	return pos
}

func readToken(buf []byte, pos int) (tok string, next int) {
	start := pos
	for pos < len(buf) && !isPSSpace(buf[pos]) {
		pos++
	}
	return string(buf[start:pos]), pos
}

// scanIntAfter finds key and parses the first decimal integer following it
// (e.g. "/lenIV 4 def" -> 4), used for the handful of private-dict scalars
// this driver cares about.
func scanIntAfter(buf []byte, key string) (int, bool) {
	idx := bytes.Index(buf, []byte(key))
	if idx < 0 {
		return 0, false
	}
	pos := skipSpace(buf, idx+len(key))
	start := pos
	neg := false
	if pos < len(buf) && buf[pos] == '-' {
		neg = true
		pos++
	}
	for pos < len(buf) && buf[pos] >= '0' && buf[pos] <= '9' {
		pos++
	}
	if pos == start || (neg && pos == start+1) {
		return 0, false
	}
	v, err := strconv.Atoi(string(buf[start:pos]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// scanCharStrings walks the /CharStrings PostScript dict, pulling out each
// "/name length RD <binary> ND"-shaped entry (the procedure names bound to
// RD/ND vary by font, but this driver only needs their positions, not
// their identity: the token immediately before the binary blob and the one
// immediately after are always exactly those two procedure calls).
func scanCharStrings(priv []byte) (map[string][]byte, []string, error) {
	idx := bytes.Index(priv, []byte("/CharStrings"))
	if idx < 0 {
		return nil, nil, errNotype1Dict
	}
	bi := bytes.Index(priv[idx:], []byte("begin"))
	if bi < 0 {
		return nil, nil, errNotype1Dict
	}
	pos := idx + bi + len("begin")

	out := make(map[string][]byte)
	var names []string
	for {
		pos = skipSpace(priv, pos)
		if pos >= len(priv) || priv[pos] != '/' {
			break
		}
		pos++
		var name string
		name, pos = readToken(priv, pos)
		pos = skipSpace(priv, pos)

		lenStart := pos
		for pos < len(priv) && priv[pos] >= '0' && priv[pos] <= '9' {
			pos++
		}
		if pos == lenStart {
			break
		}
		length, err := strconv.Atoi(string(priv[lenStart:pos]))
		if err != nil {
			break
		}
		pos = skipSpace(priv, pos)
		_, pos = readToken(priv, pos) // RD / -| procedure name
		pos++                         // the single space separating it from binary data
		if pos+length > len(priv) {
			break
		}
		out[name] = priv[pos : pos+length]
		names = append(names, name)
		pos += length
		pos = skipSpace(priv, pos)
		_, pos = readToken(priv, pos) // ND / |- procedure name
	}
	if len(names) == 0 {
		return nil, nil, errNotype1Dict
	}
	promoteNotdef(names)
	return out, names, nil
}

// promoteNotdef moves ".notdef" to glyph index 0 if the font didn't
// already declare it first, matching every other driver's convention that
// gid 0 is always .notdef.
func promoteNotdef(names []string) {
	for i, n := range names {
		if n == ".notdef" {
			if i != 0 {
				names[0], names[i] = names[i], names[0]
			}
			return
		}
	}
}

// scanSubrs walks the /Subrs array, pulling "dup <index> <length> RD
// <binary> NP"-shaped entries into an index-ordered slice.
func scanSubrs(priv []byte) [][]byte {
	idx := bytes.Index(priv, []byte("/Subrs"))
	if idx < 0 {
		return nil
	}
	pos := skipSpace(priv, idx+len("/Subrs"))
	countStart := pos
	for pos < len(priv) && priv[pos] >= '0' && priv[pos] <= '9' {
		pos++
	}
	count, err := strconv.Atoi(string(priv[countStart:pos]))
	if err != nil || count <= 0 {
		return nil
	}
	out := make([][]byte, count)

	for n := 0; n < count; n++ {
		di := bytes.Index(priv[pos:], []byte("dup"))
		if di < 0 {
			break
		}
		pos = skipSpace(priv, pos+di+len("dup"))
		idxStart := pos
		for pos < len(priv) && priv[pos] >= '0' && priv[pos] <= '9' {
			pos++
		}
		subrIdx, err := strconv.Atoi(string(priv[idxStart:pos]))
		if err != nil {
			break
		}
		pos = skipSpace(priv, pos)
		lenStart := pos
		for pos < len(priv) && priv[pos] >= '0' && priv[pos] <= '9' {
			pos++
		}
		length, err := strconv.Atoi(string(priv[lenStart:pos]))
		if err != nil {
			break
		}
		pos = skipSpace(priv, pos)
		_, pos = readToken(priv, pos) // RD / -|
		pos++
		if pos+length > len(priv) || subrIdx < 0 || subrIdx >= count {
			break
		}
		out[subrIdx] = priv[pos : pos+length]
		pos += length
	}
	return out
}

// scanEncoding picks out "dup <code> /<name> put" entries from the
// cleartext header's custom /Encoding array. A font declaring the
// predefined "/Encoding StandardEncoding def" instead carries no such
// entries, and is left with an all-.notdef table: resolving
// StandardEncoding would require embedding Adobe's full code->name table
// for a mapping most callers reach through a wrapping cmap anyway.
func scanEncoding(clear []byte, encoding *[256]string, names []string) {
	idx := bytes.Index(clear, []byte("/Encoding"))
	if idx < 0 {
		return
	}
	end := bytes.Index(clear[idx:], []byte("readonly def"))
	section := clear[idx:]
	if end >= 0 {
		section = clear[idx : idx+end]
	}

	pos := 0
	for {
		di := bytes.Index(section[pos:], []byte("dup "))
		if di < 0 {
			break
		}
		pos = skipSpace(section, pos+di+len("dup"))
		codeStart := pos
		for pos < len(section) && section[pos] >= '0' && section[pos] <= '9' {
			pos++
		}
		if pos == codeStart {
			continue
		}
		code, err := strconv.Atoi(string(section[codeStart:pos]))
		if err != nil || code < 0 || code > 255 {
			continue
		}
		pos = skipSpace(section, pos)
		if pos >= len(section) || section[pos] != '/' {
			continue
		}
		pos++
		var name string
		name, pos = readToken(section, pos)
		encoding[code] = name
	}
}

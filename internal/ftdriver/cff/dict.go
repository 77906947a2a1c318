package cff

import "github.com/foxglyph/ftcore/internal/ftcore/ferrors"

// dictKey packs a DICT operator into one int: single-byte operators (0-21,
// 23-27, excluding the reserved 28-30 number-encoding prefixes) are used
// as-is, escape operators (12 <b1>) are packed as 1200+b1, matching the CFF
// spec's own two-tier operator space.
type dictKey int

const (
	opCharset        dictKey = 15
	opEncoding       dictKey = 16
	opCharStrings    dictKey = 17
	opPrivate        dictKey = 18
	opSubrs          dictKey = 19
	opDefaultWidthX  dictKey = 20
	opNominalWidthX  dictKey = 21
	opROS            dictKey = 1230
	opCharstringType dictKey = 1206
	opFDArray        dictKey = 1236
	opFDSelect       dictKey = 1237
)

// parseDict decodes a CFF DICT into operator -> operand list. Operands
// accumulate until an operator byte is seen, then are filed under that
// operator and cleared, per the Top DICT / Private DICT grammar shared by
// both dictionary kinds in the CFF spec.
func parseDict(data []byte) (map[dictKey][]float64, error) {
	out := make(map[dictKey][]float64)
	var operands []float64

	i := 0
	for i < len(data) {
		b0 := data[i]
		switch {
		case b0 == 12:
			if i+1 >= len(data) {
				return nil, ferrors.New("cff", ferrors.CodeUnknownFileFormat)
			}
			out[dictKey(1200+int(data[i+1]))] = operands
			operands = nil
			i += 2
		case b0 <= 21:
			out[dictKey(b0)] = operands
			operands = nil
			i++
		case b0 == 28:
			if i+3 > len(data) {
				return nil, ferrors.New("cff", ferrors.CodeUnknownFileFormat)
			}
			v := int16(uint16(data[i+1])<<8 | uint16(data[i+2]))
			operands = append(operands, float64(v))
			i += 3
		case b0 == 29:
			if i+5 > len(data) {
				return nil, ferrors.New("cff", ferrors.CodeUnknownFileFormat)
			}
			v := int32(uint32(data[i+1])<<24 | uint32(data[i+2])<<16 | uint32(data[i+3])<<8 | uint32(data[i+4]))
			operands = append(operands, float64(v))
			i += 5
		case b0 == 30:
			v, n, err := parseReal(data[i+1:])
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
			i += 1 + n
		case b0 >= 32 && b0 <= 246:
			operands = append(operands, float64(int(b0)-139))
			i++
		case b0 >= 247 && b0 <= 250:
			if i+2 > len(data) {
				return nil, ferrors.New("cff", ferrors.CodeUnknownFileFormat)
			}
			operands = append(operands, float64((int(b0)-247)*256+int(data[i+1])+108))
			i += 2
		case b0 >= 251 && b0 <= 254:
			if i+2 > len(data) {
				return nil, ferrors.New("cff", ferrors.CodeUnknownFileFormat)
			}
			operands = append(operands, float64(-(int(b0)-251)*256-int(data[i+1])-108))
			i += 2
		default:
			return nil, ferrors.New("cff", ferrors.CodeUnknownFileFormat)
		}
	}
	return out, nil
}

// parseReal decodes a real-number operand's packed BCD nibbles, terminated
// by nibble 0xf, returning the value and the number of bytes consumed.
func parseReal(data []byte) (float64, int, error) {
	var s []byte
	n := 0
	for n < len(data) {
		b := data[n]
		n++
		hi, lo := b>>4, b&0xF
		done := false
		for _, nib := range [2]byte{hi, lo} {
			switch {
			case nib <= 9:
				s = append(s, '0'+nib)
			case nib == 0xa:
				s = append(s, '.')
			case nib == 0xb:
				s = append(s, 'E')
			case nib == 0xc:
				s = append(s, 'E', '-')
			case nib == 0xe:
				s = append(s, '-')
			case nib == 0xf:
				done = true
			}
			if done {
				break
			}
		}
		if done {
			break
		}
	}
	v := parseFloatLenient(string(s))
	return v, n, nil
}

// parseFloatLenient parses the ASCII form produced by parseReal; a
// malformed DICT real (truncated or empty) resolves to 0 rather than
// failing the whole font, since font matrix / misc numeric DICT entries
// are non-essential to outline decoding.
func parseFloatLenient(s string) float64 {
	if s == "" {
		return 0
	}
	var v float64
	var sign float64 = 1
	i := 0
	if s[i] == '-' {
		sign = -1
		i++
	}
	intPart := 0.0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		intPart = intPart*10 + float64(s[i]-'0')
	}
	v = intPart
	if i < len(s) && s[i] == '.' {
		i++
		frac := 0.0
		scale := 1.0
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			frac = frac*10 + float64(s[i]-'0')
			scale *= 10
		}
		v += frac / scale
	}
	return sign * v
}

func dictInt(d map[dictKey][]float64, key dictKey, def int) int {
	if v, ok := d[key]; ok && len(v) > 0 {
		return int(v[len(v)-1])
	}
	return def
}

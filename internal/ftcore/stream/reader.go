package stream

import "github.com/foxglyph/ftcore/internal/ftcore/ferrors"

// Reader layers typed big/little-endian field access and frame-based bulk
// reads on top of a Stream, mirroring FT_Stream's FT_Frame_Enter/Exit and
// FT_GET_* macro family.
type Reader struct {
	s   Stream
	pos int64

	frame    []byte
	frameOff int64
	inFrame  bool
}

// NewReader builds a Reader positioned at the start of s.
func NewReader(s Stream) *Reader {
	return &Reader{s: s}
}

// Pos returns the current stream position.
func (r *Reader) Pos() int64 { return r.pos }

// Seek moves the current position to an absolute offset.
func (r *Reader) Seek(pos int64) error {
	if pos < 0 || pos > r.s.Size() {
		return ferrors.New("stream", ferrors.CodeInvalidStreamOperation)
	}
	r.pos = pos
	return nil
}

// Skip advances the current position by delta bytes.
func (r *Reader) Skip(delta int64) error { return r.Seek(r.pos + delta) }

// EnterFrame loads n bytes at the current position into an internal buffer
// for fast sequential access, matching FT_Frame_Enter. Nested frame access
// is rejected since FreeType's own frame stack is strictly single-depth.
func (r *Reader) EnterFrame(n int) error {
	if r.inFrame {
		return ferrors.New("stream", ferrors.CodeNestedFrameAccess)
	}
	buf := make([]byte, n)
	if err := r.s.Read(r.pos, buf); err != nil {
		return err
	}
	r.frame = buf
	r.frameOff = r.pos
	r.inFrame = true
	return nil
}

// ExitFrame releases the frame buffer entered by EnterFrame and advances the
// stream position past it.
func (r *Reader) ExitFrame() error {
	if !r.inFrame {
		return ferrors.New("stream", ferrors.CodeInvalidFrameOperation)
	}
	r.pos = r.frameOff + int64(len(r.frame))
	r.frame = nil
	r.inFrame = false
	return nil
}

func (r *Reader) frameSlice(n int) ([]byte, error) {
	if !r.inFrame {
		buf := make([]byte, n)
		if err := r.s.Read(r.pos, buf); err != nil {
			return nil, err
		}
		r.pos += int64(n)
		return buf, nil
	}
	off := r.pos - r.frameOff
	if off < 0 || off+int64(n) > int64(len(r.frame)) {
		return nil, ferrors.New("stream", ferrors.CodeInvalidFrameOperation)
	}
	r.pos += int64(n)
	return r.frame[off : off+int64(n)], nil
}

// GetChar reads a single byte.
func (r *Reader) GetChar() (byte, error) {
	b, err := r.frameSlice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// GetUShortBE reads a big-endian uint16.
func (r *Reader) GetUShortBE() (uint16, error) {
	b, err := r.frameSlice(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// GetUShortLE reads a little-endian uint16.
func (r *Reader) GetUShortLE() (uint16, error) {
	b, err := r.frameSlice(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// GetShortBE reads a big-endian sign-extended int16.
func (r *Reader) GetShortBE() (int16, error) {
	v, err := r.GetUShortBE()
	return int16(v), err
}

// GetULongBE reads a big-endian uint32.
func (r *Reader) GetULongBE() (uint32, error) {
	b, err := r.frameSlice(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// GetULongLE reads a little-endian uint32.
func (r *Reader) GetULongLE() (uint32, error) {
	b, err := r.frameSlice(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0]), nil
}

// GetLongBE reads a big-endian sign-extended int32.
func (r *Reader) GetLongBE() (int32, error) {
	v, err := r.GetULongBE()
	return int32(v), err
}

// GetOffset24BE reads a big-endian 24-bit unsigned offset, the format CFF
// INDEX structures use for their offset arrays.
func (r *Reader) GetOffset24BE() (uint32, error) {
	b, err := r.frameSlice(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// Field describes one entry of a structured bulk read executed by ReadFields.
type Field struct {
	Size int // 1, 2, 3, or 4 bytes
	Dest *uint32
}

// ReadFields executes a sequence of same-endianness field reads against the
// current frame, analogous to FreeType's FT_STRUCTURE/FT_FRAME_START field
// tables, without needing a reflection-based struct tag reader.
func (r *Reader) ReadFields(fields []Field) error {
	for _, f := range fields {
		var v uint32
		var err error
		switch f.Size {
		case 1:
			var b byte
			b, err = r.GetChar()
			v = uint32(b)
		case 2:
			var u uint16
			u, err = r.GetUShortBE()
			v = uint32(u)
		case 3:
			v, err = r.GetOffset24BE()
		case 4:
			v, err = r.GetULongBE()
		default:
			err = ferrors.New("stream", ferrors.CodeInvalidArgument)
		}
		if err != nil {
			return err
		}
		if f.Dest != nil {
			*f.Dest = v
		}
	}
	return nil
}

// Bytes reads n raw bytes at the current position, advancing past them.
func (r *Reader) Bytes(n int) ([]byte, error) {
	s, err := r.frameSlice(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s)
	return out, nil
}

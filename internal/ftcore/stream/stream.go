// Package stream provides the seekable byte-stream abstraction that drivers
// use to read font file data, with frame-based structured reads mirroring
// FreeType's FT_Stream/FT_Frame API. MemoryStream aliases an in-memory
// buffer directly; DiskStream maps a file with golang.org/x/sys on unix and
// otherwise reads through plain ReadAt calls.
package stream

import (
	"io"

	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
)

// Stream is a seekable source of font file bytes.
type Stream interface {
	// Size returns the total stream length in bytes.
	Size() int64
	// Read fills buf starting at absolute position pos.
	Read(pos int64, buf []byte) error
	// Close releases any resources (mapped memory, open file handle).
	Close() error
}

// MemoryStream wraps a byte slice the caller already owns; reads alias the
// backing array with no copy.
type MemoryStream struct {
	data []byte
}

// NewMemoryStream wraps data as a Stream. The caller must not mutate data
// for the lifetime of the stream.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{data: data}
}

func (m *MemoryStream) Size() int64 { return int64(len(m.data)) }

func (m *MemoryStream) Read(pos int64, buf []byte) error {
	if pos < 0 || pos > int64(len(m.data)) {
		return ferrors.New("stream", ferrors.CodeInvalidStreamOperation)
	}
	n := copy(buf, m.data[pos:])
	if n < len(buf) {
		return ferrors.Newf("stream", ferrors.CodeInvalidStreamOperation, "short read: got %d, want %d", n, len(buf))
	}
	return nil
}

func (m *MemoryStream) Close() error { return nil }

// Slice returns a zero-copy view of n bytes at pos, valid as long as the
// underlying buffer lives. Used by the frame-enter fast path when the
// stream is already fully resident.
func (m *MemoryStream) Slice(pos int64, n int) ([]byte, error) {
	if pos < 0 || pos+int64(n) > int64(len(m.data)) {
		return nil, ferrors.New("stream", ferrors.CodeInvalidStreamOperation)
	}
	return m.data[pos : pos+int64(n)], nil
}

// DiskStream reads from an io.ReaderAt, typically an *os.File. Platform
// mmap acceleration lives in stream_unix.go / stream_other.go behind the
// diskBacking interface so this file stays build-tag free.
type DiskStream struct {
	ra   io.ReaderAt
	size int64
	back diskBacking // non-nil if memory-mapped
}

// diskBacking exposes a zero-copy view into a mapped file, or nil when the
// platform fallback (ReadAt) is in effect.
type diskBacking interface {
	slice(pos int64, n int) ([]byte, bool)
	close() error
}

// OpenDisk wraps an already-open ReaderAt of the given size as a Stream,
// attempting to memory-map it via mapFile when supported.
func OpenDisk(ra io.ReaderAt, size int64) *DiskStream {
	d := &DiskStream{ra: ra, size: size}
	if mapper, ok := ra.(interface{ Fd() uintptr }); ok {
		if b, err := mapFile(mapper.Fd(), size); err == nil {
			d.back = b
		}
	}
	return d
}

func (d *DiskStream) Size() int64 { return d.size }

func (d *DiskStream) Read(pos int64, buf []byte) error {
	if pos < 0 || pos > d.size {
		return ferrors.New("stream", ferrors.CodeInvalidStreamOperation)
	}
	if d.back != nil {
		if s, ok := d.back.slice(pos, len(buf)); ok {
			copy(buf, s)
			return nil
		}
	}
	n, err := d.ra.ReadAt(buf, pos)
	if err != nil && err != io.EOF {
		return ferrors.Newf("stream", ferrors.CodeInvalidStreamOperation, "%v", err)
	}
	if n < len(buf) {
		return ferrors.Newf("stream", ferrors.CodeInvalidStreamOperation, "short read: got %d, want %d", n, len(buf))
	}
	return nil
}

func (d *DiskStream) Close() error {
	if d.back != nil {
		return d.back.close()
	}
	return nil
}

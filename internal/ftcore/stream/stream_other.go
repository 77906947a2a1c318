//go:build !unix

package stream

import "errors"

// mapFile is unavailable on non-unix platforms; DiskStream falls back to
// plain ReadAt calls.
func mapFile(fd uintptr, size int64) (diskBacking, error) {
	return nil, errors.New("mmap not supported on this platform")
}

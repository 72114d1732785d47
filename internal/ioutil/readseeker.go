// Package ioutil adapts a memory-mapped io.ReaderAt (golang.org/x/exp/mmap)
// into the io.ReadSeeker the bgzf.Cursor requires, since mmap.ReaderAt
// offers only positioned reads.
package ioutil

import (
	"fmt"
	"io"
)

// ReaderAtSeeker turns an io.ReaderAt of known length into an io.ReadSeeker
// by tracking a cursor position locally; it adds no buffering or copying
// beyond what ReadAt itself performs.
type ReaderAtSeeker struct {
	ra   io.ReaderAt
	size int64
	pos  int64
}

// NewReaderAtSeeker wraps ra, whose backing data is size bytes long.
func NewReaderAtSeeker(ra io.ReaderAt, size int64) *ReaderAtSeeker {
	return &ReaderAtSeeker{ra: ra, size: size}
}

func (s *ReaderAtSeeker) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}
	n, err := s.ra.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (s *ReaderAtSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, fmt.Errorf("ioutil: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("ioutil: negative seek position %d", abs)
	}
	s.pos = abs
	return abs, nil
}

// Size returns the total length of the backing data.
func (s *ReaderAtSeeker) Size() int64 { return s.size }

// ReadAt delegates directly to the wrapped io.ReaderAt, leaving the
// Read/Seek cursor untouched.
func (s *ReaderAtSeeker) ReadAt(p []byte, off int64) (int, error) {
	return s.ra.ReadAt(p, off)
}

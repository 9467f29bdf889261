package reader

import (
	"io"

	"github.com/edsrzf/mmap-go"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/segment"
)

// mmapSource maps the whole file read-only and copies each block into a
// pooled buffer, so segments stay valid after the mapping is released.
type mmapSource struct {
	r      *Reader
	data   mmap.MMap
	offset int
}

func (s *mmapSource) open() (int64, error) {
	f, size, err := s.r.openFile()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	// Mapping a zero-length file fails on most platforms.
	if size == 0 {
		return 0, nil
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return 0, errors.IO("mmap", s.r.path, err)
	}
	s.data = data
	return size, nil
}

func (s *mmapSource) fill(seg *segment.Segment) (int, error) {
	if s.offset >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(seg.Bytes(), s.data[s.offset:])
	s.offset += n
	return n, nil
}

func (s *mmapSource) close() error {
	if s.data == nil {
		return nil
	}
	err := s.data.Unmap()
	s.data = nil
	return err
}

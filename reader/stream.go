package reader

import (
	"io"
	"os"

	"github.com/kbukum/filesig/segment"
)

// streamSource reads blocks with io.ReadFull so a short read only happens at
// end of file.
type streamSource struct {
	r *Reader
	f *os.File
}

func (s *streamSource) open() (int64, error) {
	f, size, err := s.r.openFile()
	if err != nil {
		return 0, err
	}
	s.f = f
	adviseSequential(f, size)
	return size, nil
}

func (s *streamSource) fill(seg *segment.Segment) (int, error) {
	n, err := io.ReadFull(s.f, seg.Bytes())
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

func (s *streamSource) close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}

package segment

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
)

// Segment is one indexed chunk of bytes: a raw file block or its digest.
type Segment struct {
	// Index is the zero-based block number assigned by the reader.
	Index uint32

	data     []byte
	pool     *Pool
	released atomic.Bool
}

// New wraps data in an unpooled Segment. Release on it only marks it released.
func New(index uint32, data []byte) *Segment {
	return &Segment{Index: index, data: data}
}

// Bytes returns the segment content. The slice is only valid until Release.
func (s *Segment) Bytes() []byte { return s.data }

// Len returns the content length.
func (s *Segment) Len() int { return len(s.data) }

// Truncate shortens the content to n bytes, used for the short last block.
func (s *Segment) Truncate(n int) {
	if n < 0 || n > len(s.data) {
		panic(fmt.Sprintf("segment: truncate %d out of range [0, %d]", n, len(s.data)))
	}
	s.data = s.data[:n]
}

// Released reports whether Release has been called.
func (s *Segment) Released() bool { return s.released.Load() }

// Release returns the buffer to its pool. Only the first call has an effect.
func (s *Segment) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	if s.pool != nil {
		s.pool.put(s.data)
	}
	s.data = nil
}

// Hex returns the content as upper-case hexadecimal.
func (s *Segment) Hex() string {
	return strings.ToUpper(hex.EncodeToString(s.data))
}

// String formats the segment as a signature line: "00000042: 9F86D0...".
func (s *Segment) String() string {
	return fmt.Sprintf("%08d: %s", s.Index, s.Hex())
}

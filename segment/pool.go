package segment

import (
	"sync"
	"sync/atomic"
)

// Pool hands out fixed-capacity buffers for raw blocks and takes them back
// on Release. Outstanding tracks buffers currently checked out so callers
// can assert that every path released what it acquired.
type Pool struct {
	size        int
	buffers     sync.Pool
	outstanding atomic.Int64
	allocated   atomic.Int64
}

// NewPool creates a pool of buffers of the given size in bytes.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.buffers.New = func() any {
		p.allocated.Add(1)
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// Size returns the buffer size handed out by this pool.
func (p *Pool) Size() int { return p.size }

// Acquire checks out a full-size buffer wrapped in a Segment with the given index.
func (p *Pool) Acquire(index uint32) *Segment {
	buf := p.buffers.Get().(*[]byte)
	p.outstanding.Add(1)
	return &Segment{Index: index, data: (*buf)[:p.size], pool: p}
}

// Outstanding returns how many acquired segments have not been released.
func (p *Pool) Outstanding() int64 { return p.outstanding.Load() }

// Allocated returns how many buffers the pool has ever allocated.
func (p *Pool) Allocated() int64 { return p.allocated.Load() }

func (p *Pool) put(buf []byte) {
	p.outstanding.Add(-1)
	if cap(buf) < p.size {
		return
	}
	buf = buf[:p.size]
	p.buffers.Put(&buf)
}

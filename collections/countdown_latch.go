package collections

import (
	"context"
	"sync"

	"github.com/kbukum/filesig/errors"
)

// CountdownLatch releases its waiters once CountDown has been called the
// number of times it was created with.
type CountdownLatch struct {
	mu    sync.Mutex
	count int
	done  chan struct{}
}

// NewCountdownLatch creates a latch that opens after n count-downs. A latch
// created with zero is already open.
func NewCountdownLatch(n int) (*CountdownLatch, error) {
	if n < 0 {
		return nil, errors.InvalidArgument("count", "must not be negative")
	}
	l := &CountdownLatch{count: n, done: make(chan struct{})}
	if n == 0 {
		close(l.done)
	}
	return l, nil
}

// CountDown decrements the count and opens the latch when it reaches zero.
// Extra calls after the latch is open are ignored.
func (l *CountdownLatch) CountDown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return
	}
	l.count--
	if l.count == 0 {
		close(l.done)
	}
}

// Count returns the remaining count.
func (l *CountdownLatch) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Done returns a channel that is closed when the latch opens.
func (l *CountdownLatch) Done() <-chan struct{} { return l.done }

// Wait blocks until the latch opens or ctx ends.
func (l *CountdownLatch) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	default:
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return errors.Cancelled(context.Cause(ctx))
	}
}

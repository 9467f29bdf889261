package collections

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/pipeline"
)

// node is a singly linked queue cell. The queue keeps a sentinel at head
// whose value is always zero.
type node[T any] struct {
	value T
	next  *node[T]
}

// BoundedQueue is a capacity-limited blocking FIFO with separate locks for
// the enqueue and dequeue sides.
//
// Producers only take putMu and touch tail; consumers only take takeMu and
// touch head. The shared element count is atomic. A producer that turns an
// empty queue non-empty takes takeMu afterwards to signal one consumer, and a
// consumer that frees a slot in a full queue takes putMu afterwards to signal
// one producer. Neither side ever holds both locks.
type BoundedQueue[T any] struct {
	capacity int64
	count    atomic.Int64

	putMu   sync.Mutex
	notFull *sync.Cond
	tail    *node[T]

	takeMu   sync.Mutex
	notEmpty *sync.Cond
	head     *node[T]

	completed atomic.Bool
}

// NewBoundedQueue creates a queue that holds at most capacity items.
func NewBoundedQueue[T any](capacity int) (*BoundedQueue[T], error) {
	if capacity <= 0 {
		return nil, errors.InvalidArgument("capacity", "must be positive")
	}
	sentinel := &node[T]{}
	q := &BoundedQueue[T]{
		capacity: int64(capacity),
		head:     sentinel,
		tail:     sentinel,
	}
	q.notFull = sync.NewCond(&q.putMu)
	q.notEmpty = sync.NewCond(&q.takeMu)
	return q, nil
}

// Cap returns the queue capacity.
func (q *BoundedQueue[T]) Cap() int { return int(q.capacity) }

// Len returns the number of queued items.
func (q *BoundedQueue[T]) Len() int { return int(q.count.Load()) }

// Completed reports whether Complete has been called.
func (q *BoundedQueue[T]) Completed() bool { return q.completed.Load() }

// Push appends item, blocking while the queue is full. It fails with an
// invalid-state error once the queue is completed and with a cancellation
// error if ctx ends while waiting. On failure the caller keeps ownership of
// item.
func (q *BoundedQueue[T]) Push(ctx context.Context, item T) error {
	if q.completed.Load() {
		return errQueueCompleted()
	}

	q.putMu.Lock()
	var stop func() bool
	for q.count.Load() == q.capacity {
		if q.completed.Load() {
			q.putMu.Unlock()
			releaseWake(stop)
			return errQueueCompleted()
		}
		if ctx.Err() != nil {
			q.putMu.Unlock()
			releaseWake(stop)
			return errors.Cancelled(context.Cause(ctx))
		}
		if stop == nil {
			stop = wakeOnDone(ctx, &q.putMu, q.notFull)
		}
		q.notFull.Wait()
	}
	if q.completed.Load() {
		q.putMu.Unlock()
		releaseWake(stop)
		return errQueueCompleted()
	}

	n := &node[T]{value: item}
	q.tail.next = n
	q.tail = n
	c := q.count.Add(1) - 1
	if c+1 < q.capacity {
		q.notFull.Signal()
	}
	q.putMu.Unlock()
	releaseWake(stop)

	if c == 0 {
		q.signalNotEmpty()
	}
	return nil
}

// Pop removes the oldest item, blocking while the queue is empty and not
// completed. It returns ok=false once the queue is empty and completed.
func (q *BoundedQueue[T]) Pop(ctx context.Context) (item T, ok bool, err error) {
	q.takeMu.Lock()
	var stop func() bool
	for q.count.Load() == 0 {
		if q.completed.Load() {
			// Recheck after observing completion: a push may have landed
			// between the count load and the flag load.
			if q.count.Load() != 0 {
				break
			}
			q.takeMu.Unlock()
			releaseWake(stop)
			return item, false, nil
		}
		if ctx.Err() != nil {
			q.takeMu.Unlock()
			releaseWake(stop)
			return item, false, errors.Cancelled(context.Cause(ctx))
		}
		if stop == nil {
			stop = wakeOnDone(ctx, &q.takeMu, q.notEmpty)
		}
		q.notEmpty.Wait()
	}

	first := q.head.next
	item = first.value
	var zero T
	first.value = zero
	q.head = first
	c := q.count.Add(-1) + 1
	if c > 1 {
		q.notEmpty.Signal()
	}
	q.takeMu.Unlock()
	releaseWake(stop)

	if c == q.capacity {
		q.signalNotFull()
	}
	return item, true, nil
}

// Complete marks that no further items will be pushed and wakes every
// blocked producer and consumer. A second call fails with invalid-state.
func (q *BoundedQueue[T]) Complete() error {
	// The flag flips under putMu so a push either lands before completion
	// (and is counted before a consumer can observe the flag) or fails.
	q.putMu.Lock()
	if !q.completed.CompareAndSwap(false, true) {
		q.putMu.Unlock()
		return errQueueCompleted()
	}
	q.notFull.Broadcast()
	q.putMu.Unlock()

	q.takeMu.Lock()
	q.notEmpty.Broadcast()
	q.takeMu.Unlock()
	return nil
}

// Drain returns a single-pass iterator that pops items until the queue is
// empty and completed. Close has no effect on the queue.
func (q *BoundedQueue[T]) Drain() pipeline.Iterator[T] {
	return pipeline.NewIterator(q.Pop, nil)
}

// Discard removes every queued item without blocking and passes each to fn.
// It is meant for teardown after all producers and consumers have stopped.
func (q *BoundedQueue[T]) Discard(fn func(T)) int {
	n := 0
	for {
		q.takeMu.Lock()
		if q.count.Load() == 0 {
			q.takeMu.Unlock()
			return n
		}
		first := q.head.next
		item := first.value
		var zero T
		first.value = zero
		q.head = first
		c := q.count.Add(-1) + 1
		q.takeMu.Unlock()

		if c == q.capacity {
			q.signalNotFull()
		}
		if fn != nil {
			fn(item)
		}
		n++
	}
}

func (q *BoundedQueue[T]) signalNotEmpty() {
	q.takeMu.Lock()
	q.notEmpty.Signal()
	q.takeMu.Unlock()
}

func (q *BoundedQueue[T]) signalNotFull() {
	q.putMu.Lock()
	q.notFull.Signal()
	q.putMu.Unlock()
}

func errQueueCompleted() error {
	return errors.InvalidState("queue is already completed")
}

// wakeOnDone arranges for every waiter on cond to be woken when ctx ends.
// The broadcast takes mu, so a waiter that checked ctx under mu and then
// called Wait cannot miss it.
func wakeOnDone(ctx context.Context, mu *sync.Mutex, cond *sync.Cond) func() bool {
	return context.AfterFunc(ctx, func() {
		mu.Lock()
		cond.Broadcast()
		mu.Unlock()
	})
}

func releaseWake(stop func() bool) {
	if stop != nil {
		stop()
	}
}

package collections

import (
	"context"
	"iter"
	"sync"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/pipeline"
)

// OrderedCollector accepts values keyed by K in any order and hands them back
// in the order the consumer asks for them.
//
// Inserts never block. Take blocks on a condition variable until the key
// arrives, the collector is completed, or the context ends. A value is
// removed when it is taken, so memory is bounded by the number of
// out-of-order values not yet consumed.
type OrderedCollector[K comparable, V any] struct {
	mu        sync.Mutex
	changed   *sync.Cond
	values    map[K]V
	completed bool
}

// NewOrderedCollector creates an empty collector. sizeHint preallocates the
// map; zero is fine.
func NewOrderedCollector[K comparable, V any](sizeHint int) *OrderedCollector[K, V] {
	c := &OrderedCollector[K, V]{values: make(map[K]V, sizeHint)}
	c.changed = sync.NewCond(&c.mu)
	return c
}

// Insert stores value under key. It fails with invalid-state after Complete
// or if key is already present.
func (c *OrderedCollector[K, V]) Insert(key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed {
		return errors.InvalidState("collector is already completed")
	}
	if _, exists := c.values[key]; exists {
		return errors.InvalidState("duplicate key inserted into collector").WithDetail("key", key)
	}
	c.values[key] = value
	c.changed.Broadcast()
	return nil
}

// Complete marks that no further inserts will happen. Calling it twice is a
// logic error and fails with invalid-state.
func (c *OrderedCollector[K, V]) Complete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed {
		return errors.InvalidState("collector is already completed")
	}
	c.completed = true
	c.changed.Broadcast()
	return nil
}

// Completed reports whether Complete has been called.
func (c *OrderedCollector[K, V]) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Len returns the number of values waiting to be taken.
func (c *OrderedCollector[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// Take removes and returns the value for key, blocking until it is present.
// It returns ok=false if the collector is completed and key is absent, and a
// cancellation error if ctx ends first.
func (c *OrderedCollector[K, V]) Take(ctx context.Context, key K) (value V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stop func() bool
	defer func() { releaseWake(stop) }()

	for {
		if v, present := c.values[key]; present {
			delete(c.values, key)
			return v, true, nil
		}
		if c.completed {
			return value, false, nil
		}
		if ctx.Err() != nil {
			return value, false, errors.Cancelled(context.Cause(ctx))
		}
		if stop == nil {
			stop = wakeOnDone(ctx, &c.mu, c.changed)
		}
		c.changed.Wait()
	}
}

// TakeInOrder returns a single-pass iterator that takes each key of keys in
// turn and stops at the first key that will never arrive.
func (c *OrderedCollector[K, V]) TakeInOrder(keys iter.Seq[K]) pipeline.Iterator[V] {
	nextKey, stop := iter.Pull(keys)
	done := false
	return pipeline.NewIterator(func(ctx context.Context) (V, bool, error) {
		var zero V
		if done {
			return zero, false, nil
		}
		key, more := nextKey()
		if !more {
			done = true
			return zero, false, nil
		}
		v, ok, err := c.Take(ctx, key)
		if err != nil || !ok {
			done = true
			return zero, false, err
		}
		return v, true, nil
	}, func() error {
		done = true
		stop()
		return nil
	})
}

// Discard removes every stored value and passes each to fn.
func (c *OrderedCollector[K, V]) Discard(fn func(V)) int {
	c.mu.Lock()
	values := c.values
	c.values = make(map[K]V)
	c.mu.Unlock()

	for _, v := range values {
		if fn != nil {
			fn(v)
		}
	}
	return len(values)
}

package pipeline

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// funcIter adapts a pair of functions to Iterator.
type funcIter[T any] struct {
	next   func(ctx context.Context) (T, bool, error)
	closer func() error
}

// NewIterator builds an Iterator from a next function and an optional closer.
func NewIterator[T any](next func(ctx context.Context) (T, bool, error), closer func() error) Iterator[T] {
	return &funcIter[T]{next: next, closer: closer}
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	return it.next(ctx)
}

func (it *funcIter[T]) Close() error {
	if it.closer != nil {
		return it.closer()
	}
	return nil
}

// --- Constructors ---

// FromSlice creates an iterator over a slice of values.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromSeq creates an iterator over a range-over-func sequence. The sequence
// is pulled lazily; Close stops it.
func FromSeq[T any](seq iter.Seq[T]) Iterator[T] {
	next, stop := iter.Pull(seq)
	return &funcIter[T]{
		next: func(ctx context.Context) (T, bool, error) {
			if err := ctx.Err(); err != nil {
				var zero T
				return zero, false, err
			}
			v, ok := next()
			return v, ok, nil
		},
		closer: func() error {
			stop()
			return nil
		},
	}
}

// Counter returns the unbounded sequence 0, 1, 2, ...
func Counter() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := uint32(0); ; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// --- Terminals ---

// Collect drains the iterator and returns all values as a slice. The
// iterator is closed on return.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach pulls all values and calls fn for each. The iterator is closed on
// return, including when fn fails.
func ForEach[T any](ctx context.Context, it Iterator[T], fn func(context.Context, T) error) error {
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, val); err != nil {
			return err
		}
	}
}

// Count drains the iterator and returns the number of values seen.
func Count[T any](ctx context.Context, it Iterator[T]) (int, error) {
	n := 0
	err := ForEach(ctx, it, func(context.Context, T) error {
		n++
		return nil
	})
	return n, err
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

package pipeline

import "context"

// Map transforms each value using fn. Close is forwarded to the source.
func Map[I, O any](source Iterator[I], fn func(context.Context, I) (O, error)) Iterator[O] {
	return &mapIter[I, O]{source: source, fn: fn}
}

// Tap calls fn as a side-effect for each value, then passes the value through
// unchanged. Use for progress reporting and metrics.
func Tap[T any](source Iterator[T], fn func(context.Context, T) error) Iterator[T] {
	return &tapIter[T]{source: source, fn: fn}
}

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return result, false, err
	}
	result, err = it.fn(ctx, val)
	if err != nil {
		return result, false, err
	}
	return result, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := it.fn(ctx, val); err != nil {
		return result, false, err
	}
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }

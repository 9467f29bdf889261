package scheduler

import (
	"context"
	"sync"
)

// LifetimeManager is asked to stop the enclosing run when a worker faults.
type LifetimeManager interface {
	RequestCancellation(cause error)
}

// LifetimeFunc adapts a function to LifetimeManager. A context.CancelCauseFunc
// converts directly: LifetimeFunc(cancel).
type LifetimeFunc func(cause error)

// RequestCancellation calls f(cause).
func (f LifetimeFunc) RequestCancellation(cause error) { f(cause) }

// FromCancel returns a LifetimeManager that cancels a context with the fault
// as its cause.
func FromCancel(cancel context.CancelCauseFunc) LifetimeManager {
	return LifetimeFunc(cancel)
}

// Token is a LifetimeManager that records the first cancellation request.
// It is useful where no context owns the run, and in tests.
type Token struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	cause error
}

// NewToken creates an unrequested token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// RequestCancellation records cause and closes Done. Later calls are ignored.
func (t *Token) RequestCancellation(cause error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.cause = cause
		t.mu.Unlock()
		close(t.done)
	})
}

// Done is closed once cancellation has been requested.
func (t *Token) Done() <-chan struct{} { return t.done }

// Requested reports whether cancellation has been requested.
func (t *Token) Requested() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Cause returns the cause passed to the first request, or nil.
func (t *Token) Cause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cause
}

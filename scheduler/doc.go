// Package scheduler runs named background work on a fixed number of
// goroutines and centralizes what happens when that work fails.
//
// A failing or panicking worker never crashes the process: the failure is
// logged with the worker name, wrapped in a WORKER_FAULT error and handed to
// the scheduler's LifetimeManager, which cancels the run so sibling workers
// unwind. Workers that return a cancellation error end quietly.
//
//	ctx, cancel := context.WithCancelCause(parent)
//	s := scheduler.New(scheduler.FromCancel(cancel))
//	_ = s.Run(ctx, "hash", 4, hashWorker)
//	if err := s.Wait(); err != nil {
//	    // first fault
//	}
package scheduler

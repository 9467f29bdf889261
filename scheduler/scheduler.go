package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/logger"
)

// Work is one unit of background work. Each goroutine started by Run calls it
// once with the context it was given.
type Work func(ctx context.Context) error

// FaultHook observes every worker fault after it has been logged.
type FaultHook func(name string, err error)

// Scheduler starts named work on a fixed number of goroutines, turns every
// failure into a logged WORKER_FAULT and escalates it to its LifetimeManager.
// A Scheduler serves one run; Wait joins everything started so far.
type Scheduler struct {
	lifetime LifetimeManager
	log      *logger.Logger
	onFault  FaultHook

	group  errgroup.Group
	active atomic.Int64

	mu    sync.Mutex
	fault error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for worker lifecycle and fault messages.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFaultHook registers a callback invoked for every worker fault.
func WithFaultHook(h FaultHook) Option {
	return func(s *Scheduler) { s.onFault = h }
}

// New creates a scheduler that escalates faults to lifetime.
func New(lifetime LifetimeManager, opts ...Option) *Scheduler {
	s := &Scheduler{
		lifetime: lifetime,
		log:      logger.Get("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts degree goroutines each calling work(ctx) and returns at once.
// Cancellation returned by work ends a goroutine quietly. Any other error or
// a panic is recorded as a fault and triggers cancellation of the run.
func (s *Scheduler) Run(ctx context.Context, name string, degree int, work Work) error {
	if degree <= 0 {
		return errors.InvalidArgument("degree", fmt.Sprintf("must be positive, got %d", degree))
	}
	if work == nil {
		return errors.InvalidArgument("work", "must not be nil")
	}

	for i := 0; i < degree; i++ {
		worker := name
		if degree > 1 {
			worker = fmt.Sprintf("%s-%d", name, i)
		}
		s.active.Add(1)
		s.group.Go(func() error {
			defer s.active.Add(-1)
			return s.execute(ctx, worker, work)
		})
	}
	s.log.Debug("Workers started", logger.Fields(logger.FieldWorker, name, logger.FieldWorkers, degree))
	return nil
}

// Wait blocks until every started goroutine has returned and reports the
// first fault, or nil if none occurred.
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}

// Fault returns the first recorded fault without blocking.
func (s *Scheduler) Fault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// Active returns the number of goroutines that have not returned yet.
func (s *Scheduler) Active() int {
	return int(s.active.Load())
}

func (s *Scheduler) execute(ctx context.Context, worker string, work Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Worker panicked", logger.Fields(
				logger.FieldWorker, worker,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			))
			err = s.escalate(worker, fmt.Errorf("panic: %v", r))
		}
	}()

	err = work(ctx)
	switch {
	case err == nil:
		return nil
	case errors.IsCancellation(err):
		s.log.Debug("Worker cancelled", logger.Fields(logger.FieldWorker, worker))
		return nil
	default:
		s.log.Error("Worker failed", logger.Fields(logger.FieldWorker, worker, logger.FieldError, err.Error()))
		return s.escalate(worker, err)
	}
}

func (s *Scheduler) escalate(worker string, cause error) error {
	fault := errors.WorkerFault(worker, cause)

	s.mu.Lock()
	if s.fault == nil {
		s.fault = fault
	}
	s.mu.Unlock()

	if s.onFault != nil {
		s.onFault(worker, fault)
	}
	if s.lifetime != nil {
		s.lifetime.RequestCancellation(fault)
	}
	return fault
}

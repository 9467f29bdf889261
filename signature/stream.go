package signature

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/logger"
	"github.com/kbukum/filesig/observability"
	"github.com/kbukum/filesig/pipeline"
	"github.com/kbukum/filesig/segment"
)

// Stats summarizes a run.
type Stats struct {
	RunID      string
	Blocks     int64
	BytesRead  int64
	Duration   time.Duration
	Status     string
	QueueDepth int
}

// Stream is the ordered, single-pass sequence of block digests produced by a
// run. Each yielded Segment carries the block index and the digest bytes.
//
// Next returns (nil, false, nil) at the end of the file and also when the run
// was cancelled; Cancelled tells the two apart. A worker fault is returned as
// a WORKER_FAULT error wrapping the original failure. Stream implements
// pipeline.Iterator and is not safe for concurrent use.
type Stream struct {
	run     *run
	digests pipeline.Iterator[*segment.Segment]

	finishOnce sync.Once
	delivered  int64
	err        error
	status     string
	duration   time.Duration
}

func newStream(r *run) *Stream {
	return &Stream{
		run:     r,
		digests: r.collector.TakeInOrder(pipeline.Counter()),
	}
}

var _ pipeline.Iterator[*segment.Segment] = (*Stream)(nil)

// RunID identifies the run in logs and traces.
func (s *Stream) RunID() string { return s.run.id }

// Params returns the parameters the run was started with.
func (s *Stream) Params() Params { return s.run.params }

// Next blocks until the digest of the next block is available. Cancelling
// ctx cancels the whole run.
func (s *Stream) Next(ctx context.Context) (*segment.Segment, bool, error) {
	if s.status != "" {
		return nil, false, s.err
	}

	stop := context.AfterFunc(ctx, func() { s.run.cancel(context.Cause(ctx)) })
	seg, ok, err := s.digests.Next(s.run.ctx)
	stop()

	if ok {
		s.delivered++
		return seg, true, nil
	}
	if err != nil && !errors.IsCancellation(err) {
		s.finish(err)
		return nil, false, s.err
	}
	s.finish(nil)
	return nil, false, s.err
}

// Close cancels whatever is still running, waits for every goroutine of the
// run and returns unconsumed buffers to the pool. It is safe to call more
// than once.
func (s *Stream) Close() error {
	s.finish(nil)
	return nil
}

// Cancelled reports whether the run ended by cancellation, including Close
// before the end of the file, rather than by completing or faulting.
func (s *Stream) Cancelled() bool {
	return s.status == observability.StatusCancelled
}

// Err returns the fault that ended the run, if any.
func (s *Stream) Err() error { return s.err }

// Stats returns counters for the run. Duration is set once the run ended.
func (s *Stream) Stats() Stats {
	return Stats{
		RunID:      s.run.id,
		Blocks:     s.delivered,
		BytesRead:  s.run.bytesRead.Load(),
		Duration:   s.duration,
		Status:     s.status,
		QueueDepth: s.run.queue.Len(),
	}
}

// finish tears the run down exactly once and classifies how it ended.
func (s *Stream) finish(cause error) {
	s.finishOnce.Do(func() {
		r := s.run
		// Complete means the reader finished and every block it read was
		// handed to the consumer before anything cancelled the run.
		completed := r.ctx.Err() == nil && r.queue.Completed() && s.delivered == r.blocksRead.Load()

		_ = s.digests.Close()
		r.cancel(errStreamClosed)
		fault := r.sched.Wait()
		r.discard()

		switch {
		case fault != nil:
			s.err, s.status = fault, observability.StatusFaulted
		case cause != nil:
			s.err, s.status = cause, observability.StatusFaulted
		case completed:
			s.status = observability.StatusCompleted
		default:
			s.status = observability.StatusCancelled
		}
		s.duration = r.op.Duration()
		r.op.End(s.status, s.delivered, r.bytesRead.Load(), s.err)

		fields := logger.Fields(
			"blocks", s.delivered,
			"bytes", humanize.IBytes(uint64(r.bytesRead.Load())),
			logger.FieldDuration, s.duration.Milliseconds(),
			"status", s.status,
		)
		switch s.status {
		case observability.StatusCompleted:
			r.log.Info("Signature run finished", fields)
		case observability.StatusCancelled:
			r.log.Warn("Signature run cancelled", fields)
		default:
			r.log.WithError(s.err).Error("Signature run failed", fields)
		}
	})
}

var errStreamClosed = errors.Cancelled(context.Canceled).WithDetail("reason", "stream closed")

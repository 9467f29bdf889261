package signature

import (
	"context"
	"hash"
	"sync/atomic"
	"time"

	"github.com/kbukum/filesig/collections"
	"github.com/kbukum/filesig/digest"
	"github.com/kbukum/filesig/logger"
	"github.com/kbukum/filesig/observability"
	"github.com/kbukum/filesig/reader"
	"github.com/kbukum/filesig/scheduler"
	"github.com/kbukum/filesig/segment"
)

// run owns everything one Generate call creates.
type run struct {
	id        string
	params    Params
	algorithm digest.Algorithm
	log       *logger.Logger
	metrics   *observability.Metrics
	op        *observability.Operation

	ctx    context.Context
	cancel context.CancelCauseFunc
	sched  *scheduler.Scheduler

	pool      *segment.Pool
	reader    *reader.Reader
	queue     *collections.BoundedQueue[*segment.Segment]
	collector *collections.OrderedCollector[uint32, *segment.Segment]
	latch     *collections.CountdownLatch

	blocksRead atomic.Int64
	bytesRead  atomic.Int64
}

// lifetime cancels this run on a fault and forwards the fault to app, if set.
func (r *run) lifetime(app scheduler.LifetimeManager) scheduler.LifetimeManager {
	return scheduler.LifetimeFunc(func(cause error) {
		r.cancel(cause)
		if app != nil {
			app.RequestCancellation(cause)
		}
	})
}

func (r *run) start() error {
	if err := r.sched.Run(r.ctx, "reader", 1, r.readBlocks); err != nil {
		return err
	}
	if err := r.sched.Run(r.ctx, "hash", r.params.Workers, r.hashBlocks); err != nil {
		return err
	}
	return r.sched.Run(r.ctx, "completion", 1, r.completeWhenHashed)
}

// readBlocks pushes every block of the file into the queue, then completes it.
func (r *run) readBlocks(ctx context.Context) error {
	blocks := r.reader.Blocks()
	defer blocks.Close()

	for {
		seg, ok, err := blocks.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		n := seg.Len()
		if err := r.queue.Push(ctx, seg); err != nil {
			seg.Release()
			return err
		}
		r.blocksRead.Add(1)
		r.bytesRead.Add(int64(n))
		r.metrics.RecordBlockRead(ctx, n)
	}
	return r.queue.Complete()
}

// hashBlocks drains the queue, inserting one digest segment per raw block.
// The latch is only counted down after a clean drain, so a failed worker
// never lets the collector complete with a gap.
func (r *run) hashBlocks(ctx context.Context) error {
	h := r.algorithm.New()
	blocks := r.queue.Drain()
	defer blocks.Close()

	for {
		seg, ok, err := blocks.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := r.hashBlock(ctx, h, seg); err != nil {
			return err
		}
	}
	r.latch.CountDown()
	return nil
}

func (r *run) hashBlock(ctx context.Context, h hash.Hash, seg *segment.Segment) error {
	defer seg.Release()

	start := time.Now()
	h.Reset()
	h.Write(seg.Bytes())
	sum := h.Sum(make([]byte, 0, r.algorithm.Size))
	r.metrics.RecordBlockHashed(ctx, r.algorithm.Name, time.Since(start))

	return r.collector.Insert(seg.Index, segment.New(seg.Index, sum))
}

// completeWhenHashed completes the collector once every hash worker is done.
func (r *run) completeWhenHashed(ctx context.Context) error {
	if err := r.latch.Wait(ctx); err != nil {
		return err
	}
	return r.collector.Complete()
}

// discard returns every buffer still held by the queue or collector.
func (r *run) discard() {
	release := func(s *segment.Segment) { s.Release() }
	queued := r.queue.Discard(release)
	pending := r.collector.Discard(release)
	if queued > 0 || pending > 0 {
		r.log.Debug("Discarded unconsumed segments", logger.Fields("queued", queued, "pending", pending))
	}
}

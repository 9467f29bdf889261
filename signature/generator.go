package signature

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/filesig/collections"
	"github.com/kbukum/filesig/digest"
	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/logger"
	"github.com/kbukum/filesig/observability"
	"github.com/kbukum/filesig/reader"
	"github.com/kbukum/filesig/scheduler"
	"github.com/kbukum/filesig/segment"
)

// Generator computes block-wise file signatures. It holds no per-run state
// and may serve concurrent Generate calls.
type Generator struct {
	log      *logger.Logger
	registry *digest.Registry
	tracer   trace.Tracer
	metrics  *observability.Metrics
	lifetime scheduler.LifetimeManager
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Runs add their run_id to it.
func WithLogger(l *logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithRegistry resolves algorithm names against r instead of the default
// registry.
func WithRegistry(r *digest.Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// WithTracer sets the tracer for the per-run span.
func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) { g.tracer = t }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Generator) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithLifetime registers an application-level LifetimeManager that is told
// about every worker fault, in addition to the run being cancelled.
func WithLifetime(l scheduler.LifetimeManager) Option {
	return func(g *Generator) { g.lifetime = l }
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		log:     logger.Get("signature"),
		tracer:  observability.DefaultTracer(),
		metrics: observability.NopMetrics(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate starts a signature run and returns its ordered digest stream.
//
// Configuration errors are returned synchronously and no goroutine is
// started. Otherwise one reader goroutine, p.Workers hash goroutines and one
// completion goroutine run in the background; reading the Stream drives
// them. The caller must Close the Stream, which cancels whatever is still
// running and waits for it.
func (g *Generator) Generate(ctx context.Context, p Params) (*Stream, error) {
	if ctx.Err() != nil {
		return nil, errors.Cancelled(context.Cause(ctx))
	}
	if err := p.validate(g.registry); err != nil {
		return nil, err
	}
	alg, err := g.lookup(p.Algorithm)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := g.log.WithFields(logger.Fields(logger.FieldRunID, runID))

	pool := segment.NewPool(int(p.BlockSize))
	rd, err := reader.New(reader.Options{
		Path:      p.FilePath,
		BlockSize: int(p.BlockSize),
		Mode:      p.mode(),
		Pool:      pool,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	queue, err := collections.NewBoundedQueue[*segment.Segment](p.QueueCapacity())
	if err != nil {
		return nil, err
	}
	latch, err := collections.NewCountdownLatch(p.Workers)
	if err != nil {
		return nil, err
	}

	spanCtx, op := observability.StartOperation(ctx, g.tracer, g.metrics, observability.SpanSignatureRun, alg.Name, map[string]any{
		observability.AttrRunID:      runID,
		observability.AttrFilePath:   p.FilePath,
		observability.AttrAlgorithm:  alg.Name,
		observability.AttrBlockSize:  p.BlockSize,
		observability.AttrWorkers:    p.Workers,
		observability.AttrReaderMode: string(p.mode()),
	})
	runCtx, cancel := context.WithCancelCause(spanCtx)

	r := &run{
		id:        runID,
		params:    p,
		algorithm: alg,
		log:       log,
		metrics:   g.metrics,
		op:        op,
		ctx:       runCtx,
		cancel:    cancel,
		pool:      pool,
		reader:    rd,
		queue:     queue,
		collector: collections.NewOrderedCollector[uint32, *segment.Segment](p.Workers * 2),
		latch:     latch,
	}
	r.sched = scheduler.New(r.lifetime(g.lifetime),
		scheduler.WithLogger(log),
		scheduler.WithFaultHook(func(worker string, _ error) { g.metrics.RecordFault(runCtx, worker) }),
	)

	log.Info("Signature run started", logger.Fields(
		logger.FieldPath, p.FilePath,
		logger.FieldBlockSize, p.BlockSize,
		logger.FieldWorkers, p.Workers,
		logger.FieldAlgorithm, alg.Name,
		"queue_capacity", queue.Cap(),
		"reader", string(p.mode()),
	))

	if err := r.start(); err != nil {
		cancel(err)
		_ = r.sched.Wait()
		r.discard()
		op.End(observability.StatusFaulted, 0, 0, err)
		return nil, err
	}
	return newStream(r), nil
}

func (g *Generator) lookup(name string) (digest.Algorithm, error) {
	if g.registry != nil {
		return g.registry.Lookup(name)
	}
	return digest.Lookup(name)
}

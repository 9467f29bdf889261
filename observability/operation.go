package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Final statuses of a tracked operation.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFaulted   = "faulted"
)

// Operation tracks one signature run: its span and its run-level metrics.
type Operation struct {
	Algorithm string
	StartTime time.Time

	ctx     context.Context
	span    trace.Span
	metrics *Metrics
}

// StartOperation starts a span named name carrying attributes. If metrics is
// nil, metric recording is silently skipped.
func StartOperation(ctx context.Context, tracer trace.Tracer, metrics *Metrics, name, algorithm string, attributes map[string]any) (context.Context, *Operation) {
	if tracer == nil {
		tracer = DefaultTracer()
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs(attributes)...))
	return ctx, &Operation{
		Algorithm: algorithm,
		StartTime: time.Now(),
		ctx:       ctx,
		span:      span,
		metrics:   metrics,
	}
}

// Span returns the operation span.
func (o *Operation) Span() trace.Span { return o.span }

// End ends the span and records the run metrics.
func (o *Operation) End(status string, blocks, bytes int64, err error) {
	duration := time.Since(o.StartTime)

	if err != nil {
		o.span.RecordError(err)
		o.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrBlocks, blocks),
		attribute.Int64(AttrBytes, bytes),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordRun(o.ctx, o.Algorithm, status, duration)
	}
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.StartTime)
}

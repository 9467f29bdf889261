// Package observability provides OpenTelemetry tracing and metrics for
// signature runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("filesig"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("filesig"))
//	metrics.RecordBlockHashed(ctx, "sha256", elapsed)
//
// Runs:
//
//	ctx, op := observability.StartOperation(ctx, nil, metrics, observability.SpanSignatureRun, "sha256", nil)
//	defer op.End(observability.StatusCompleted, blocks, bytes, nil)
//
// Without an initialized provider the global no-op implementations are used,
// so instrumented code never needs to check whether telemetry is enabled.
package observability

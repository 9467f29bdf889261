package bootstrap

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/filesig/config"
	"github.com/kbukum/filesig/observability"
)

// Telemetry holds what a task needs to record spans and metrics. Until the
// OnStart hooks run, and whenever an exporter is not configured, it falls
// back to no-op instruments.
type Telemetry struct {
	Tracer  trace.Tracer
	Metrics *observability.Metrics
}

// EnableTelemetry registers hooks that start OTLP exporters for the
// endpoints set in obs and shut them down, flushing pending data, when the
// task ends. The returned Telemetry is populated by the start hook.
func (a *App[C]) EnableTelemetry(obs config.ObservabilityConfig) *Telemetry {
	t := &Telemetry{
		Tracer:  observability.DefaultTracer(),
		Metrics: observability.NopMetrics(),
	}
	svc := a.Cfg.GetServiceConfig()

	if obs.TracingEnabled() {
		a.OnStart(func(ctx context.Context) error {
			tp, err := observability.InitTracer(ctx, obs.TracerConfig(svc))
			if err != nil {
				return err
			}
			t.Tracer = observability.DefaultTracer()
			a.Summary.Track("tracing", obs.TracingEndpoint)
			a.OnStop(func(ctx context.Context) error {
				return tp.Shutdown(ctx)
			})
			return nil
		})
	}

	if obs.MetricsEnabled() {
		a.OnStart(func(ctx context.Context) error {
			mc := obs.MeterConfig(svc)
			mp, err := observability.InitMeter(ctx, &mc)
			if err != nil {
				return err
			}
			a.OnStop(func(ctx context.Context) error {
				return mp.Shutdown(ctx)
			})
			m, err := observability.NewMetrics(observability.Meter(svc.Name))
			if err != nil {
				return fmt.Errorf("creating metrics: %w", err)
			}
			t.Metrics = m
			a.Summary.Track("metrics", obs.MetricsEndpoint)
			return nil
		})
	}

	return t
}

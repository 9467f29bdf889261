package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/filesig/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. Shutting the provider down flushes the final export, which is what
// a short-lived CLI run relies on.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by a signature run.
type Metrics struct {
	blocksRead   metric.Int64Counter
	bytesRead    metric.Int64Counter
	blocksHashed metric.Int64Counter
	hashDuration metric.Float64Histogram
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	faultTotal   metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	blocksRead, err := meter.Int64Counter("filesig.blocks.read",
		metric.WithDescription("Blocks read from input files"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.blocks.read counter: %w", err)
	}

	bytesRead, err := meter.Int64Counter("filesig.bytes.read",
		metric.WithDescription("Bytes read from input files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.bytes.read counter: %w", err)
	}

	blocksHashed, err := meter.Int64Counter("filesig.blocks.hashed",
		metric.WithDescription("Blocks digested by hash workers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.blocks.hashed counter: %w", err)
	}

	hashDuration, err := meter.Float64Histogram("filesig.hash.duration",
		metric.WithDescription("Time to digest one block in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.hash.duration histogram: %w", err)
	}

	runTotal, err := meter.Int64Counter("filesig.run.total",
		metric.WithDescription("Signature runs by final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("filesig.run.duration",
		metric.WithDescription("Duration of signature runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.run.duration histogram: %w", err)
	}

	faultTotal, err := meter.Int64Counter("filesig.worker.faults",
		metric.WithDescription("Unhandled worker failures by worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesig.worker.faults counter: %w", err)
	}

	return &Metrics{
		blocksRead:   blocksRead,
		bytesRead:    bytesRead,
		blocksHashed: blocksHashed,
		hashDuration: hashDuration,
		runTotal:     runTotal,
		runDuration:  runDuration,
		faultTotal:   faultTotal,
	}, nil
}

// NopMetrics returns instruments backed by a no-op meter.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}

// RecordBlockRead counts one block of n bytes taken from the input.
func (m *Metrics) RecordBlockRead(ctx context.Context, n int) {
	m.blocksRead.Add(ctx, 1)
	m.bytesRead.Add(ctx, int64(n))
}

// RecordBlockHashed counts one digested block and its hashing time.
func (m *Metrics) RecordBlockHashed(ctx context.Context, algorithm string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrAlgorithm, algorithm))
	m.blocksHashed.Add(ctx, 1, attrs)
	m.hashDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(ctx context.Context, algorithm, status string, duration time.Duration) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrAlgorithm, algorithm),
		attribute.String(AttrStatus, status),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrAlgorithm, algorithm),
	))
}

// RecordFault counts a worker fault.
func (m *Metrics) RecordFault(ctx context.Context, worker string) {
	m.faultTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrWorker, worker)))
}

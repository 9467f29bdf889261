package config

import (
	"runtime"
	"time"

	"github.com/kbukum/filesig/observability"
	"github.com/kbukum/filesig/reader"
	"github.com/kbukum/filesig/signature"
	"github.com/kbukum/filesig/validation"
	"github.com/kbukum/filesig/version"
)

// ServiceName names the process in logs, telemetry, config search paths and
// the environment prefix.
const ServiceName = "filesig"

// AppConfig is the complete filesig configuration.
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Signature     SignatureConfig     `yaml:"signature" mapstructure:"signature"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// SignatureConfig holds run parameters as they appear in files and the
// environment. Sizes are human strings such as "1MiB".
type SignatureConfig struct {
	File        string `yaml:"file" mapstructure:"file"`
	BlockSize   string `yaml:"block_size" mapstructure:"block_size"`
	Workers     int    `yaml:"workers" mapstructure:"workers"`
	Algorithm   string `yaml:"algorithm" mapstructure:"algorithm"`
	QueueMemory string `yaml:"queue_memory" mapstructure:"queue_memory"`
	Reader      string `yaml:"reader" mapstructure:"reader"`
}

// ObservabilityConfig enables OTLP export. An empty endpoint disables the
// corresponding signal.
type ObservabilityConfig struct {
	MetricsEndpoint string        `yaml:"metrics_endpoint" mapstructure:"metrics_endpoint"`
	TracingEndpoint string        `yaml:"tracing_endpoint" mapstructure:"tracing_endpoint"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	ExportInterval  time.Duration `yaml:"export_interval" mapstructure:"export_interval"`
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from the standard search paths and the
// environment and applies defaults. It does not validate, so callers can
// overlay command-line values first.
func Load(opts ...LoaderOption) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset fields in every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Version == "" {
		c.Version = version.GetVersionInfo().Version
	}
	c.Signature.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section and reports the first failing one.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Signature.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// ApplyDefaults fills unset run parameters.
func (s *SignatureConfig) ApplyDefaults() {
	if s.BlockSize == "" {
		s.BlockSize = "1MiB"
	}
	if s.Workers == 0 {
		s.Workers = min(runtime.NumCPU(), signature.MaxWorkers)
	}
	if s.Algorithm == "" {
		s.Algorithm = "sha256"
	}
	if s.QueueMemory == "" {
		s.QueueMemory = "256MiB"
	}
	if s.Reader == "" {
		s.Reader = string(reader.ModeStream)
	}
}

// Validate parses the sizes and checks the resulting run parameters.
func (s *SignatureConfig) Validate() error {
	p, err := s.Params()
	if err != nil {
		return err
	}
	return p.Validate()
}

// Params converts the section into run parameters. Only size parsing is
// checked here.
func (s *SignatureConfig) Params() (signature.Params, error) {
	v := validation.New()
	blockSize, err := validation.ParseSize("block_size", s.BlockSize)
	v.Merge("block_size", err)
	queueMemory, err := validation.ParseSize("queue_memory", s.QueueMemory)
	v.Merge("queue_memory", err)
	if err := v.Err(); err != nil {
		return signature.Params{}, err
	}

	return signature.Params{
		FilePath:    s.File,
		BlockSize:   blockSize,
		Workers:     s.Workers,
		Algorithm:   s.Algorithm,
		QueueMemory: queueMemory,
		ReaderMode:  reader.Mode(s.Reader),
	}, nil
}

// ApplyDefaults fills the sampling rate and export interval.
func (o *ObservabilityConfig) ApplyDefaults() {
	if o.SampleRate == 0 {
		o.SampleRate = 1.0
	}
	if o.ExportInterval == 0 {
		o.ExportInterval = 15 * time.Second
	}
}

// Validate checks ranges.
func (o *ObservabilityConfig) Validate() error {
	v := validation.New().
		Custom(o.SampleRate >= 0 && o.SampleRate <= 1, "observability.sample_rate", "must be between 0 and 1").
		Custom(o.ExportInterval >= 0, "observability.export_interval", "must not be negative")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// MetricsEnabled reports whether a metrics endpoint is configured.
func (o *ObservabilityConfig) MetricsEnabled() bool { return o.MetricsEndpoint != "" }

// TracingEnabled reports whether a tracing endpoint is configured.
func (o *ObservabilityConfig) TracingEnabled() bool { return o.TracingEndpoint != "" }

// TracerConfig builds the tracer provider settings for svc.
func (o *ObservabilityConfig) TracerConfig(svc *ServiceConfig) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    svc.Name,
		ServiceVersion: svc.Version,
		Environment:    svc.Environment,
		Endpoint:       o.TracingEndpoint,
		Insecure:       o.Insecure,
		SampleRate:     o.SampleRate,
	}
}

// MeterConfig builds the meter provider settings for svc.
func (o *ObservabilityConfig) MeterConfig(svc *ServiceConfig) observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    svc.Name,
		ServiceVersion: svc.Version,
		Environment:    svc.Environment,
		Endpoint:       o.MetricsEndpoint,
		Insecure:       o.Insecure,
		Interval:       o.ExportInterval,
	}
}

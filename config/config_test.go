package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/reader"
	"github.com/kbukum/filesig/signature"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnvFile(t *testing.T) LoaderOption {
	return WithEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := ServiceConfig{}
		cfg.ApplyDefaults()
		if cfg.Name != ServiceName {
			t.Errorf("expected name %q, got %q", ServiceName, cfg.Name)
		}
		if cfg.Environment != EnvProduction {
			t.Errorf("expected %q, got %q", EnvProduction, cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected level info, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug lowers log level", func(t *testing.T) {
		cfg := ServiceConfig{Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected level debug, got %q", cfg.Logging.Level)
		}
	})

	t.Run("explicit level wins over debug", func(t *testing.T) {
		cfg := ServiceConfig{Debug: true}
		cfg.Logging.Level = "warn"
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "warn" {
			t.Errorf("expected level warn, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func() ServiceConfig {
		cfg := ServiceConfig{}
		cfg.ApplyDefaults()
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(*ServiceConfig)
		wantErr bool
	}{
		{"defaults", func(*ServiceConfig) {}, false},
		{"staging", func(c *ServiceConfig) { c.Environment = EnvStaging }, false},
		{"missing name", func(c *ServiceConfig) { c.Name = "" }, true},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, true},
		{"invalid log level", func(c *ServiceConfig) { c.Logging.Level = "loud" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Signature.BlockSize != "1MiB" {
		t.Errorf("expected block size 1MiB, got %q", cfg.Signature.BlockSize)
	}
	if want := min(runtime.NumCPU(), signature.MaxWorkers); cfg.Signature.Workers != want {
		t.Errorf("expected %d workers, got %d", want, cfg.Signature.Workers)
	}
	if cfg.Signature.Algorithm != "sha256" {
		t.Errorf("expected sha256, got %q", cfg.Signature.Algorithm)
	}
	if cfg.Signature.Reader != string(reader.ModeStream) {
		t.Errorf("expected stream reader, got %q", cfg.Signature.Reader)
	}
	if cfg.Version == "" {
		t.Error("expected version to default from build info")
	}
	if cfg.Observability.ExportInterval != 15*time.Second {
		t.Errorf("expected 15s export interval, got %v", cfg.Observability.ExportInterval)
	}
	if cfg.Observability.MetricsEnabled() || cfg.Observability.TracingEnabled() {
		t.Error("telemetry should be disabled without endpoints")
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"missing file", func(c *AppConfig) { c.Signature.File = "" }, true},
		{"block size below minimum", func(c *AppConfig) { c.Signature.BlockSize = "1KiB" }, true},
		{"block size above maximum", func(c *AppConfig) { c.Signature.BlockSize = "128MiB" }, true},
		{"unparsable block size", func(c *AppConfig) { c.Signature.BlockSize = "big" }, true},
		{"too many workers", func(c *AppConfig) { c.Signature.Workers = 33 }, true},
		{"unknown algorithm", func(c *AppConfig) { c.Signature.Algorithm = "rot13" }, true},
		{"unknown reader", func(c *AppConfig) { c.Signature.Reader = "tape" }, true},
		{"mmap reader", func(c *AppConfig) { c.Signature.Reader = "mmap" }, false},
		{"sample rate out of range", func(c *AppConfig) { c.Observability.SampleRate = 2 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Signature.File = "input.bin"
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestSignatureConfigParams(t *testing.T) {
	s := SignatureConfig{
		File:        "input.bin",
		BlockSize:   "64KiB",
		Workers:     4,
		Algorithm:   "blake3",
		QueueMemory: "8MiB",
		Reader:      "mmap",
	}
	p, err := s.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.BlockSize != 64*1024 {
		t.Errorf("expected 65536, got %d", p.BlockSize)
	}
	if p.QueueMemory != 8<<20 {
		t.Errorf("expected 8MiB, got %d", p.QueueMemory)
	}
	if p.QueueCapacity() != 128 {
		t.Errorf("expected queue capacity 128, got %d", p.QueueCapacity())
	}
	if p.ReaderMode != reader.ModeMmap {
		t.Errorf("expected mmap, got %q", p.ReaderMode)
	}
	if p.FilePath != "input.bin" || p.Workers != 4 || p.Algorithm != "blake3" {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestLoadWithYAML(t *testing.T) {
	path := writeFile(t, "filesig.yml", `
name: filesig-test
environment: staging
logging:
  level: warn
  format: json
signature:
  block_size: 256KiB
  workers: 2
  algorithm: xxh3
observability:
  metrics_endpoint: localhost:4318
  export_interval: 5s
`)
	cfg, err := Load(WithConfigFile(path), noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "filesig-test" || cfg.Environment != EnvStaging {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Signature.BlockSize != "256KiB" || cfg.Signature.Workers != 2 || cfg.Signature.Algorithm != "xxh3" {
		t.Errorf("unexpected signature config %+v", cfg.Signature)
	}
	if cfg.Signature.QueueMemory != "256MiB" {
		t.Errorf("expected default queue memory, got %q", cfg.Signature.QueueMemory)
	}
	if !cfg.Observability.MetricsEnabled() || cfg.Observability.ExportInterval != 5*time.Second {
		t.Errorf("unexpected observability config %+v", cfg.Observability)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "filesig.yml", `
signature:
  workers: 2
  algorithm: md5
`)
	t.Setenv("FILESIG_SIGNATURE_WORKERS", "7")
	t.Setenv("FILESIG_SIGNATURE_BLOCK_SIZE", "2MiB")
	t.Setenv("FILESIG_LOGGING_LEVEL", "error")
	t.Setenv("OTHER_SIGNATURE_WORKERS", "9")

	cfg, err := Load(WithConfigFile(path), noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Signature.Workers != 7 {
		t.Errorf("expected env workers 7, got %d", cfg.Signature.Workers)
	}
	if cfg.Signature.BlockSize != "2MiB" {
		t.Errorf("expected env block size 2MiB, got %q", cfg.Signature.BlockSize)
	}
	if cfg.Signature.Algorithm != "md5" {
		t.Errorf("expected file algorithm md5, got %q", cfg.Signature.Algorithm)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env level error, got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	envPath := writeFile(t, ".env", "FILESIG_SIGNATURE_ALGORITHM=sha512\n")
	t.Cleanup(func() { os.Unsetenv("FILESIG_SIGNATURE_ALGORITHM") })

	cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "none.yml")), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Signature.Algorithm != "sha512" {
		t.Errorf("expected algorithm from .env, got %q", cfg.Signature.Algorithm)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "filesig.yml", "signature: [unclosed\n")
	_, err := Load(WithConfigFile(path), noEnvFile(t))
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "absent.yml")), noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Signature.BlockSize != "1MiB" {
		t.Errorf("expected default block size, got %q", cfg.Signature.BlockSize)
	}
}

type mockFS struct {
	files     map[string]bool
	configDir string
}

func (m *mockFS) Exists(path string) bool        { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error      { return nil }
func (m *mockFS) UserConfigDir() (string, error) { return m.configDir, nil }

func TestResolverWithMockFS(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		opts       LoaderConfig
		wantConfig string
		wantEnv    string
	}{
		{"nothing found", nil, LoaderConfig{}, "", ""},
		{"service yml first", []string{"./filesig.yml", "./config.yml"}, LoaderConfig{}, "./filesig.yml", ""},
		{"config dir", []string{"./config/config.yml"}, LoaderConfig{}, "./config/config.yml", ""},
		{"user config dir", []string{"/home/u/.config/filesig/config.yml"}, LoaderConfig{}, "/home/u/.config/filesig/config.yml", ""},
		{"service env first", []string{"./.env", "./.env.filesig"}, LoaderConfig{}, "", "./.env.filesig"},
		{"env in config dir", []string{"./config/.env"}, LoaderConfig{}, "", "./config/.env"},
		{"explicit wins", []string{"./filesig.yml"}, LoaderConfig{ConfigFile: "/etc/x.yml", EnvFile: "/etc/x.env"}, "/etc/x.yml", "/etc/x.env"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}, configDir: "/home/u/.config"}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			r := &Resolver{FileSystem: fs}
			got := r.ResolveFiles(ServiceName, tc.opts)
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("config file = %q, want %q", got.ConfigFile, tc.wantConfig)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("env file = %q, want %q", got.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	for _, opt := range []LoaderOption{
		WithFileSystem(fs),
		WithConfigFile("/path/to/config.yml"),
		WithEnvFile("/path/to/.env"),
		WithEnvPrefix("SIG_"),
	} {
		opt(&lc)
	}
	if lc.FileSystem != fs {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" || lc.EnvPrefix != "SIG_" {
		t.Errorf("unexpected loader config %+v", lc)
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := envPrefix("file-sig"); got != "FILE_SIG_" {
		t.Errorf("expected FILE_SIG_, got %q", got)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"LOGGING_LEVEL", []string{"logging_level", "logging.level"}},
		{"SIGNATURE_BLOCK_SIZE", []string{"signature_block_size", "signature.block.size", "signature.block_size"}},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			got := generateEnvKeyVariants(tc.key)
			set := make(map[string]bool, len(got))
			for _, g := range got {
				if set[g] {
					t.Errorf("duplicate variant %q", g)
				}
				set[g] = true
			}
			for _, w := range tc.want {
				if !set[w] {
					t.Errorf("variants %v missing %q", got, w)
				}
			}
		})
	}
}

package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/filesig/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("file", "input.bin")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("file", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("file", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorRange(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"lower bound", 1, false},
		{"upper bound", 32, false},
		{"below", 0, true},
		{"above", 33, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().Range("workers", tc.value, 1, 32)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("Range(%d) errors = %v, wantErr %v", tc.value, v.Errors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorSizeRange(t *testing.T) {
	v := New().SizeRange("block_size", 1024, 4096, 64<<20)
	if !v.HasErrors() {
		t.Fatal("expected error below minimum")
	}
	msg := v.Errors()[0].Message
	if !strings.Contains(msg, "4.0 KiB") || !strings.Contains(msg, "64 MiB") {
		t.Errorf("expected IEC bounds in message, got %q", msg)
	}

	if New().SizeRange("block_size", 1<<20, 4096, 64<<20).HasErrors() {
		t.Error("expected 1 MiB to be accepted")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"stream", "mmap"}
	if New().OneOf("reader", "mmap", allowed).HasErrors() {
		t.Error("expected mmap to be accepted")
	}
	if New().OneOf("reader", "", allowed).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	v := New().OneOf("reader", "tape", allowed)
	if !v.HasErrors() || !strings.Contains(v.Errors()[0].Message, "stream, mmap") {
		t.Errorf("expected one-of error listing choices, got %v", v.Errors())
	}
}

func TestValidatorValidateReturnsInvalidConfig(t *testing.T) {
	v := New()
	if v.Validate() != nil {
		t.Error("expected nil for no errors")
	}
	if v.Err() != nil {
		t.Error("expected nil error for no errors")
	}

	v.AddError("workers", "must be positive")
	v.AddError("algorithm", "is required")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "workers: must be positive") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestValidatorMerge(t *testing.T) {
	inner := New()
	inner.AddError("block_size", "too small")

	v := New().Merge("params", inner.Err()).Merge("other", nil)
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "block_size" {
		t.Errorf("expected merged field error, got %v", v.Errors())
	}

	v.Merge("path", errors.InvalidArgument("path", "bad"))
	if len(v.Errors()) != 2 || v.Errors()[1].Field != "path" {
		t.Errorf("expected generic entry for non-validation error, got %v", v.Errors())
	}
}

func TestValidatorCustom(t *testing.T) {
	if !New().Custom(false, "queue_memory", "must hold one block").HasErrors() {
		t.Error("expected error when condition is false")
	}
	if New().Custom(true, "queue_memory", "must hold one block").HasErrors() {
		t.Error("expected no error when condition is true")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"4096", 4096, false},
		{"4KiB", 4096, false},
		{"1MiB", 1 << 20, false},
		{"1 MiB", 1 << 20, false},
		{"64MiB", 64 << 20, false},
		{"1MB", 1000000, false},
		{"256MiB", 256 << 20, false},
		{"", 0, true},
		{"lots", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSize("block_size", tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

type sampleParams struct {
	File    string `mapstructure:"file" validate:"required"`
	Workers int    `mapstructure:"workers" validate:"gte=1,lte=32"`
	Reader  string `json:"reader" validate:"oneof=stream mmap"`
	Name    string `validate:"max=4"`
}

func TestValidateStruct(t *testing.T) {
	if err := Validate(sampleParams{File: "a", Workers: 4, Reader: "stream"}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	err := Validate(sampleParams{Workers: 40, Reader: "tape", Name: "toolong"})
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	fields := appErr.Details["fields"].([]FieldError)

	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"file":    "is required",
		"workers": "must be less than or equal to 32",
		"reader":  "must be one of: stream mmap",
		"name":    "must be at most 4 characters",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"BlockSize":   "block_size",
		"Workers":     "workers",
		"QueueMemory": "queue_memory",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/testutil"
)

func writeInput(t *testing.T, size int) (string, []byte) {
	return testutil.T(t).WriteFile(size)
}

func expectedLines(data []byte, blockSize int) []string {
	var lines []string
	for i, sum := range testutil.BlockDigests(data, blockSize, sha256.New) {
		lines = append(lines, fmt.Sprintf("%08d: %X", i, sum))
	}
	return lines
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestSignWritesOrderedLines(t *testing.T) {
	path, data := writeInput(t, 3*4096+100)
	want := expectedLines(data, 4096)

	tests := []struct {
		name string
		args []string
	}{
		{"flag", []string{"-f", path, "-b", "4KiB", "-w", "3", "--log-level", "error"}},
		{"positional", []string{"--block-size", "4KiB", "--workers", "2", "--log-level", "error", path}},
		{"mmap", []string{"--reader", "mmap", "-b", "4KiB", "--log-level", "error", path}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, tc.args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			got := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
			if len(got) != len(want) {
				t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), stdout)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}

func TestSignEmptyFile(t *testing.T) {
	path, _ := writeInput(t, 0)
	stdout, _, err := runCLI(t, "--log-level", "error", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestSignStats(t *testing.T) {
	path, _ := writeInput(t, 8192)
	_, stderr, err := runCLI(t, "-b", "4KiB", "--stats", "--log-level", "error", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr, "2 blocks") || !strings.Contains(stderr, "completed") {
		t.Errorf("unexpected stats %q", stderr)
	}
}

func TestSignErrors(t *testing.T) {
	path, _ := writeInput(t, 100)
	missing := testutil.T(t).Missing()

	tests := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{"missing file", []string{"--log-level", "error", missing}, 3},
		{"no file", []string{"--log-level", "error"}, 2},
		{"block size too small", []string{"-b", "1KiB", path}, 2},
		{"unparsable block size", []string{"-b", "huge", path}, 2},
		{"unknown algorithm", []string{"-a", "rot13", path}, 2},
		{"too many workers", []string{"-w", "64", path}, 2},
		{"extra argument", []string{path, "other"}, 2},
		{"file twice", []string{"-f", path, path}, 2},
		{"unknown flag", []string{"--frobnicate", path}, 2},
		{"missing config", []string{"-c", filepath.Join(t.TempDir(), "none.yml"), path}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.ExitCode(err); got != tc.wantExit {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tc.wantExit, err)
			}
		})
	}
}

func TestSignConfigFile(t *testing.T) {
	path, data := writeInput(t, 2*4096)
	cfgPath := filepath.Join(t.TempDir(), "filesig.yml")
	cfg := fmt.Sprintf("logging:\n  level: error\nsignature:\n  file: %s\n  block_size: 4KiB\n  workers: 2\n", path)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, "-c", cfgPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := strings.Join(expectedLines(data, 4096), "\n") + "\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	path, data := writeInput(t, 2*4096)
	cfgPath := filepath.Join(t.TempDir(), "filesig.yml")
	if err := os.WriteFile(cfgPath, []byte("signature:\n  block_size: 1MiB\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, "-c", cfgPath, "-b", "4KiB", "--log-level", "error", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if lines := strings.Count(stdout, "\n"); lines != len(expectedLines(data, 4096)) {
		t.Errorf("expected flag block size to win, got %d lines", lines)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout, "filesig ") {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestListAlgorithms(t *testing.T) {
	stdout, _, err := runCLI(t, "--list-algorithms")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"sha256", "blake3", "xxh3", "murmur3-128"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("expected %s in %q", name, stdout)
		}
	}
	if !strings.Contains(stdout, "(default)") {
		t.Errorf("expected default marker in %q", stdout)
	}
}

func TestHelp(t *testing.T) {
	stdout, stderr, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "" {
		t.Errorf("help should not write to stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "Usage:") || !strings.Contains(stderr, "--block-size") {
		t.Errorf("unexpected help output %q", stderr)
	}
}

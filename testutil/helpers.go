package testutil

import (
	"hash"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// THelper provides testing.TB integration for fixture setup.
type THelper struct {
	t   testing.TB
	dir string
}

// T wraps a testing.TB. Files it writes live in a directory removed when the
// test ends.
//
// Example:
//
//	func TestReader(t *testing.T) {
//	    path, data := testutil.T(t).WriteFile(10000)
//	    // read path, compare against data
//	}
func T(t testing.TB) *THelper {
	return &THelper{t: t}
}

// InDir makes the helper write into dir instead of a fresh temp directory.
func (h *THelper) InDir(dir string) *THelper {
	h.dir = dir
	return h
}

// WriteFile writes size bytes of deterministic pseudo-random content to
// input.bin and returns its path and content. The same size always yields
// the same bytes.
func (h *THelper) WriteFile(size int) (string, []byte) {
	h.t.Helper()
	data := RandomBytes(size, uint64(size))
	return h.WriteBytes("input.bin", data), data
}

// WriteBytes writes data to name and returns the path.
func (h *THelper) WriteBytes(name string, data []byte) string {
	h.t.Helper()
	if h.dir == "" {
		h.dir = h.t.TempDir()
	}
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		h.t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// Missing returns a path inside the fixture directory that does not exist.
func (h *THelper) Missing() string {
	h.t.Helper()
	if h.dir == "" {
		h.dir = h.t.TempDir()
	}
	return filepath.Join(h.dir, "missing.bin")
}

// RandomBytes returns size bytes from a PCG stream seeded with seed.
func RandomBytes(size int, seed uint64) []byte {
	data := make([]byte, size)
	r := rand.New(rand.NewPCG(seed, 7))
	for i := range data {
		data[i] = byte(r.UintN(256))
	}
	return data
}

// BlockDigests computes the signature of data sequentially: one digest per
// blockSize bytes, the last block possibly shorter. An empty input has no
// blocks.
func BlockDigests(data []byte, blockSize int, newHash func() hash.Hash) [][]byte {
	var out [][]byte
	h := newHash()
	for off := 0; off < len(data); off += blockSize {
		end := min(off+blockSize, len(data))
		h.Reset()
		h.Write(data[off:end])
		out = append(out, h.Sum(nil))
	}
	return out
}

// Within runs fn and fails the test if it does not return within timeout.
// It is meant for operations that must not hang, such as a cancelled run
// being torn down.
func Within(t testing.TB, timeout time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s did not finish within %v", what, timeout)
	}
}

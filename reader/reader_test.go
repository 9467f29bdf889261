package reader

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/logger"
	"github.com/kbukum/filesig/pipeline"
	"github.com/kbukum/filesig/segment"
	"github.com/kbukum/filesig/testutil"
)

func newReader(t *testing.T, path string, blockSize int, mode Mode, pool *segment.Pool) *Reader {
	t.Helper()
	r, err := New(Options{Path: path, BlockSize: blockSize, Mode: mode, Pool: pool, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	return r
}

// readAll pulls every block, checks index density, copies the content out and
// releases each segment.
func readAll(t *testing.T, r *Reader) [][]byte {
	t.Helper()
	var blocks [][]byte
	err := pipeline.ForEach(context.Background(), r.Blocks(), func(_ context.Context, seg *segment.Segment) error {
		defer seg.Release()
		if int(seg.Index) != len(blocks) {
			t.Fatalf("expected index %d, got %d", len(blocks), seg.Index)
		}
		blocks = append(blocks, bytes.Clone(seg.Bytes()))
		return nil
	})
	if err != nil {
		t.Fatalf("read blocks: %v", err)
	}
	return blocks
}

func TestBlockCounts(t *testing.T) {
	const blockSize = 4096
	tests := []struct {
		name   string
		size   int
		blocks int
		last   int
	}{
		{"empty", 0, 0, 0},
		{"smaller than block", 100, 1, 100},
		{"exact block", blockSize, 1, blockSize},
		{"block plus one", blockSize + 1, 2, 1},
		{"many blocks", 10*blockSize + 17, 11, 17},
	}
	for _, mode := range []Mode{ModeStream, ModeMmap} {
		for _, tc := range tests {
			t.Run(string(mode)+"/"+tc.name, func(t *testing.T) {
				path, data := testutil.T(t).WriteFile(tc.size)
				pool := segment.NewPool(blockSize)
				blocks := readAll(t, newReader(t, path, blockSize, mode, pool))

				if len(blocks) != tc.blocks {
					t.Fatalf("expected %d blocks, got %d", tc.blocks, len(blocks))
				}
				if tc.blocks > 0 && len(blocks[len(blocks)-1]) != tc.last {
					t.Errorf("expected last block of %d bytes, got %d", tc.last, len(blocks[len(blocks)-1]))
				}
				if !bytes.Equal(bytes.Join(blocks, nil), data) {
					t.Error("blocks do not reassemble into the file")
				}
				if pool.Outstanding() != 0 {
					t.Errorf("expected all buffers released, %d outstanding", pool.Outstanding())
				}
			})
		}
	}
}

func TestSixteenMebibytesInOneMebibyteBlocks(t *testing.T) {
	const mib = 1 << 20
	path, _ := testutil.T(t).WriteFile(16*mib)
	blocks := readAll(t, newReader(t, path, mib, ModeStream, nil))
	if len(blocks) != 16 {
		t.Fatalf("expected 16 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if len(b) != mib {
			t.Errorf("block %d: expected %d bytes, got %d", i, mib, len(b))
		}
	}
}

func TestModesProduceIdenticalBlocks(t *testing.T) {
	path, _ := testutil.T(t).WriteFile(3*8192+5)
	stream := readAll(t, newReader(t, path, 8192, ModeStream, nil))
	mapped := readAll(t, newReader(t, path, 8192, ModeMmap, nil))
	if len(stream) != len(mapped) {
		t.Fatalf("block count differs: stream %d, mmap %d", len(stream), len(mapped))
	}
	for i := range stream {
		if !bytes.Equal(stream[i], mapped[i]) {
			t.Errorf("block %d differs between modes", i)
		}
	}
}

func TestMissingFile(t *testing.T) {
	for _, mode := range []Mode{ModeStream, ModeMmap} {
		t.Run(string(mode), func(t *testing.T) {
			path := testutil.T(t).Missing()
			r := newReader(t, path, 4096, mode, nil)
			it := r.Blocks()
			defer it.Close()
			_, ok, err := it.Next(context.Background())
			if ok || !errors.IsCode(err, errors.ErrCodeNotFound) {
				t.Errorf("expected NOT_FOUND, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	path, _ := testutil.T(t).WriteFile(10)
	if err := os.Chmod(path, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	it := newReader(t, path, 4096, ModeStream, nil).Blocks()
	defer it.Close()
	if _, _, err := it.Next(context.Background()); !errors.IsCode(err, errors.ErrCodePermissionDenied) {
		t.Errorf("expected PERMISSION_DENIED, got %v", err)
	}
}

func TestDirectoryIsRejected(t *testing.T) {
	it := newReader(t, t.TempDir(), 4096, ModeStream, nil).Blocks()
	defer it.Close()
	if _, _, err := it.Next(context.Background()); !errors.IsCode(err, errors.ErrCodeIO) {
		t.Errorf("expected IO_ERROR, got %v", err)
	}
}

func TestBlocksIsSingleUse(t *testing.T) {
	path, _ := testutil.T(t).WriteFile(10)
	r := newReader(t, path, 4096, ModeStream, nil)
	first := r.Blocks()
	defer first.Close()

	second := r.Blocks()
	if _, _, err := second.Next(context.Background()); !errors.IsCode(err, errors.ErrCodeInvalidState) {
		t.Errorf("expected INVALID_STATE, got %v", err)
	}
}

func TestCancelledContextStopsReading(t *testing.T) {
	path, _ := testutil.T(t).WriteFile(4*4096)
	pool := segment.NewPool(4096)
	it := newReader(t, path, 4096, ModeStream, pool).Blocks()
	defer it.Close()

	ctx, cancel := context.WithCancel(context.Background())
	seg, ok, err := it.Next(ctx)
	if !ok || err != nil {
		t.Fatalf("first block: ok=%v err=%v", ok, err)
	}
	seg.Release()
	cancel()

	if _, _, err := it.Next(ctx); !errors.IsCancellation(err) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if pool.Outstanding() != 0 {
		t.Errorf("expected no outstanding buffers, got %d", pool.Outstanding())
	}
}

func TestNewValidatesOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"empty path", Options{BlockSize: 4096}},
		{"zero block size", Options{Path: "x"}},
		{"unknown mode", Options{Path: "x", BlockSize: 4096, Mode: "tape"}},
		{"pool size mismatch", Options{Path: "x", BlockSize: 4096, Pool: segment.NewPool(8192)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.opts); !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("expected INVALID_ARGUMENT, got %v", err)
			}
		})
	}
}

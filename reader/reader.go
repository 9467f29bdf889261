package reader

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/logger"
	"github.com/kbukum/filesig/pipeline"
	"github.com/kbukum/filesig/segment"
)

// Mode selects how file content is obtained.
type Mode string

const (
	// ModeStream reads the file with sequential read calls.
	ModeStream Mode = "stream"
	// ModeMmap maps the file into memory and copies blocks out of the mapping.
	ModeMmap Mode = "mmap"
)

// Modes lists the supported reader modes.
func Modes() []string { return []string{string(ModeStream), string(ModeMmap)} }

// Options configures a Reader.
type Options struct {
	// Path is the file to read.
	Path string
	// BlockSize is the size of every block but the last.
	BlockSize int
	// Mode defaults to ModeStream.
	Mode Mode
	// Pool supplies block buffers. Its Size must equal BlockSize. A private
	// pool is created when nil.
	Pool *segment.Pool
	// Logger defaults to the "reader" component logger.
	Logger *logger.Logger
}

// Reader splits one file into indexed blocks. A Reader is single-use: build a
// new one to read the file again.
type Reader struct {
	path      string
	blockSize int
	mode      Mode
	pool      *segment.Pool
	log       *logger.Logger
	started   atomic.Bool
}

// New validates opts and creates a Reader. The file is not touched until the
// first block is pulled.
func New(opts Options) (*Reader, error) {
	if opts.Path == "" {
		return nil, errors.InvalidArgument("path", "must not be empty")
	}
	if opts.BlockSize <= 0 {
		return nil, errors.InvalidArgument("block_size", fmt.Sprintf("must be positive, got %d", opts.BlockSize))
	}
	if opts.Mode == "" {
		opts.Mode = ModeStream
	}
	if opts.Mode != ModeStream && opts.Mode != ModeMmap {
		return nil, errors.InvalidArgument("mode", fmt.Sprintf("unknown reader mode %q", opts.Mode))
	}
	if opts.Pool == nil {
		opts.Pool = segment.NewPool(opts.BlockSize)
	}
	if opts.Pool.Size() != opts.BlockSize {
		return nil, errors.InvalidArgument("pool", fmt.Sprintf("buffer size %d does not match block size %d", opts.Pool.Size(), opts.BlockSize))
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get("reader")
	}
	return &Reader{
		path:      opts.Path,
		blockSize: opts.BlockSize,
		mode:      opts.Mode,
		pool:      opts.Pool,
		log:       opts.Logger,
	}, nil
}

// Path returns the file being read.
func (r *Reader) Path() string { return r.path }

// Blocks returns a lazy single-pass iterator over the file's blocks. Indices
// start at zero and increase by one. Every block is BlockSize long except the
// last, which may be shorter but is never empty; an empty file yields nothing.
//
// The caller owns each yielded segment and must Release it. Not-found and
// permission errors surface from the first Next. A second call to Blocks
// returns an iterator that fails with INVALID_STATE.
func (r *Reader) Blocks() pipeline.Iterator[*segment.Segment] {
	if !r.started.CompareAndSwap(false, true) {
		err := errors.InvalidState("reader blocks were already requested").WithDetail(logger.FieldPath, r.path)
		return pipeline.NewIterator(func(context.Context) (*segment.Segment, bool, error) {
			return nil, false, err
		}, nil)
	}

	var src source
	switch r.mode {
	case ModeMmap:
		src = &mmapSource{r: r}
	default:
		src = &streamSource{r: r}
	}
	return (&blockIter{r: r, src: src}).iterator()
}

// source produces raw block content into pooled segments.
type source interface {
	// open prepares the source and returns the file size.
	open() (int64, error)
	// fill reads the next block into seg and returns the byte count. It
	// returns 0, io.EOF at end of file.
	fill(seg *segment.Segment) (int, error)
	close() error
}

type blockIter struct {
	r      *Reader
	src    source
	opened bool
	done   bool
	index  uint32
}

func (it *blockIter) iterator() pipeline.Iterator[*segment.Segment] {
	return pipeline.NewIterator(it.next, it.close)
}

func (it *blockIter) next(ctx context.Context) (*segment.Segment, bool, error) {
	if it.done {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		it.finish()
		return nil, false, errors.Cancelled(context.Cause(ctx))
	}

	if !it.opened {
		it.opened = true
		size, err := it.src.open()
		if err != nil {
			it.done = true
			return nil, false, err
		}
		if size == 0 {
			it.r.log.Warn("File is empty", logger.Fields(logger.FieldPath, it.r.path))
			it.finish()
			return nil, false, nil
		}
	}

	seg := it.r.pool.Acquire(it.index)
	n, err := it.src.fill(seg)
	if n == 0 || (err != nil && err != io.EOF) {
		seg.Release()
		it.finish()
		if err != nil && err != io.EOF {
			return nil, false, errors.IO("read", it.r.path, err).WithDetail(logger.FieldBlock, it.index)
		}
		it.r.log.Debug("End of file reached", logger.Fields(logger.FieldPath, it.r.path, "blocks", it.index))
		return nil, false, nil
	}

	seg.Truncate(n)
	it.index++
	return seg, true, nil
}

func (it *blockIter) finish() {
	if it.done {
		return
	}
	it.done = true
	if it.opened {
		if err := it.src.close(); err != nil {
			it.r.log.Warn("Failed to close input", logger.ErrorFields("close", err))
		}
	}
}

func (it *blockIter) close() error {
	it.finish()
	return nil
}

// openFile opens path for reading and classifies the failure.
func (r *Reader) openFile() (*os.File, int64, error) {
	f, err := os.Open(r.path)
	if err != nil {
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, 0, errors.NotFound(r.path, err)
		case stderrors.Is(err, fs.ErrPermission):
			r.log.Error("Read permission is required", logger.Fields(logger.FieldPath, r.path))
			return nil, 0, errors.PermissionDenied(r.path, err)
		default:
			return nil, 0, errors.IO("open", r.path, err)
		}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, errors.IO("stat", r.path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, errors.IO("open", r.path, fmt.Errorf("is a directory"))
	}
	return f, info.Size(), nil
}

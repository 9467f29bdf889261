package signature

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/filesig/digest"
	"github.com/kbukum/filesig/reader"
	"github.com/kbukum/filesig/validation"
)

// Limits and defaults for run parameters.
const (
	MinBlockSize       int64 = 4 * humanize.KiByte
	MaxBlockSize       int64 = 64 * humanize.MiByte
	DefaultBlockSize   int64 = humanize.MiByte
	DefaultQueueMemory int64 = 256 * humanize.MiByte
	MinWorkers               = 1
	MaxWorkers               = 32
)

// Params are the immutable inputs of one signature run.
type Params struct {
	// FilePath is the file to sign.
	FilePath string `mapstructure:"file" validate:"required"`
	// BlockSize is the size of every block but the last.
	BlockSize int64 `mapstructure:"block_size"`
	// Workers is the number of hash workers.
	Workers int `mapstructure:"workers"`
	// Algorithm names a digest registered in the generator's registry.
	Algorithm string `mapstructure:"algorithm" validate:"required"`
	// QueueMemory bounds the raw bytes buffered between reader and hashers.
	// Zero selects DefaultQueueMemory.
	QueueMemory int64 `mapstructure:"queue_memory" validate:"gte=0"`
	// ReaderMode selects stream or mmap reading. Empty selects stream.
	ReaderMode reader.Mode `mapstructure:"reader" validate:"omitempty,oneof=stream mmap"`
}

// DefaultParams returns parameters for path with default settings and the
// given worker count.
func DefaultParams(path string, workers int) Params {
	return Params{
		FilePath:    path,
		BlockSize:   DefaultBlockSize,
		Workers:     workers,
		Algorithm:   digest.Default,
		QueueMemory: DefaultQueueMemory,
		ReaderMode:  reader.ModeStream,
	}
}

// Validate checks the parameters against the default digest registry.
func (p Params) Validate() error {
	return p.validate(nil)
}

func (p Params) validate(registry *digest.Registry) error {
	v := validation.New().
		Merge("params", validation.Validate(p)).
		SizeRange("block_size", p.BlockSize, MinBlockSize, MaxBlockSize).
		Range("workers", p.Workers, MinWorkers, MaxWorkers)
	if p.Algorithm != "" {
		known := digest.Has(p.Algorithm)
		names := digest.Names
		if registry != nil {
			known = registry.Has(p.Algorithm)
			names = registry.Names
		}
		if !known {
			v.OneOf("algorithm", p.Algorithm, names())
		}
	}
	return v.Err()
}

// QueueCapacity is the number of raw blocks the queue holds: the queue memory
// budget divided by the block size, at least one.
func (p Params) QueueCapacity() int {
	budget := p.QueueMemory
	if budget <= 0 {
		budget = DefaultQueueMemory
	}
	if p.BlockSize <= 0 {
		return 1
	}
	return int(max(1, budget/p.BlockSize))
}

// String summarizes the parameters for logs.
func (p Params) String() string {
	return fmt.Sprintf("file=%s block_size=%s workers=%d algorithm=%s reader=%s",
		p.FilePath, humanize.IBytes(uint64(max(0, p.BlockSize))), p.Workers, p.Algorithm, p.mode())
}

func (p Params) mode() reader.Mode {
	if p.ReaderMode == "" {
		return reader.ModeStream
	}
	return p.ReaderMode
}

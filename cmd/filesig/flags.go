package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/filesig/config"
	"github.com/kbukum/filesig/errors"
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	flags *pflag.FlagSet

	file           string
	blockSize      string
	workers        int
	algorithm      string
	queueMemory    string
	readerMode     string
	configFile     string
	logLevel       string
	logFormat      string
	stats          bool
	version        bool
	listAlgorithms bool
	help           bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	o := &cliOptions{}
	fs := pflag.NewFlagSet("filesig", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.file, "file", "f", "", "path to the file to sign (may also be given as the only argument)")
	fs.StringVarP(&o.blockSize, "block-size", "b", "1MiB", "size of a single block [4KiB .. 64MiB]")
	fs.IntVarP(&o.workers, "workers", "w", 0, "number of hash workers [1 .. 32] (default: number of CPUs)")
	fs.StringVarP(&o.algorithm, "algorithm", "a", "sha256", "digest algorithm (see --list-algorithms)")
	fs.StringVar(&o.queueMemory, "queue-memory", "256MiB", "memory budget for blocks waiting to be hashed")
	fs.StringVar(&o.readerMode, "reader", "stream", "file reader: stream or mmap")
	fs.StringVarP(&o.configFile, "config", "c", "", "path to a YAML config file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: console or json")
	fs.BoolVar(&o.stats, "stats", false, "print run statistics to stderr")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	fs.BoolVar(&o.listAlgorithms, "list-algorithms", false, "list digest algorithms and exit")
	fs.BoolVarP(&o.help, "help", "h", false, "show help")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			o.help = true
			return o, nil
		}
		return nil, errors.InvalidArgument("flags", err.Error())
	}
	if o.help {
		fs.Usage()
		return o, nil
	}

	switch rest := fs.Args(); {
	case len(rest) > 1:
		return nil, errors.InvalidArgument("args", fmt.Sprintf("unexpected argument %q", rest[1]))
	case len(rest) == 1 && o.file != "":
		return nil, errors.InvalidArgument("args", "file given both as --file and as an argument")
	case len(rest) == 1:
		o.file = rest[0]
		// Treat a positional file like an explicit flag when overlaying config.
		_ = fs.Set("file", rest[0])
	}

	o.flags = fs
	return o, nil
}

// loaderOptions builds the config loader options for the command line.
func (o *cliOptions) loaderOptions() ([]config.LoaderOption, error) {
	if o.configFile == "" {
		return nil, nil
	}
	info, err := os.Stat(o.configFile)
	if err != nil {
		return nil, errors.InvalidConfig(fmt.Sprintf("config file %s cannot be read", o.configFile)).WithCause(err)
	}
	if info.IsDir() {
		return nil, errors.InvalidConfig(fmt.Sprintf("config file %s is a directory", o.configFile))
	}
	return []config.LoaderOption{config.WithConfigFile(o.configFile)}, nil
}

// apply overlays flags the user set explicitly onto cfg, so flag defaults
// never mask values from the config file or the environment.
func (o *cliOptions) apply(cfg *config.AppConfig) {
	set := func(name string, fn func()) {
		if o.flags.Changed(name) {
			fn()
		}
	}
	set("file", func() { cfg.Signature.File = o.file })
	set("block-size", func() { cfg.Signature.BlockSize = o.blockSize })
	set("workers", func() { cfg.Signature.Workers = o.workers })
	set("algorithm", func() { cfg.Signature.Algorithm = o.algorithm })
	set("queue-memory", func() { cfg.Signature.QueueMemory = o.queueMemory })
	set("reader", func() { cfg.Signature.Reader = o.readerMode })
	set("log-level", func() { cfg.Logging.Level = o.logLevel })
	set("log-format", func() { cfg.Logging.Format = o.logFormat })
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `filesig prints a block-wise signature of a file.

The file is split into blocks of --block-size bytes and each block is hashed
in parallel. One line per block is written to stdout, in block order:

  <8-digit block index>: <hex digest>

Usage:
  filesig [flags] <file>

Flags:
%s
Configuration is also read from filesig.yml and FILESIG_ environment
variables, e.g. FILESIG_SIGNATURE_WORKERS=8. Flags take precedence.
`, fs.FlagUsages())
}

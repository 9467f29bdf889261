// filesig prints a block-wise signature of a file: the file is split into
// fixed-size blocks, each block is hashed in parallel, and one line per
// block is written to stdout in block order:
//
//	00000000: 3F2A...
//	00000001: 9C41...
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/filesig/errors"
)

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		code := errors.ExitCode(err)
		// An interrupted run already logged why it stopped.
		if code != errors.ExitCodeFor(errors.ErrCodeCancelled) {
			fmt.Fprintf(os.Stderr, "filesig: %v\n", err)
		}
		os.Exit(code)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	switch {
	case opts.help:
		return nil
	case opts.version:
		return printVersion(stdout)
	case opts.listAlgorithms:
		return printAlgorithms(stdout)
	}
	return sign(ctx, opts, stdout, stderr)
}

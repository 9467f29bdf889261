package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/filesig/bootstrap"
	"github.com/kbukum/filesig/config"
	"github.com/kbukum/filesig/digest"
	"github.com/kbukum/filesig/errors"
	"github.com/kbukum/filesig/logger"
	"github.com/kbukum/filesig/pipeline"
	"github.com/kbukum/filesig/scheduler"
	"github.com/kbukum/filesig/segment"
	"github.com/kbukum/filesig/signature"
	"github.com/kbukum/filesig/version"
)

// sign loads configuration, runs the signature pipeline and writes one line
// per block to stdout.
func sign(ctx context.Context, opts *cliOptions, stdout, stderr io.Writer) error {
	loaderOpts, err := opts.loaderOptions()
	if err != nil {
		return err
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	tel := app.EnableTelemetry(cfg.Observability)

	return app.RunTask(ctx, func(ctx context.Context) error {
		params, err := cfg.Signature.Params()
		if err != nil {
			return err
		}

		// A worker fault cancels the whole task, not only the run.
		ctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		gen := signature.NewGenerator(
			signature.WithLogger(app.Logger.WithComponent("signature")),
			signature.WithTracer(tel.Tracer),
			signature.WithMetrics(tel.Metrics),
			signature.WithLifetime(scheduler.FromCancel(cancel)),
		)
		stream, err := gen.Generate(ctx, params)
		if err != nil {
			return err
		}
		defer stream.Close()

		w := bufio.NewWriter(stdout)
		blockLog := app.Logger.WithComponent("output")
		signed := pipeline.Tap(stream, func(_ context.Context, seg *segment.Segment) error {
			blockLog.Debug("Block digest ready", logger.Fields(logger.FieldBlock, seg.Index))
			return nil
		})
		lines := pipeline.Map(signed, func(_ context.Context, seg *segment.Segment) (string, error) {
			return seg.String(), nil
		})
		err = pipeline.ForEach(ctx, lines, func(_ context.Context, line string) error {
			_, err := fmt.Fprintln(w, line)
			return err
		})
		if flushErr := w.Flush(); err == nil && flushErr != nil {
			err = errors.IO("write", "stdout", flushErr)
		}
		if err != nil {
			return err
		}

		stats := stream.Stats()
		if opts.stats {
			fmt.Fprintf(stderr, "run %s: %d blocks, %s read in %s (%s)\n",
				stats.RunID, stats.Blocks, humanize.IBytes(uint64(stats.BytesRead)), stats.Duration, stats.Status)
		}
		if stream.Cancelled() {
			return errors.Cancelled(context.Cause(ctx))
		}
		return nil
	})
}

func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "filesig %s\n", version.GetVersionInfo())
	return err
}

func printAlgorithms(w io.Writer) error {
	tw := bufio.NewWriter(w)
	for _, name := range digest.Names() {
		alg, err := digest.Lookup(name)
		if err != nil {
			return err
		}
		kind := "non-cryptographic"
		if alg.Cryptographic {
			kind = "cryptographic"
		}
		marker := ""
		if name == digest.Default {
			marker = " (default)"
		}
		fmt.Fprintf(tw, "%-12s %3d bytes  %s%s\n", name, alg.Size, kind, marker)
	}
	return tw.Flush()
}

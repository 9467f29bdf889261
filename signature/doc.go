// Package signature computes the block-wise signature of a file.
//
// The file is split into fixed-size blocks. A single reader goroutine pushes
// raw blocks into a bounded queue, a pool of hash workers digests them in
// parallel, and an ordered collector hands the digests back in block order
// no matter which worker finished first:
//
//	reader ──► BoundedQueue ──► hash workers ──► OrderedCollector ──► Stream
//
// The queue bounds memory between the reader and the workers; the consumer
// pulling from the Stream bounds how far the workers run ahead. Every stage
// shares one cancellation signal. A worker fault cancels the run and is
// reported by Stream.Next; cancelling the caller's context ends the stream
// quietly.
//
//	g := signature.NewGenerator()
//	stream, err := g.Generate(ctx, signature.DefaultParams("disk.img", runtime.NumCPU()))
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	err = pipeline.ForEach(ctx, stream, func(_ context.Context, seg *segment.Segment) error {
//	    fmt.Println(seg)
//	    return nil
//	})
package signature

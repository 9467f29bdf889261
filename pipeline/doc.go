// Package pipeline defines the pull-based Iterator contract shared by every
// stage of filesig and a handful of terminals and operators over it.
//
// Iterators are lazy and single-pass: no work happens until Next is called,
// and an exhausted iterator stays exhausted. Every blocking Next observes the
// context it is given. Close releases whatever the iterator holds (files,
// goroutines, pooled buffers) and must be safe to call more than once.
//
// # Usage
//
//	stream, _ := generator.Generate(ctx, params)
//	lines := pipeline.Map(stream, func(_ context.Context, s *segment.Segment) (string, error) {
//	    return s.String(), nil
//	})
//	err := pipeline.ForEach(ctx, lines, func(_ context.Context, line string) error {
//	    _, err := fmt.Fprintln(w, line)
//	    return err
//	})
package pipeline

// Package reader turns a file into a lazy sequence of fixed-size, indexed
// blocks backed by pooled buffers.
//
// Two modes are available. ModeStream issues sequential reads and, on Linux,
// hints the kernel with FADV_SEQUENTIAL. ModeMmap maps the file and copies
// blocks out of the mapping. Both produce identical segments.
package reader

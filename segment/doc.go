// Package segment defines the indexed, owned byte buffer that flows through
// the signature pipeline, and the pool its raw-block buffers come from.
//
// A Segment is owned by exactly one stage at a time. Ownership moves with
// the value across queue and collector boundaries; the owner that finishes
// with a pooled segment calls Release, which hands the buffer back to its
// Pool once. Later Release calls are no-ops.
package segment

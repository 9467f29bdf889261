// Package collections provides the blocking containers that connect the
// stages of a signature run.
//
//   - BoundedQueue: a capacity-limited FIFO with separate producer and
//     consumer locks. Push blocks while full, Pop blocks while empty, and
//     Complete lets consumers drain what is left and then stop.
//   - OrderedCollector: a keyed store that accepts values out of order and
//     hands them back in the order the consumer asks for, blocking on a
//     missing key until it arrives or the collector is completed.
//   - CountdownLatch: opens once a fixed number of workers have finished.
//
// Every blocking call takes a context.Context and returns a CANCELLED
// AppError when it ends. Using a collection after Complete returns an
// INVALID_STATE AppError.
package collections

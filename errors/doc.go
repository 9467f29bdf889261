// Package errors provides the structured error type used across filesig.
//
// Every failure that leaves a package is an *AppError carrying a
// machine-readable ErrorCode, a human message, optional details and the
// underlying cause. Codes map onto the pipeline's error taxonomy:
// configuration, I/O, worker faults, cancellation and invalid-state misuse.
//
// Sentinel values (ErrInvalidState, ErrCancelled, ...) exist only as targets
// for errors.Is, which compares codes:
//
//	if errors.Is(err, apperrors.ErrInvalidState) { ... }
package errors

package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// ExitCode returns the CLI exit status for this error.
func (e *AppError) ExitCode() int { return ExitCodeFor(e.Code) }

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinels for errors.Is. Never return these directly; use the constructors.
var (
	ErrInvalidConfig    = &AppError{Code: ErrCodeInvalidConfig}
	ErrInvalidArgument  = &AppError{Code: ErrCodeInvalidArgument}
	ErrNotFound         = &AppError{Code: ErrCodeNotFound}
	ErrPermissionDenied = &AppError{Code: ErrCodePermissionDenied}
	ErrIO               = &AppError{Code: ErrCodeIO}
	ErrWorkerFault      = &AppError{Code: ErrCodeWorkerFault}
	ErrCancelled        = &AppError{Code: ErrCodeCancelled}
	ErrInvalidState     = &AppError{Code: ErrCodeInvalidState}
)

// --- Constructors ---

// InvalidConfig creates an error for an invalid configuration value.
func InvalidConfig(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidConfig, Message: message}
}

// InvalidArgument creates an error for an invalid argument.
func InvalidArgument(name, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid argument %s: %s", name, reason),
		Details: map[string]any{"argument": name},
	}
}

// NotFound creates an error for a missing file.
func NotFound(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("file '%s' does not exist", path),
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// PermissionDenied creates an error for a file that cannot be read.
func PermissionDenied(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePermissionDenied, Message: fmt.Sprintf("read permission is required for file '%s'", path),
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// IO creates an error for a failed read or open.
func IO(op, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeIO, Message: fmt.Sprintf("%s %s failed", op, path),
		Details: map[string]any{"path": path, "operation": op}, Cause: cause,
	}
}

// WorkerFault creates an error for an unhandled failure in a background worker.
func WorkerFault(worker string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWorkerFault, Message: fmt.Sprintf("worker %q failed", worker),
		Details: map[string]any{"worker": worker}, Cause: cause,
	}
}

// Cancelled creates an error for a wait aborted by cancellation. The cause is
// normally context.Cause of the aborted context, so errors.Is(err,
// context.Canceled) keeps working.
func Cancelled(cause error) *AppError {
	return &AppError{Code: ErrCodeCancelled, Message: "operation cancelled", Cause: cause}
}

// InvalidState creates an error for misuse of a completed collection.
func InvalidState(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidState, Message: message}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// --- Helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// ErrCodeInternal if there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether any AppError in err's chain has the given code.
func IsCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AppError{Code: code})
}

// IsCancellation reports whether err represents an expected cancellation
// rather than a failure.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, ErrCancelled) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}

// RootCode returns the code of the innermost AppError in err's chain, or
// ErrCodeInternal if there is none. A WORKER_FAULT wrapping a NOT_FOUND
// reports NOT_FOUND.
func RootCode(err error) ErrorCode {
	code := ErrCodeInternal
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			code = appErr.Code
		}
		err = stderrors.Unwrap(err)
	}
	return code
}

// ExitCode maps err onto a process exit status: 0 for nil, the status of
// its root code otherwise. Bare context errors count as cancellation.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	code := RootCode(err)
	if code == ErrCodeInternal && !IsAppError(err) && IsCancellation(err) {
		code = ErrCodeCancelled
	}
	return ExitCodeFor(code)
}

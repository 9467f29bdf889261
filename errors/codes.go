package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors, detected before any goroutine is started.
const (
	// ErrCodeInvalidConfig indicates invalid run parameters or configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInvalidArgument indicates an invalid argument to a library call.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// I/O errors
const (
	// ErrCodeNotFound indicates the input file does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodePermissionDenied indicates the input file cannot be read.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeIO indicates any other read failure.
	ErrCodeIO ErrorCode = "IO_ERROR"
)

// Runtime errors
const (
	// ErrCodeWorkerFault indicates an unhandled failure inside a background worker.
	ErrCodeWorkerFault ErrorCode = "WORKER_FAULT"
	// ErrCodeCancelled indicates a wait was aborted by cancellation.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeInvalidState indicates a programming error such as pushing into a completed queue.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// exitCodes maps error codes onto process exit statuses for the CLI.
var exitCodes = map[ErrorCode]int{
	ErrCodeInvalidConfig:    2,
	ErrCodeInvalidArgument:  2,
	ErrCodeNotFound:         3,
	ErrCodePermissionDenied: 3,
	ErrCodeIO:               3,
	ErrCodeWorkerFault:      4,
	ErrCodeInvalidState:     4,
	ErrCodeInternal:         4,
	ErrCodeCancelled:        130,
}

// ExitCodeFor returns the process exit status for an error code (1 if unknown).
func ExitCodeFor(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return 1
}

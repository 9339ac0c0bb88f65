package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension no parser handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrConfiguration indicates a missing or malformed configuration
	// value. Raised at construction time, never recovered from.
	ErrConfiguration = errors.New("configuration error")

	// ErrSkipped marks a designed non-error outcome: the chunk was
	// rejected by a stage (duplicate, low quality) and recorded as
	// skipped rather than failed. Wrap it with the skip reason.
	ErrSkipped = errors.New("chunk skipped")

	// ErrRunAborted indicates the run was stopped by the error
	// handling policy before completing.
	ErrRunAborted = errors.New("run aborted")
)

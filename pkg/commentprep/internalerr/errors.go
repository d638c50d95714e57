package internalerr

import "errors"

// Sentinel errors shared by the pipeline packages. Callers match them with
// errors.Is; producers wrap them with context using %w.
var (
	// ErrInvalidInputKind is returned when a non-text value is given where
	// text is expected.
	ErrInvalidInputKind = errors.New("invalid input kind")
	// ErrInvalidArgument covers bad call arguments such as a non-positive
	// keyword count or a malformed stopword.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRowProcessing marks a single failed row inside a batch. It never
	// aborts the batch.
	ErrRowProcessing = errors.New("row processing failed")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNotFound      = errors.New("not found")
)

package splitter

import (
	"github.com/pkg/errors"
)

var (
	// ErrPreviouslyFailed is returned for every write made after the splitter has latched an error.
	ErrPreviouslyFailed = errors.New("previously emitted an error")
	// ErrUnconvertible is returned when a chunk can not be turned into bytes.
	ErrUnconvertible = errors.New("a chunk could not be converted to a buffer")
	// ErrPushFailed wraps the error a Sink returned from Push.
	ErrPushFailed = errors.New("failed to push line downstream")
	// ErrWriteAfterEnd is returned for writes made after End or Destroy.
	ErrWriteAfterEnd = errors.New("write after end")
	// ErrInvalidSeparator is returned by New for patterns that match the empty string.
	ErrInvalidSeparator = errors.New("invalid separator")
	// ErrUnknownEncoding is returned for charset names that can not be resolved.
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// pushError keeps the sink's own error reachable while still matching ErrPushFailed.
type pushError struct {
	cause error
}

func (pe *pushError) Error() string {
	return ErrPushFailed.Error() + ": " + pe.cause.Error()
}

func (pe *pushError) Cause() error {
	return pe.cause
}

func (pe *pushError) Unwrap() error {
	return pe.cause
}

func (pe *pushError) Is(target error) bool {
	return target == ErrPushFailed
}

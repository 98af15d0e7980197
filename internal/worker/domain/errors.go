package domain

import "errors"

var (
	// ErrInvalidEvent is returned when a message body is not a well-formed event envelope
	ErrInvalidEvent = errors.New("invalid event")

	// ErrUnknownEventType is returned for event types the worker has no handler for
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrMaxRetriesExceeded is returned when a redelivered event fails again
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

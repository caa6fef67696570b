// Package common holds the error types, logging setup and retry helper shared
// by every package.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors. Storage wraps the first two; config wraps the last two.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRateLimit marks a remote API throttling response.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// UserError carries a message meant for the person at the terminal along
// with the underlying cause.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message for the user.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// RetryableError tags a remote failure as worth retrying or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a rate limit, a timeout or explicitly
// tagged retryable.
func IsRetryable(err error) bool {
	var tagged *RetryableError
	if errors.As(err, &tagged) {
		return tagged.Retryable
	}
	return errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded)
}

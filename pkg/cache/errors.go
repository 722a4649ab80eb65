package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss reports that a key was absent or expired. Backends
// return (nil, false, nil) from Get; this sentinel is for callers that
// want a miss as an error value instead.
var ErrCacheMiss = errors.New("cache miss")

// RetryableError marks an error as transient. Backends wrap failures
// that a short wait can fix, such as a dropped redis connection; logic
// errors pass through unwrapped and fail immediately.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError anywhere in
// its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn up to 3 times, doubling the wait between
// attempts from one second. Only transient errors retry; ctx
// cancellation cuts the wait short.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := time.Second
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

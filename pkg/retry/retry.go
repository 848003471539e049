// Package retry retries transient failures with exponential backoff.
//
// Backends that are reached over the network (PostgreSQL, MongoDB, Redis)
// are often still starting when the server comes up. Connecting through
// [Do] gives them a few seconds:
//
//	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
//	    db, err = postgres.Open(ctx, dsn)
//	    return retry.Transient(err)
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

// TransientError marks an error that should trigger another attempt.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so that [Do] retries it. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Do runs fn up to attempts times, doubling delay after each failure.
// Only errors marked with [Transient] are retried; others return at once.
// The returned error is the last failure without its transient marker, or
// ctx.Err() when ctx ends while waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var t *TransientError
		if !errors.As(err, &t) {
			return err
		}
		lastErr = t.Err

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

// IsTransient reports whether err is marked for retry.
func IsTransient(err error) bool {
	return errors.As(err, new(*TransientError))
}

package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx and 429 responses) with this
// type so that [Retry] knows to attempt the operation again.
//
// RetryAfter, when positive, is the server-requested wait before the next
// attempt and replaces the computed backoff delay for that attempt.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy controls how [Retry] schedules attempts.
type Policy struct {
	Attempts int           // Total attempts including the first (minimum 1)
	Delay    time.Duration // Initial delay, doubled after each failure
	MaxDelay time.Duration // Upper bound for a single delay (0 = unbounded)
}

// DefaultPolicy is used by [RetryWithBackoff]: 3 attempts, 500ms initial
// delay, capped at 5s.
var DefaultPolicy = Policy{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

// Retry executes fn according to p. It only retries errors wrapped with
// [RetryableError]; other errors are returned immediately. Returns the last
// error if all attempts fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.RetryAfter > 0 {
			wait = re.RetryAfter
		}
		if p.MaxDelay > 0 && wait > p.MaxDelay {
			wait = p.MaxDelay
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Retry] using [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultPolicy, fn)
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

package instance

import (
	"context"
	"fmt"
	"time"
)

// retryPolicy bounds a retried operation.
type retryPolicy struct {
	attempts int
	delay    time.Duration
	maxDelay time.Duration
	backoff  float64
}

// defaultClaimPolicy is used while another launcher sets up or tears down
// its channel.
func defaultClaimPolicy() retryPolicy {
	return retryPolicy{
		attempts: ClaimAttempts,
		delay:    ClaimRetryDelay,
		maxDelay: ClaimMaxRetryDelay,
		backoff:  2,
	}
}

// maxAttemptsError reports an operation that kept failing.
type maxAttemptsError struct {
	attempts int
	lastErr  error
}

func (e *maxAttemptsError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.attempts, e.lastErr)
}

func (e *maxAttemptsError) Unwrap() error {
	return e.lastErr
}

// withRetry calls fn until it succeeds, fails with an error retryable rejects,
// or the policy's attempts are used up. Context errors are returned unwrapped.
func withRetry[T any](ctx context.Context, p retryPolicy, retryable func(error) bool, fn func(attempt int) (T, error)) (T, error) {
	var zero T

	if p.attempts <= 1 {
		return fn(1)
	}

	var lastErr error
	delay := p.delay

	for attempt := 1; attempt <= p.attempts; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		if p.backoff > 1 {
			delay = time.Duration(float64(delay) * p.backoff)
		}

		if p.maxDelay > 0 && delay > p.maxDelay {
			delay = p.maxDelay
		}
	}

	return zero, &maxAttemptsError{attempts: p.attempts, lastErr: lastErr}
}

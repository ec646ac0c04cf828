package asyncq

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout wraps op so that its context expires after d. The queue
// itself imposes no timeouts; callers that want one apply this
// decorator before Add. The operation must honor its context for the
// deadline to take effect; an operation that ignores ctx keeps its
// capacity slot until it returns.
func WithTimeout[R any](d time.Duration, op Operation[R]) Operation[R] {
	return func(ctx context.Context) (R, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return op(ctx)
	}
}

// WithRetry wraps op so that a failure is retried up to attempts times
// in total, waiting delay between attempts. The queue sees a single
// operation that settles once: with the first successful outcome, or
// with the last failure. Retries stop early if ctx expires while
// waiting.
//
// An attempts value below 1 is a programmer error. Because the
// decorator itself cannot fail, the check runs when the returned
// operation first executes, and the misuse settles that task with the
// validation error instead of silently running once.
func WithRetry[R any](attempts int, delay time.Duration, op Operation[R]) Operation[R] {
	return func(ctx context.Context) (R, error) {
		var zero R
		if attempts < 1 {
			return zero, fmt.Errorf("retry attempts must be at least 1, got %d", attempts)
		}

		var lastErr error
		for attempt := 1; attempt <= attempts; attempt++ {
			if attempt > 1 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return zero, ctx.Err()
				}
			}

			value, err := op(ctx)
			if err == nil {
				return value, nil
			}
			lastErr = err
		}

		return zero, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
	}
}

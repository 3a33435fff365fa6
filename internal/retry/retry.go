// Package retry provides a bounded retry combinator with pluggable backoff.
package retry

import (
	"context"
	"time"

	"autoblog/internal/logger"
)

// Backoff computes the delay before the given retry attempt (1-based).
type Backoff func(attempt int) time.Duration

// Linear returns a backoff that grows by step per attempt.
func Linear(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Exponential returns a backoff that doubles from base, capped at max.
func Exponential(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= max {
				return max
			}
		}
		if d > max {
			return max
		}
		return d
	}
}

// Retryable reports whether an error is worth another attempt.
type Retryable func(err error) bool

// Always retries every error.
func Always(error) bool { return true }

// Do runs fn up to attempts times, sleeping per backoff between failures.
// It stops early when the context is cancelled or retryable returns false,
// and returns the last error when all attempts are exhausted.
func Do(ctx context.Context, attempts int, backoff Backoff, retryable Retryable, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		delay := backoff(attempt)
		logger.Warn("Retrying after failure",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay.String(),
			"error", lastErr.Error())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// retry.go implements the small explicit retry policy used for the
// external OCR call: bounded attempts with a fixed backoff, the attempt
// number passed to the callback so callers can escalate to a stricter
// prompt on the retry.
package core

import (
	"context"
	"time"
)

// RetryPolicy bounds attempts against an unreliable external call.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff is the delay between attempts.
	Backoff time.Duration
}

// DefaultRetryPolicy returns the policy for OCR calls: one retry after a
// short delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Backoff: 2 * time.Second}
}

// Do runs fn until it succeeds or attempts are exhausted. The attempt
// number is 1-based. Context cancellation aborts between attempts and
// returns the context error.
//
// Example:
//
//	err := policy.Do(ctx, func(attempt int) error {
//	    return client.Call(ctx, attempt > 1)
//	})
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

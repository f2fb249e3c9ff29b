package quiz

import (
	"context"
	"fmt"
)

// Retry re-runs an operation up to MaxAttempts times with no backoff.
// Model output failures are transient and a fresh sample usually
// succeeds, so waiting between attempts buys nothing.
type Retry struct {
	MaxAttempts int
}

// Do invokes op until it succeeds or MaxAttempts is reached, and
// returns the last error. Context cancellation stops further
// attempts.
func (r Retry) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (after %d attempts: %v)", err, attempt-1, lastErr)
			}
			return err
		}
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

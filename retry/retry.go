// Package retry provides a bounded-attempt combinator for fallible
// stages. It replaces ad-hoc retry loops with one wrapper that logs
// every attempt and surfaces the final failure to the caller.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Do invokes op up to attempts times, sleeping delay between failures.
// Each failed attempt is logged at warn with its index; exhaustion is
// logged at error and the last failure is returned. The delay honors
// context cancellation, and a canceled context stops further attempts.
func Do(ctx context.Context, name string, attempts int, delay time.Duration, op func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		slog.Warn("stage attempt failed",
			"stage", name,
			"attempt", fmt.Sprintf("%d/%d", i, attempts),
			"error", lastErr,
		)

		if i < attempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	slog.Error("stage failed after all attempts",
		"stage", name,
		"attempts", attempts,
		"error", lastErr,
	)
	return lastErr
}

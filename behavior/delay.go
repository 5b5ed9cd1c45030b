// Package behavior provides the randomized pacing used between browser
// interactions to reduce detectable automation patterns.
package behavior

import (
	"context"
	"math/rand"
	"time"
)

// Sleep pauses for d, returning early with the context error if the
// run is canceled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SleepBetween pauses for a uniformly random duration in [min, max].
// If min >= max it degrades to a fixed sleep of min.
func SleepBetween(ctx context.Context, min, max time.Duration) error {
	if min >= max {
		return Sleep(ctx, min)
	}
	return Sleep(ctx, min+time.Duration(rand.Int63n(int64(max-min))))
}

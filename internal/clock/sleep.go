// Package clock provides helpers for time-related operations.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for the duration or returns early if the context is canceled.
// A non-positive duration returns immediately unless ctx is already done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Now is the wall clock used by TTL caches and cutoff math. Tests swap it for a fixed function.
type Now func() time.Time

// System returns the current UTC time.
func System() time.Time {
	return time.Now().UTC()
}

// Package context holds small helpers for bounded waits that respect a
// caller's context.
package context

import (
	"context"
	"time"
)

// IsTimedOut returns true if the context was canceled due to a timeout
func IsTimedOut(ctx context.Context) bool {
	return ctx.Err() == context.DeadlineExceeded
}

// WaitTimeout blocks until ch is closed, the timeout elapses or ctx ends.
// It reports whether ch closed; the error is non-nil only when ctx ended first.
func WaitTimeout(ctx context.Context, ch <-chan struct{}, timeout time.Duration) (bool, error) {
	select {
	case <-ch:
		return true, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

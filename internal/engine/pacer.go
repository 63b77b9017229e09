package engine

import (
	"context"
	"time"
)

// Pacer models simulated thinking/typing latency. Wait is the only point
// where a stream suspends.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, d time.Duration) error

// Wait calls f.
func (f PacerFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// SleepPacer waits on a timer, returning early on cancellation.
type SleepPacer struct{}

// Wait blocks for d or until ctx is done.
func (SleepPacer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay never sleeps; it still honours cancellation.
var NoDelay Pacer = PacerFunc(func(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
})

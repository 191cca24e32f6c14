// Package wait polls a read endpoint until a prior write becomes visible,
// with capped exponential backoff and a bounded attempt count. It replaces
// the fixed post-write sleeps a naive harness would use to ride out
// eventual-consistency lag. Only reads are retried here; mutating calls are
// never re-issued.
package wait

import (
	"context"
	"fmt"
	"time"

	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
)

// CheckFunc reports whether the awaited write is visible yet. A non-nil
// error ends the poll immediately.
type CheckFunc func(ctx context.Context) (bool, error)

// Config bounds the poll loop.
type Config struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     int
}

// Until polls check until it reports visible, the attempt budget is spent,
// or the context is canceled. The first check runs immediately.
func Until(ctx context.Context, cfg Config, what string, check CheckFunc) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	interval := cfg.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		visible, err := check(ctx)
		if err != nil {
			return probeErrors.Wrap(probeErrors.CategoryNetwork,
				fmt.Sprintf("visibility check for %s failed", what), err)
		}
		if visible {
			return nil
		}
		lastErr = fmt.Errorf("%s not visible after %d attempts", what, attempt)

		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval *= 2
		if cfg.MaxInterval > 0 && interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}

	return probeErrors.Wrap(probeErrors.CategoryFixture, "write did not become visible", lastErr).
		WithDetail("what", what).
		WithDetail("attempts", cfg.MaxAttempts)
}

// Sleep is the fallback for writes that have no read endpoint to poll:
// a single fixed delay, interruptible by the context.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

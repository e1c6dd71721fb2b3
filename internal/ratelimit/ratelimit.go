package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces outbound requests against the remote listing site.
type RateLimiter interface {
	Wait(ctx context.Context) error
	SetDelay(delay time.Duration)
}

// FixedDelayLimiter enforces a fixed minimum gap between actions. A zero
// delay makes Wait a no-op beyond the cancellation check, so batches
// configured with delay_seconds=0 run back to back.
type FixedDelayLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedDelayLimiter(delay time.Duration) *FixedDelayLimiter {
	return &FixedDelayLimiter{delay: delay}
}

func (r *FixedDelayLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if r.delay > 0 && !r.lastAction.IsZero() {
		elapsed := time.Since(r.lastAction)
		if elapsed < r.delay {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay - elapsed):
			}
		}
	}

	r.lastAction = time.Now()
	return nil
}

func (r *FixedDelayLimiter) SetDelay(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = delay
}

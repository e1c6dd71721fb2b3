package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroDelayDoesNotBlock(t *testing.T) {
	limiter := NewFixedDelayLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestDelayEnforcedBetweenActions(t *testing.T) {
	limiter := NewFixedDelayLimiter(40 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx)) // first action is immediate

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWaitHonoursCancellation(t *testing.T) {
	limiter := NewFixedDelayLimiter(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, limiter.Wait(ctx))

	cancel()
	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_EnforcesMinimumSpacing(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	elapsed := time.Since(start)

	// 最初の1回は即時、残り3回はそれぞれ20ms以上待つ
	assert.GreaterOrEqual(t, elapsed, 55*time.Millisecond)
}

func TestRateLimiter_ZeroIntervalDoesNotBlock(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx))
}

func TestNewPerSecond(t *testing.T) {
	t.Parallel()

	rl := NewPerSecond(0)
	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
}

func TestNoop_Wait(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Noop{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Noop{}.Wait(ctx), context.Canceled)
}

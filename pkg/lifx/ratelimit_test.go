package lifx

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitDeadline(t *testing.T) {
	now := time.Now()

	t.Run("future reset", func(t *testing.T) {
		reset := strconv.FormatInt(now.Unix()+30, 10)
		deadline, ok := rateLimitDeadline(reset, now)
		require.True(t, ok)
		assert.Equal(t, 30*time.Second, deadline.Sub(now))
	})

	t.Run("past reset clamps to now", func(t *testing.T) {
		reset := strconv.FormatInt(now.Unix()-100, 10)
		deadline, ok := rateLimitDeadline(reset, now)
		require.True(t, ok)
		assert.Equal(t, now, deadline)
	})

	t.Run("surrounding space", func(t *testing.T) {
		_, ok := rateLimitDeadline(" "+strconv.FormatInt(now.Unix(), 10)+" ", now)
		assert.True(t, ok)
	})

	for _, bad := range []string{"", "soon", "1.5e9"} {
		t.Run("bad header "+bad, func(t *testing.T) {
			_, ok := rateLimitDeadline(bad, now)
			assert.False(t, ok)
		})
	}
}

func TestSleepUntil(t *testing.T) {
	t.Run("past deadline returns at once", func(t *testing.T) {
		assert.NoError(t, sleepUntil(context.Background(), time.Now().Add(-time.Second)))
	})

	t.Run("waits for the deadline", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, sleepUntil(context.Background(), start.Add(20*time.Millisecond)))
		assert.GreaterOrEqual(t, int64(time.Since(start)), int64(20*time.Millisecond))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := sleepUntil(ctx, start.Add(time.Hour))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, int64(time.Since(start)), int64(time.Minute))
	})

	t.Run("already cancelled with a past deadline", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, sleepUntil(ctx, time.Now()), context.Canceled)
	})
}

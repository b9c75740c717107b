package lifx

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	// RateLimitResetHeader carries the unix time (seconds) at which a rate
	// limit is lifted
	RateLimitResetHeader = "X-Ratelimit-Reset"

	// DefaultRateLimitFallback is the wait before retrying a 429 response
	// that did not say when the limit lifts
	DefaultRateLimitFallback = 60 * time.Second
)

// rateLimitDeadline converts a unix reset timestamp into a deadline on the
// monotonic clock reading carried by now.  The wall clock and the server
// clock are not synchronized so this is best effort; resets in the past
// give a deadline of now.
func rateLimitDeadline(value string, now time.Time) (time.Time, bool) {
	reset, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	gap := reset - now.Unix()
	if gap < 0 {
		gap = 0
	}

	return now.Add(time.Duration(gap) * time.Second), true
}

// sleepUntil blocks until the deadline or until the context is done
func sleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

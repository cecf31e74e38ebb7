package stream

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig holds the default backoff schedule applied when a source does
// not supply its own BackoffTime.
type RetryConfig struct {
	// MaxRetries is the retry budget per pagination step, not counting the
	// initial attempt.
	MaxRetries int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration

	// Multiplier is the exponential growth factor.
	Multiplier float64

	// Jitter randomizes each wait by +-20% to avoid thundering herds.
	// Disable for deterministic tests.
	Jitter bool
}

// DefaultRetryConfig returns the default backoff schedule.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// waitFor computes the wait before retry number attempt (1-based).
func (c RetryConfig) waitFor(attempt int) time.Duration {
	backoff := float64(c.InitialBackoff) * math.Pow(c.Multiplier, float64(attempt-1))
	if c.MaxBackoff > 0 && backoff > float64(c.MaxBackoff) {
		backoff = float64(c.MaxBackoff)
	}
	wait := time.Duration(backoff)
	if c.Jitter {
		wait = time.Duration(float64(wait) * (0.8 + rand.Float64()*0.4))
	}
	return wait
}

// retryState tracks retries for a single pagination step. It is reset for
// every new page; the attempt count never exceeds MaxRetries+1 requests
// before a BackoffExhaustedError surfaces.
type retryState struct {
	attempt int
}

// sleepBackoff waits out a backoff, honoring context cancellation. This is
// the only suspension point in a pagination run.
func sleepBackoff(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Package backoff provides a small reusable retry policy with
// exponential delay and optional full jitter.
package backoff

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy describes a bounded exponential backoff.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles
	// each subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth. Zero means no cap.
	MaxDelay time.Duration

	// Jitter, when true, sleeps a random duration in [0, delay]
	// instead of the full delay.
	Jitter bool
}

// Default returns the policy used by the cache refresher: three
// attempts starting at 500ms, capped at 10s, with jitter.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      true,
	}
}

// Delay returns the backoff delay before the given 1-based attempt.
// Attempt 1 has no delay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	base := p.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	// exponential: base * 2^(attempt-2)
	delay := base << (attempt - 2)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Retry runs fn up to MaxAttempts times, sleeping the policy delay
// between attempts. It returns nil on the first success, the context
// error if the context is done while waiting, and the last attempt's
// error once attempts are exhausted.
func (p Policy) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if delay := p.Delay(attempt); delay > 0 {
			if p.Jitter {
				delay = time.Duration(rand.Int63n(int64(delay) + 1))
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := fn(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

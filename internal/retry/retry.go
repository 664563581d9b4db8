// Package retry provides a bounded retry helper for probing external
// dependencies, generalizing the fixed sleep-and-retry loop the original
// deployment scripts used to wait for the model server.
//
// The policy is parameterized by attempt budget, base delay, and an
// optional backoff multiplier, and the sleeper is injectable so tests run
// deterministically without real delays. The setup readiness poll keeps
// the original fixed-interval behavior (multiplier 1) to preserve its
// "at most 30 attempts, 2 seconds apart" contract.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Sleeper abstracts time.Sleep so retry loops are testable with a fake
// clock. The production implementation honors context cancellation.
type Sleeper interface {
	// Sleep blocks for the given duration or until the context is done,
	// whichever comes first.
	Sleep(ctx context.Context, d time.Duration)
}

// DefaultSleeper returns the real, timer-backed Sleeper.
func DefaultSleeper() Sleeper {
	return realSleeper{}
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Policy describes a bounded retry schedule.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	// Must be at least 1.
	MaxAttempts int

	// Interval is the delay after a failed attempt.
	Interval time.Duration

	// Multiplier grows the interval after each failure when greater
	// than 1. A value of 0 or 1 keeps the interval fixed.
	Multiplier float64

	// MaxInterval caps the grown interval. 0 means no cap.
	MaxInterval time.Duration
}

// FixedInterval is shorthand for a fixed-delay policy - the shape the
// setup readiness poll uses.
func FixedInterval(attempts int, interval time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Interval: interval}
}

// ExhaustedError is returned by Do when every attempt failed.
// It records the attempt count and wraps the last attempt's error.
type ExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int

	// Last is the error from the final attempt.
	Last error
}

// Error satisfies the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap exposes the last attempt's error to errors.Is/errors.As.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. It returns the number of attempts made along with
// the outcome: nil on success, an *ExhaustedError when the budget ran out,
// or the context error on cancellation.
//
// There is deliberately no jitter and no transient/fatal distinction:
// op's error is treated as "not ready yet" every time. Callers that can
// detect a fatal condition should return success=false by other means
// (abort via context) rather than teaching this helper error taxonomy.
func Do(ctx context.Context, p Policy, sleeper Sleeper, op func(ctx context.Context) error) (int, error) {
	if p.MaxAttempts < 1 {
		return 0, fmt.Errorf("retry: MaxAttempts must be at least 1, got %d", p.MaxAttempts)
	}
	if sleeper == nil {
		sleeper = DefaultSleeper()
	}

	interval := p.Interval
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		// Don't sleep after the final attempt - the budget is spent.
		if attempt == p.MaxAttempts {
			break
		}

		sleeper.Sleep(ctx, interval)

		if p.Multiplier > 1 {
			interval = time.Duration(float64(interval) * p.Multiplier)
			if p.MaxInterval > 0 && interval > p.MaxInterval {
				interval = p.MaxInterval
			}
		}
	}

	return p.MaxAttempts, &ExhaustedError{Attempts: p.MaxAttempts, Last: lastErr}
}

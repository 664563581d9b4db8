package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSleeper records requested sleep durations without actually sleeping.
type fakeSleeper struct {
	slept []time.Duration
}

func (f *fakeSleeper) Sleep(_ context.Context, d time.Duration) {
	f.slept = append(f.slept, d)
}

// TestDoSucceedsImmediately verifies a first-try success performs no sleeps.
func TestDoSucceedsImmediately(t *testing.T) {
	sleeper := &fakeSleeper{}
	attempts, err := Do(context.Background(), FixedInterval(30, 2*time.Second), sleeper,
		func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeper.slept)
}

// TestDoSucceedsAfterFailures verifies the fixed-interval schedule:
// one sleep per failed attempt, all at the base interval.
func TestDoSucceedsAfterFailures(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0
	attempts, err := Do(context.Background(), FixedInterval(30, 2*time.Second), sleeper,
		func(ctx context.Context) error {
			calls++
			if calls < 4 {
				return errors.New("not ready")
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, sleeper.slept)
}

// TestDoExhaustsBudget verifies the readiness-poll contract: at most
// MaxAttempts attempts, no sleep after the last one, and a typed
// ExhaustedError wrapping the final failure.
func TestDoExhaustsBudget(t *testing.T) {
	sleeper := &fakeSleeper{}
	probeErr := errors.New("connection refused")
	calls := 0

	attempts, err := Do(context.Background(), FixedInterval(30, 2*time.Second), sleeper,
		func(ctx context.Context) error {
			calls++
			return probeErr
		})

	assert.Equal(t, 30, attempts)
	assert.Equal(t, 30, calls)
	// 29 sleeps: none after the final attempt.
	assert.Len(t, sleeper.slept, 29)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 30, exhausted.Attempts)
	assert.True(t, errors.Is(err, probeErr))
}

// TestDoBackoff verifies multiplier growth and the MaxInterval cap.
func TestDoBackoff(t *testing.T) {
	sleeper := &fakeSleeper{}
	p := Policy{
		MaxAttempts: 5,
		Interval:    time.Second,
		Multiplier:  2,
		MaxInterval: 3 * time.Second,
	}

	_, err := Do(context.Background(), p, sleeper,
		func(ctx context.Context) error { return errors.New("nope") })

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	// 1s, then 2s, then capped at 3s.
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second,
	}, sleeper.slept)
}

// TestDoContextCancelled verifies an already-cancelled context stops the
// loop before the next attempt runs.
func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	attempts, err := Do(ctx, FixedInterval(10, time.Second), &fakeSleeper{},
		func(ctx context.Context) error {
			calls++
			return errors.New("nope")
		})

	assert.Equal(t, 0, attempts)
	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestDoRejectsZeroAttempts guards the policy invariant.
func TestDoRejectsZeroAttempts(t *testing.T) {
	_, err := Do(context.Background(), Policy{}, &fakeSleeper{},
		func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

package unifiedllm

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// DefaultMaxAttempts bounds the re-requests made to repair reasoning markup.
const DefaultMaxAttempts = 5

// Sleeper is an interface for sleeping, allowing tests to override delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

// realSleeper waits on a timer, returning early when ctx is done.
type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// DefaultSleeper is the production sleeper.
var DefaultSleeper Sleeper = realSleeper{}

// BackoffConfig controls the delay between reasoning re-requests.
// The zero value means no delay.
type BackoffConfig struct {
	InitialDelay time.Duration
	Factor       float64
	MaxDelay     time.Duration
	Jitter       bool
}

// DelayForAttempt calculates the delay before the given retry (1-indexed).
func (bc BackoffConfig) DelayForAttempt(attempt int) time.Duration {
	if bc.InitialDelay == 0 {
		return 0
	}
	factor := bc.Factor
	if factor == 0 {
		factor = 1
	}
	delay := float64(bc.InitialDelay) * math.Pow(factor, float64(attempt-1))
	if bc.MaxDelay > 0 && delay > float64(bc.MaxDelay) {
		delay = float64(bc.MaxDelay)
	}
	if bc.Jitter {
		// jitter: delay * uniform(0.5, 1.5)
		delay = delay * (0.5 + rand.Float64())
	}
	return time.Duration(delay)
}

// RetryPolicy bounds the reasoning-repair loop of one SendRequest call.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffConfig
}

// DefaultRetryPolicy retries immediately, up to DefaultMaxAttempts times.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts}
}

// RetryState tracks attempts within a single SendRequest call.
type RetryState struct {
	AttemptsUsed int
	MaxAttempts  int
}

func newRetryState(policy RetryPolicy) *RetryState {
	max := policy.MaxAttempts
	if max < 1 {
		max = 1
	}
	return &RetryState{MaxAttempts: max}
}

// Next consumes an attempt and reports whether one was available.
func (s *RetryState) Next() bool {
	if s.AttemptsUsed >= s.MaxAttempts {
		return false
	}
	s.AttemptsUsed++
	return true
}

// Exhausted reports whether every attempt has been used.
func (s *RetryState) Exhausted() bool {
	return s.AttemptsUsed >= s.MaxAttempts
}

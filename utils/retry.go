package utils

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy controls Retry. A policy with MaxRetries 3 makes 4 attempts in total.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Factor       float64
	Logger       *slog.Logger
	// Sleep waits between attempts; nil means a context-aware timer
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is 3 retries starting at one second and doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		Factor:       2,
	}
}

// Retry calls op until it succeeds or the attempts run out.
// The error of the last attempt is returned as is.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := policy.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	factor := policy.Factor
	if factor < 1 {
		factor = 1
	}

	delay := policy.InitialDelay
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= policy.MaxRetries {
			return result, err
		}

		if policy.Logger != nil {
			policy.Logger.Warn("retrying after failure",
				"attempt", attempt+1,
				"delay", delay,
				"error", err,
			)
		}
		if serr := sleep(ctx, delay); serr != nil {
			var zero T
			return zero, serr
		}
		delay = time.Duration(float64(delay) * factor)
	}
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

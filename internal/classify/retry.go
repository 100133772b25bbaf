package classify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"NewsLabeler/internal/infrastructure/llm"
)

// RetryPolicy is the single place describing how completion calls are
// retried: attempt ceiling, exponential backoff schedule and the extra
// cooldown applied on rate-limit signals on top of that schedule.
type RetryPolicy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	Multiplier        float64
	RateLimitCooldown time.Duration
}

// DefaultRetryPolicy matches the provider guidance: 3 attempts, 1s backoff
// doubling per attempt, 60s cooldown after a rate limit.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		Multiplier:        2,
		RateLimitCooldown: 60 * time.Second,
	}
}

// Do runs fn until it succeeds or the attempt budget is exhausted, sleeping
// per the backoff schedule between attempts. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, fn func() error) error {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = p.InitialDelay
	schedule.Multiplier = p.Multiplier
	schedule.RandomizationFactor = 0
	schedule.MaxInterval = time.Hour
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts {
			return err
		}

		delay := schedule.NextBackOff()
		if errors.Is(err, llm.ErrRateLimited) {
			if logger != nil {
				logger.Warn("rate limit exceeded, cooling down",
					"cooldown", p.RateLimitCooldown, "attempt", attempt, "error", err)
			}
			delay += p.RateLimitCooldown
		} else if logger != nil {
			logger.Warn("completion attempt failed, retrying",
				"attempt", attempt, "delay", delay, "error", err)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

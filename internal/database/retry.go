package database

import (
	"context"
	"log/slog"
	"time"

	"chirp/internal/config"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds how often a read is retried after a transient failure.
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is used when no configuration is supplied.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}
}

// RetryPolicyFromConfig reads RETRY_MAX_ATTEMPTS and RETRY_BASE_DELAY_MS.
func RetryPolicyFromConfig(cfg *config.Config) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg == nil {
		return p
	}
	if cfg.RetryMaxAttempts > 0 {
		p.MaxAttempts = uint(cfg.RetryMaxAttempts)
	}
	if cfg.RetryBaseDelayMS > 0 {
		p.BaseDelay = time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond
	}
	return p
}

// Retry runs op until it succeeds, fails permanently, or the attempt budget
// is spent. Only errors classified by IsTransient are retried; a transient
// error that survives every attempt comes back as an UNAVAILABLE AppError.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	base := policy.BaseDelay
	if base <= 0 {
		base = DefaultRetryPolicy().BaseDelay
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = 16 * base

	result, err := backoff.Retry(ctx, func() (T, error) {
		v, opErr := op(ctx)
		if opErr != nil && !IsTransient(opErr) {
			return v, backoff.Permanent(opErr)
		}
		return v, opErr
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			observability.StorageRetries.Inc()
			middleware.Logger.WarnContext(ctx, "retrying storage call",
				slog.String("error", err.Error()),
				slog.Duration("next", next),
			)
		}),
	)
	if err != nil && IsTransient(err) {
		return result, models.NewUnavailableError(err)
	}
	return result, err
}

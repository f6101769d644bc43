package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// RetryPolicy is the backoff schedule for store calls. Intervals grow by
// Multiplier from InitialInterval up to MaxInterval, and retrying stops once
// MaxElapsedTime has passed since the first attempt.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy suits DHT propagation: quick first retries, a 30s ceiling.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	Multiplier:      2,
	MaxElapsedTime:  30 * time.Second,
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier >= 1 {
		b.Multiplier = p.Multiplier
	}
	if p.MaxElapsedTime > 0 {
		b.MaxElapsedTime = p.MaxElapsedTime
	}
	b.Reset()
	return b
}

// IsPermanent reports whether err would not change on retry: not-found
// answers, cancellation, and every local error class.
func IsPermanent(err error) bool {
	switch {
	case errors.Is(err, herrors.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, herrors.ErrFormat),
		errors.Is(err, herrors.ErrCredential),
		errors.Is(err, herrors.ErrPermission),
		errors.Is(err, herrors.ErrInvalidUsage),
		errors.Is(err, herrors.ErrInvalidParams):
		return true
	}
	return false
}

// Do runs op until it succeeds, fails permanently, or the policy gives up.
// MaxElapsedTime bounds the whole call, including an attempt that is still
// running when it passes. A permanent error is returned as is; running out
// of time returns ErrRetriesExhausted wrapping the last error.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	b := p.newBackOff()
	budget := ctx
	if b.MaxElapsedTime > 0 {
		var cancel context.CancelFunc
		budget, cancel = context.WithTimeout(ctx, b.MaxElapsedTime)
		defer cancel()
	}

	attempts := 0
	cutOff := false
	var last error

	err := backoff.Retry(func() error {
		attempts++
		err := op(budget)
		if err == nil {
			return nil
		}
		if budget.Err() != nil && ctx.Err() == nil && !isLocalPermanent(err) {
			cutOff = true
			last = fmt.Errorf("%w: attempt cut off at %s: %w", herrors.ErrTransient, b.MaxElapsedTime, err)
			return backoff.Permanent(last)
		}
		last = err
		if IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, budget))

	switch {
	case err == nil:
		return nil
	case last != nil && !cutOff && IsPermanent(last):
		return last
	case ctx.Err() != nil:
		return ctx.Err()
	case last == nil:
		return fmt.Errorf("%w after %d attempts: %w", herrors.ErrRetriesExhausted, attempts, err)
	}
	return fmt.Errorf("%w after %d attempts: %w", herrors.ErrRetriesExhausted, attempts, last)
}

// isLocalPermanent is IsPermanent without the context errors, which a
// deadline inside Do can cause.
func isLocalPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return IsPermanent(err)
}

// Package retry implements bounded retries with exponential backoff and
// jitter for outbound calls, chiefly webhook delivery.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Error classification
// ─────────────────────────────────────────────────────────────────────────────

// RetryableError marks an error as worth retrying.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries a RetryableError mark.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// PermanentError marks an error that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as final. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError mark.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ─────────────────────────────────────────────────────────────────────────────
// Policy
// ─────────────────────────────────────────────────────────────────────────────

// Policy controls how a Retrier paces its attempts.
type Policy struct {
	// MaxAttempts counts the first try too. Values below 1 become 1.
	MaxAttempts int

	// InitialDelay is the pause after the first failure.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Multiplier grows the delay after each failed attempt.
	Multiplier float64

	// Jitter in [0,1] randomizes each delay by up to that fraction, so
	// a burst of failures does not retry in lockstep.
	Jitter float64

	// ShouldRetry overrides the default classification. When nil, only
	// errors marked Retryable are retried.
	ShouldRetry func(error) bool

	// OnRetry, when set, observes each scheduled retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		p.Jitter = 0.1
	}
	return p
}

// Retrier runs operations under a Policy.
type Retrier struct {
	policy Policy
}

// NewRetrier creates a Retrier, filling unset Policy fields with defaults.
func NewRetrier(p Policy) *Retrier {
	return &Retrier{policy: p.normalized()}
}

// WebhookRetrier paces notification webhook deliveries. Conservative on
// purpose: a struggling receiver gets three spaced attempts, not a storm.
func WebhookRetrier() *Retrier {
	return NewRetrier(Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.2,
	})
}

// DatabaseRetrier paces transient database errors with short delays.
func DatabaseRetrier() *Retrier {
	return NewRetrier(Policy{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       0.05,
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Execution
// ─────────────────────────────────────────────────────────────────────────────

// Do runs op until it succeeds, fails permanently, or attempts run out.
// The returned error is unwrapped from its Retryable/Permanent mark.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) {
			return errors.Unwrap(err)
		}

		retriable := IsRetryable(err)
		if r.policy.ShouldRetry != nil {
			retriable = r.policy.ShouldRetry(err)
		}
		if !retriable {
			return err
		}

		if attempt >= r.policy.MaxAttempts {
			if IsRetryable(err) {
				return errors.Unwrap(err)
			}
			return err
		}

		delay := r.delayFor(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}

// delayFor computes the backoff before the attempt that follows.
func (r *Retrier) delayFor(attempt int) time.Duration {
	d := float64(r.policy.InitialDelay) * math.Pow(r.policy.Multiplier, float64(attempt-1))
	if d > float64(r.policy.MaxDelay) {
		d = float64(r.policy.MaxDelay)
	}
	if r.policy.Jitter > 0 {
		d += d * r.policy.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Do is a one-shot convenience around NewRetrier.
func Do(ctx context.Context, op func(ctx context.Context) error, p Policy) error {
	return NewRetrier(p).Do(ctx, op)
}

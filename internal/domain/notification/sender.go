package notification

import (
	"context"
	"errors"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Delivery Results
// ═══════════════════════════════════════════════════════════════════════════

var (
	// ErrRateLimited is returned when the delivery channel throttles us.
	ErrRateLimited = errors.New("notification: rate limited")

	// ErrChannelUnavailable is returned when the channel cannot be reached.
	ErrChannelUnavailable = errors.New("notification: channel unavailable")
)

// DeliveryResult describes the outcome of a single delivery attempt.
type DeliveryResult struct {
	// Success reports whether the notification was accepted by the channel.
	Success bool

	// DeliveryID is the channel-assigned identifier for the delivery.
	DeliveryID string

	// DeliveredAt is when the attempt finished.
	DeliveredAt time.Time

	// Error holds the failure cause, if any.
	Error error

	// Retryable reports whether a retry may succeed.
	Retryable bool

	// RetryAfter is how long to wait before retrying (for rate limiting).
	RetryAfter time.Duration
}

// NewSuccessResult creates a successful delivery result.
func NewSuccessResult(deliveryID string) DeliveryResult {
	return DeliveryResult{
		Success:     true,
		DeliveryID:  deliveryID,
		DeliveredAt: time.Now().UTC(),
	}
}

// NewFailureResult creates a failed delivery result.
func NewFailureResult(err error, retryable bool) DeliveryResult {
	return DeliveryResult{
		Success:     false,
		DeliveredAt: time.Now().UTC(),
		Error:       err,
		Retryable:   retryable,
	}
}

// NewRateLimitedResult creates a throttled delivery result.
func NewRateLimitedResult(retryAfter time.Duration) DeliveryResult {
	return DeliveryResult{
		Success:     false,
		DeliveredAt: time.Now().UTC(),
		Error:       ErrRateLimited,
		Retryable:   true,
		RetryAfter:  retryAfter,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Sender Interface
// ═══════════════════════════════════════════════════════════════════════════

// Sender delivers notifications over some channel. Implementations live in
// the infrastructure layer.
type Sender interface {
	// Send delivers a single notification. A non-nil error means the attempt
	// failed outright; inspect the result for retryability.
	Send(ctx context.Context, n *Notification) (DeliveryResult, error)
}

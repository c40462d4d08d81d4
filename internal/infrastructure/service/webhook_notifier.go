// Package service contains infrastructure adapters for application services.
package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/notification"
	"github.com/campus-hub/campus-placement-hub/pkg/circuitbreaker"
	"github.com/campus-hub/campus-placement-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// WebhookConfig contains configuration for the webhook notifier.
type WebhookConfig struct {
	// URL is the endpoint notifications are POSTed to.
	URL string

	// Secret is the shared secret used to sign payloads.
	Secret string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultWebhookConfig returns sensible defaults.
func DefaultWebhookConfig(url, secret string) WebhookConfig {
	return WebhookConfig{
		URL:     url,
		Secret:  secret,
		Timeout: 15 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WEBHOOK NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Header names attached to every delivery.
const (
	headerSignature  = "X-Placement-Signature"
	headerDeliveryID = "X-Placement-Delivery"
	headerEventType  = "X-Placement-Event"
)

// ErrWebhookRejected is returned when the endpoint answers with a non-2xx status.
var ErrWebhookRejected = errors.New("webhook: endpoint rejected delivery")

// WebhookNotifier delivers notifications by POSTing signed JSON payloads to a
// configured endpoint. Transient failures are retried with backoff, and the
// endpoint is shielded by a circuit breaker so a dead receiver does not stall
// the event pipeline.
type WebhookNotifier struct {
	config     WebhookConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(config WebhookConfig) (*WebhookNotifier, error) {
	if config.URL == "" {
		return nil, errors.New("webhook: URL is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	logger := config.Logger

	return &WebhookNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		retrier: retry.WebhookRetrier(),
		breaker: circuitbreaker.WebhookBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("webhook circuit state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}),
		logger: logger,
	}, nil
}

// webhookPayload is the JSON body POSTed to the endpoint.
type webhookPayload struct {
	DeliveryID string            `json:"delivery_id"`
	Type       string            `json:"type"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Send delivers a notification to the webhook endpoint.
func (w *WebhookNotifier) Send(ctx context.Context, n *notification.Notification) (notification.DeliveryResult, error) {
	deliveryID := uuid.New().String()

	payload := webhookPayload{
		DeliveryID: deliveryID,
		Type:       string(n.Type),
		Recipient:  n.RecipientID,
		Subject:    n.Subject,
		Body:       n.Body,
		Data:       n.Data,
		CreatedAt:  n.CreatedAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return notification.NewFailureResult(err, false), err
	}

	err = w.breaker.Execute(ctx, func(ctx context.Context) error {
		return w.retrier.Do(ctx, func(ctx context.Context) error {
			return w.post(ctx, deliveryID, string(n.Type), body)
		})
	})

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return notification.NewFailureResult(notification.ErrChannelUnavailable, true), err
		}
		return notification.NewFailureResult(err, retry.IsRetryable(err)), err
	}

	w.logger.Debug("webhook delivered",
		"delivery_id", deliveryID,
		"type", n.Type,
		"recipient", n.RecipientID,
	)
	return notification.NewSuccessResult(deliveryID), nil
}

// post performs a single signed HTTP delivery attempt.
func (w *WebhookNotifier) post(ctx context.Context, deliveryID, eventType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerDeliveryID, deliveryID)
	req.Header.Set(headerEventType, eventType)
	if w.config.Secret != "" {
		req.Header.Set(headerSignature, w.sign(body))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return retry.Retryable(fmt.Errorf("%w: status %s", ErrWebhookRejected, resp.Status))
	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("%w: status %s", ErrWebhookRejected, resp.Status))
	default:
		// 4xx besides 429 will not improve on retry.
		return retry.Permanent(fmt.Errorf("%w: status %s", ErrWebhookRejected, resp.Status))
	}
}

// sign computes the hex HMAC-SHA256 of the payload with the shared secret.
func (w *WebhookNotifier) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(w.config.Secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// BreakerState exposes the circuit state for health reporting.
func (w *WebhookNotifier) BreakerState() string {
	return w.breaker.State().String()
}

// ══════════════════════════════════════════════════════════════════════════════
// LOG NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no webhook endpoint is configured and in tests.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the notification and reports success.
func (l *LogNotifier) Send(_ context.Context, n *notification.Notification) (notification.DeliveryResult, error) {
	l.logger.Info("notification (log only)",
		"type", n.Type,
		"recipient", n.RecipientID,
		"subject", n.Subject,
		"data_fields", strconv.Itoa(len(n.Data)),
	)
	return notification.NewSuccessResult(uuid.New().String()), nil
}

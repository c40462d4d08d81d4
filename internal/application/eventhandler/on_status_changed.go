// Package eventhandler contains domain event handlers.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/notification"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STATUS CHANGED HANDLER
// Fans application status changes out to students as notifications.
//
// Handles both locally published events and events reconstructed from the
// Redis channel, so all fields are read from the event payload map rather
// than through type assertions.
// ═══════════════════════════════════════════════════════════════════════════

// OnStatusChangedHandler notifies students when their application moves.
type OnStatusChangedHandler struct {
	openingRepo opening.Repository
	sender      notification.Sender
	logger      *slog.Logger
	config      StatusChangedConfig
}

// StatusChangedConfig controls which transitions produce notifications.
type StatusChangedConfig struct {
	// NotifyShortlisted sends a notification when a student is shortlisted.
	NotifyShortlisted bool

	// NotifyRejected sends a notification when an application is rejected.
	NotifyRejected bool

	// NotifySelected sends a notification when a student receives an offer.
	NotifySelected bool

	// SendTimeout bounds a single delivery attempt.
	SendTimeout time.Duration
}

// DefaultStatusChangedConfig returns the default configuration.
func DefaultStatusChangedConfig() StatusChangedConfig {
	return StatusChangedConfig{
		NotifyShortlisted: true,
		NotifyRejected:    true,
		NotifySelected:    true,
		SendTimeout:       10 * time.Second,
	}
}

// NewOnStatusChangedHandler creates a new status change handler.
func NewOnStatusChangedHandler(
	openingRepo opening.Repository,
	sender notification.Sender,
	logger *slog.Logger,
	config StatusChangedConfig,
) *OnStatusChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnStatusChangedHandler{
		openingRepo: openingRepo,
		sender:      sender,
		logger:      logger,
		config:      config,
	}
}

// Handle processes an application.status_changed event.
func (h *OnStatusChangedHandler) Handle(event shared.Event) error {
	p := event.Payload()
	studentID := payloadString(p, "student_id")
	openingID := payloadString(p, "opening_id")
	newStatus := payloadString(p, "new_status")

	if studentID == "" || newStatus == "" {
		h.logger.Warn("status change event missing fields", "payload", p)
		return nil
	}

	nType, ok := h.notificationType(newStatus)
	if !ok {
		// Under-review and other internal moves are not student-facing.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.SendTimeout)
	defer cancel()

	subject, body := h.composeMessage(ctx, nType, openingID)

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          uuid.New().String(),
		Type:        nType,
		RecipientID: studentID,
		Subject:     subject,
		Body:        body,
		Data: map[string]string{
			"application_id": payloadString(p, "application_id"),
			"opening_id":     openingID,
			"new_status":     newStatus,
		},
	})
	if err != nil {
		return fmt.Errorf("build notification: %w", err)
	}

	result, err := h.sender.Send(ctx, n)
	if err != nil {
		h.logger.Error("notification delivery failed",
			"type", nType,
			"student_id", studentID,
			"retryable", result.Retryable,
			"error", err,
		)
		return err
	}

	h.logger.Info("notification delivered",
		"type", nType,
		"student_id", studentID,
		"delivery_id", result.DeliveryID,
	)
	return nil
}

// notificationType maps a status to the notification to send, honoring config.
func (h *OnStatusChangedHandler) notificationType(status string) (notification.Type, bool) {
	switch status {
	case "shortlisted":
		return notification.TypeApplicationShortlisted, h.config.NotifyShortlisted
	case "rejected":
		return notification.TypeApplicationRejected, h.config.NotifyRejected
	case "selected":
		return notification.TypeApplicationSelected, h.config.NotifySelected
	default:
		return "", false
	}
}

// composeMessage builds the subject and body. The opening lookup is best
// effort; a missing opening still produces a usable message.
func (h *OnStatusChangedHandler) composeMessage(ctx context.Context, nType notification.Type, openingID string) (string, string) {
	company := "the company"
	role := "the role"
	if o, err := h.openingRepo.GetByID(ctx, openingID); err == nil {
		company = o.Company
		role = o.Role
	}

	switch nType {
	case notification.TypeApplicationShortlisted:
		return fmt.Sprintf("Shortlisted: %s", company),
			fmt.Sprintf("You have been shortlisted for %s at %s. Watch for round schedules.", role, company)
	case notification.TypeApplicationSelected:
		return fmt.Sprintf("Offer: %s", company),
			fmt.Sprintf("Congratulations! You have been selected for %s at %s.", role, company)
	case notification.TypeApplicationRejected:
		return fmt.Sprintf("Application update: %s", company),
			fmt.Sprintf("Your application for %s at %s will not be moving forward.", role, company)
	default:
		return "Application update", ""
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ON OPENING PUBLISHED HANDLER
// ═══════════════════════════════════════════════════════════════════════════

// BroadcastRecipient is the recipient ID used for campus-wide announcements.
const BroadcastRecipient = "students:all"

// OnOpeningPublishedHandler announces a new opening to the campus.
type OnOpeningPublishedHandler struct {
	sender notification.Sender
	logger *slog.Logger
}

// NewOnOpeningPublishedHandler creates a new opening announcement handler.
func NewOnOpeningPublishedHandler(sender notification.Sender, logger *slog.Logger) *OnOpeningPublishedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnOpeningPublishedHandler{
		sender: sender,
		logger: logger,
	}
}

// Handle processes an opening.published event.
func (h *OnOpeningPublishedHandler) Handle(event shared.Event) error {
	p := event.Payload()
	company := payloadString(p, "company")
	role := payloadString(p, "role")

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          uuid.New().String(),
		Type:        notification.TypeOpeningPublished,
		RecipientID: BroadcastRecipient,
		Subject:     fmt.Sprintf("New opening: %s at %s", role, company),
		Body:        fmt.Sprintf("%s is hiring for %s. Check eligibility and apply when the window opens.", company, role),
		Data: map[string]string{
			"opening_id": payloadString(p, "opening_id"),
			"deadline":   payloadString(p, "deadline"),
		},
	})
	if err != nil {
		return fmt.Errorf("build notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.sender.Send(ctx, n); err != nil {
		h.logger.Error("opening announcement failed", "error", err)
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// REGISTRATION
// ═══════════════════════════════════════════════════════════════════════════

// RegisterHandlers subscribes all notification handlers to the bus.
func RegisterHandlers(
	bus shared.EventSubscriber,
	statusChanged *OnStatusChangedHandler,
	openingPublished *OnOpeningPublishedHandler,
) error {
	if err := bus.Subscribe(shared.EventApplicationStatusChanged, statusChanged.Handle); err != nil {
		return err
	}
	return bus.Subscribe(shared.EventOpeningPublished, openingPublished.Handle)
}

// payloadString reads a string field from an event payload map.
func payloadString(p map[string]interface{}, key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Package notification defines outbound notifications produced by the
// placement pipeline and the delivery contract for sending them.
package notification

import (
	"errors"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Notification Types
// ═══════════════════════════════════════════════════════════════════════════

// Type identifies what the notification is about.
type Type string

const (
	// TypeOpeningPublished tells students a new opening is accepting applications.
	TypeOpeningPublished Type = "opening.published"

	// TypeApplicationShortlisted tells a student they advanced to the rounds.
	TypeApplicationShortlisted Type = "application.shortlisted"

	// TypeApplicationRejected tells a student their application was closed.
	TypeApplicationRejected Type = "application.rejected"

	// TypeApplicationSelected tells a student they received an offer.
	TypeApplicationSelected Type = "application.selected"

	// TypeRoundScheduled tells shortlisted candidates about an upcoming round.
	TypeRoundScheduled Type = "round.scheduled"
)

// IsValid reports whether the type is one of the known notification types.
func (t Type) IsValid() bool {
	switch t {
	case TypeOpeningPublished, TypeApplicationShortlisted,
		TypeApplicationRejected, TypeApplicationSelected, TypeRoundScheduled:
		return true
	}
	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// Notification Entity
// ═══════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidType is returned for unknown notification types.
	ErrInvalidType = errors.New("notification: invalid type")

	// ErrEmptyRecipient is returned when no recipient is set.
	ErrEmptyRecipient = errors.New("notification: recipient is required")

	// ErrEmptySubject is returned when the subject line is blank.
	ErrEmptySubject = errors.New("notification: subject is required")
)

// Notification is a single outbound message to a student or a broadcast
// audience. Data carries type-specific fields the delivery channel may
// include verbatim (opening ID, round name, schedule).
type Notification struct {
	ID          string
	Type        Type
	RecipientID string
	Subject     string
	Body        string
	Data        map[string]string
	CreatedAt   time.Time
}

// NewNotificationParams contains parameters for creating a notification.
type NewNotificationParams struct {
	ID          string
	Type        Type
	RecipientID string
	Subject     string
	Body        string
	Data        map[string]string
}

// NewNotification creates a validated notification.
func NewNotification(params NewNotificationParams) (*Notification, error) {
	if !params.Type.IsValid() {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(params.RecipientID) == "" {
		return nil, ErrEmptyRecipient
	}
	if strings.TrimSpace(params.Subject) == "" {
		return nil, ErrEmptySubject
	}

	data := params.Data
	if data == nil {
		data = make(map[string]string)
	}

	return &Notification{
		ID:          params.ID,
		Type:        params.Type,
		RecipientID: params.RecipientID,
		Subject:     strings.TrimSpace(params.Subject),
		Body:        params.Body,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

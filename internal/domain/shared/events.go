// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the pipeline.
const (
	// Student events
	EventStudentRegistered EventType = "student.registered"
	EventStudentPlaced     EventType = "student.placed"

	// Opening events
	EventOpeningPublished EventType = "opening.published"
	EventOpeningCompleted EventType = "opening.completed"
	EventWindowOpened     EventType = "opening.window_opened"
	EventWindowClosed     EventType = "opening.window_closed"

	// Application events
	EventApplicationSubmitted     EventType = "application.submitted"
	EventApplicationStatusChanged EventType = "application.status_changed"
	EventApplicationScoreUpdated  EventType = "application.score_updated"

	// Round events
	EventRoundScheduled EventType = "round.scheduled"
	EventRoundCompleted EventType = "round.completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentRegisteredEvent is emitted when a new student account is created.
type StudentRegisteredEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	Branch    string `json:"branch"`
	BatchYear int    `json:"batch_year"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"email":      e.Email,
		"branch":     e.Branch,
		"batch_year": e.BatchYear,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID, email, branch string, batchYear int) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventStudentRegistered, studentID),
		StudentID: studentID,
		Email:     email,
		Branch:    branch,
		BatchYear: batchYear,
	}
}

// StudentPlacedEvent is emitted when a student is finalized as placed.
type StudentPlacedEvent struct {
	BaseEvent
	StudentID     string `json:"student_id"`
	OpeningID     string `json:"opening_id"`
	ApplicationID string `json:"application_id"`
}

// Payload implements Event interface.
func (e StudentPlacedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"opening_id":     e.OpeningID,
		"application_id": e.ApplicationID,
	}
}

// NewStudentPlacedEvent creates a new StudentPlacedEvent.
func NewStudentPlacedEvent(studentID, openingID, applicationID string) StudentPlacedEvent {
	return StudentPlacedEvent{
		BaseEvent:     NewBaseEvent(EventStudentPlaced, studentID),
		StudentID:     studentID,
		OpeningID:     openingID,
		ApplicationID: applicationID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Opening Events
// ═══════════════════════════════════════════════════════════════════════════

// OpeningPublishedEvent is emitted when a new recruitment opening goes live.
type OpeningPublishedEvent struct {
	BaseEvent
	OpeningID string    `json:"opening_id"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	Deadline  time.Time `json:"deadline"`
	Positions int       `json:"positions"`
}

// Payload implements Event interface.
func (e OpeningPublishedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"opening_id": e.OpeningID,
		"company":    e.Company,
		"role":       e.Role,
		"deadline":   e.Deadline.Format(time.RFC3339),
		"positions":  e.Positions,
	}
}

// NewOpeningPublishedEvent creates a new OpeningPublishedEvent.
func NewOpeningPublishedEvent(openingID, company, role string, deadline time.Time, positions int) OpeningPublishedEvent {
	return OpeningPublishedEvent{
		BaseEvent: NewBaseEvent(EventOpeningPublished, openingID),
		OpeningID: openingID,
		Company:   company,
		Role:      role,
		Deadline:  deadline,
		Positions: positions,
	}
}

// WindowClosedEvent is emitted when a maintenance sweep deactivates a window
// whose closing instant has passed.
type WindowClosedEvent struct {
	BaseEvent
	WindowID  string    `json:"window_id"`
	OpeningID string    `json:"opening_id"`
	ClosedAt  time.Time `json:"closed_at"`
}

// Payload implements Event interface.
func (e WindowClosedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"window_id":  e.WindowID,
		"opening_id": e.OpeningID,
		"closed_at":  e.ClosedAt.Format(time.RFC3339),
	}
}

// NewWindowClosedEvent creates a new WindowClosedEvent.
func NewWindowClosedEvent(windowID, openingID string, closedAt time.Time) WindowClosedEvent {
	return WindowClosedEvent{
		BaseEvent: NewBaseEvent(EventWindowClosed, windowID),
		WindowID:  windowID,
		OpeningID: openingID,
		ClosedAt:  closedAt,
	}
}

// WindowOpenedEvent is emitted when an application window is registered.
type WindowOpenedEvent struct {
	BaseEvent
	WindowID  string    `json:"window_id"`
	OpeningID string    `json:"opening_id"`
	OpensAt   time.Time `json:"opens_at"`
	ClosesAt  time.Time `json:"closes_at"`
}

// Payload implements Event interface.
func (e WindowOpenedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"window_id":  e.WindowID,
		"opening_id": e.OpeningID,
		"opens_at":   e.OpensAt.Format(time.RFC3339),
		"closes_at":  e.ClosesAt.Format(time.RFC3339),
	}
}

// NewWindowOpenedEvent creates a new WindowOpenedEvent.
func NewWindowOpenedEvent(windowID, openingID string, opensAt, closesAt time.Time) WindowOpenedEvent {
	return WindowOpenedEvent{
		BaseEvent: NewBaseEvent(EventWindowOpened, windowID),
		WindowID:  windowID,
		OpeningID: openingID,
		OpensAt:   opensAt,
		ClosesAt:  closesAt,
	}
}

// OpeningCompletedEvent is emitted when an opening stops accepting candidates.
type OpeningCompletedEvent struct {
	BaseEvent
	OpeningID string `json:"opening_id"`
	Company   string `json:"company"`
	Reason    string `json:"reason"`
}

// Payload implements Event interface.
func (e OpeningCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"opening_id": e.OpeningID,
		"company":    e.Company,
		"reason":     e.Reason,
	}
}

// NewOpeningCompletedEvent creates a new OpeningCompletedEvent.
func NewOpeningCompletedEvent(openingID, company, reason string) OpeningCompletedEvent {
	return OpeningCompletedEvent{
		BaseEvent: NewBaseEvent(EventOpeningCompleted, openingID),
		OpeningID: openingID,
		Company:   company,
		Reason:    reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Application Events
// ═══════════════════════════════════════════════════════════════════════════

// ApplicationSubmittedEvent is emitted when a student successfully applies.
type ApplicationSubmittedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	OpeningID     string `json:"opening_id"`
}

// Payload implements Event interface.
func (e ApplicationSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id": e.ApplicationID,
		"student_id":     e.StudentID,
		"opening_id":     e.OpeningID,
	}
}

// NewApplicationSubmittedEvent creates a new ApplicationSubmittedEvent.
func NewApplicationSubmittedEvent(applicationID, studentID, openingID string) ApplicationSubmittedEvent {
	return ApplicationSubmittedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationSubmitted, applicationID),
		ApplicationID: applicationID,
		StudentID:     studentID,
		OpeningID:     openingID,
	}
}

// ApplicationStatusChangedEvent is emitted on every status transition.
// The notifier forwards it for shortlisted, selected, and rejected statuses.
type ApplicationStatusChangedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	OpeningID     string `json:"opening_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	ReviewerID    string `json:"reviewer_id,omitempty"`
}

// Payload implements Event interface.
func (e ApplicationStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id": e.ApplicationID,
		"student_id":     e.StudentID,
		"opening_id":     e.OpeningID,
		"old_status":     e.OldStatus,
		"new_status":     e.NewStatus,
		"reviewer_id":    e.ReviewerID,
	}
}

// NewApplicationStatusChangedEvent creates a new ApplicationStatusChangedEvent.
func NewApplicationStatusChangedEvent(applicationID, studentID, openingID, oldStatus, newStatus, reviewerID string) ApplicationStatusChangedEvent {
	return ApplicationStatusChangedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationStatusChanged, applicationID),
		ApplicationID: applicationID,
		StudentID:     studentID,
		OpeningID:     openingID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		ReviewerID:    reviewerID,
	}
}

// ApplicationScoreUpdatedEvent is emitted when a reviewer records a score.
type ApplicationScoreUpdatedEvent struct {
	BaseEvent
	ApplicationID string   `json:"application_id"`
	StudentID     string   `json:"student_id"`
	OpeningID     string   `json:"opening_id"`
	OldScore      *float64 `json:"old_score,omitempty"`
	NewScore      float64  `json:"new_score"`
	ReviewerID    string   `json:"reviewer_id,omitempty"`
}

// Payload implements Event interface.
func (e ApplicationScoreUpdatedEvent) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"application_id": e.ApplicationID,
		"student_id":     e.StudentID,
		"opening_id":     e.OpeningID,
		"new_score":      e.NewScore,
		"reviewer_id":    e.ReviewerID,
	}
	if e.OldScore != nil {
		p["old_score"] = *e.OldScore
	}
	return p
}

// NewApplicationScoreUpdatedEvent creates a new ApplicationScoreUpdatedEvent.
func NewApplicationScoreUpdatedEvent(applicationID, studentID, openingID string, oldScore *float64, newScore float64, reviewerID string) ApplicationScoreUpdatedEvent {
	return ApplicationScoreUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationScoreUpdated, applicationID),
		ApplicationID: applicationID,
		StudentID:     studentID,
		OpeningID:     openingID,
		OldScore:      oldScore,
		NewScore:      newScore,
		ReviewerID:    reviewerID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Round Events
// ═══════════════════════════════════════════════════════════════════════════

// RoundScheduledEvent is emitted when a recruitment round is scheduled.
type RoundScheduledEvent struct {
	BaseEvent
	RoundID     string    `json:"round_id"`
	OpeningID   string    `json:"opening_id"`
	RoundNumber int       `json:"round_number"`
	RoundName   string    `json:"round_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Payload implements Event interface.
func (e RoundScheduledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"round_id":     e.RoundID,
		"opening_id":   e.OpeningID,
		"round_number": e.RoundNumber,
		"round_name":   e.RoundName,
		"scheduled_at": e.ScheduledAt.Format(time.RFC3339),
	}
}

// NewRoundScheduledEvent creates a new RoundScheduledEvent.
func NewRoundScheduledEvent(roundID, openingID string, roundNumber int, roundName string, scheduledAt time.Time) RoundScheduledEvent {
	return RoundScheduledEvent{
		BaseEvent:   NewBaseEvent(EventRoundScheduled, roundID),
		RoundID:     roundID,
		OpeningID:   openingID,
		RoundNumber: roundNumber,
		RoundName:   roundName,
		ScheduledAt: scheduledAt,
	}
}

// RoundCompletedEvent is emitted after a round-completion sweep finishes.
type RoundCompletedEvent struct {
	BaseEvent
	RoundID     string `json:"round_id"`
	OpeningID   string `json:"opening_id"`
	RoundNumber int    `json:"round_number"`
	Advanced    int    `json:"advanced"`
	Selected    int    `json:"selected"`
	Failed      int    `json:"failed"`
}

// Payload implements Event interface.
func (e RoundCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"round_id":     e.RoundID,
		"opening_id":   e.OpeningID,
		"round_number": e.RoundNumber,
		"advanced":     e.Advanced,
		"selected":     e.Selected,
		"failed":       e.Failed,
	}
}

// NewRoundCompletedEvent creates a new RoundCompletedEvent.
func NewRoundCompletedEvent(roundID, openingID string, roundNumber, advanced, selected, failed int) RoundCompletedEvent {
	return RoundCompletedEvent{
		BaseEvent:   NewBaseEvent(EventRoundCompleted, roundID),
		RoundID:     roundID,
		OpeningID:   openingID,
		RoundNumber: roundNumber,
		Advanced:    advanced,
		Selected:    selected,
		Failed:      failed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

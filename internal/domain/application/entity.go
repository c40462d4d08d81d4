// Package application contains the application record domain model: a single
// student's application to an opening, its review state machine, and the
// per-change audit history.
package application

import (
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// Status defines the review status of an application.
type Status string

const (
	// StatusSubmitted - the application has been received.
	StatusSubmitted Status = "submitted"
	// StatusUnderReview - a reviewer has picked up the application.
	StatusUnderReview Status = "under-review"
	// StatusShortlisted - the candidate advances to the interview rounds.
	StatusShortlisted Status = "shortlisted"
	// StatusRejected - terminal: the candidate is out of this opening.
	StatusRejected Status = "rejected"
	// StatusSelected - terminal: the candidate received an offer.
	StatusSelected Status = "selected"
)

// transitions is the allowed status graph. Absent keys are terminal.
// Rejection is reachable from every non-terminal status: a submitted
// candidate can be withdrawn from a round without ever being picked up
// for review. The shortlisted-to-submitted edge exists for one purpose:
// a candidate advancing to the next round re-enters the ordinary review
// cycle there, so round entry resets the status to submitted.
var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusShortlisted, StatusRejected},
	StatusShortlisted: {StatusSelected, StatusRejected, StatusSubmitted},
}

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusShortlisted, StatusRejected, StatusSelected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions exist from the status.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo reports whether the move from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// Application is a student's application to one opening. A student may hold
// at most one application per opening, enforced by a unique constraint.
type Application struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// StudentID - the applying student.
	StudentID string

	// OpeningID - the opening applied to.
	OpeningID string

	// WindowID - the window the application was submitted through.
	WindowID string

	// Status - current review status.
	Status Status

	// Score - reviewer-assigned score on the 0-100 scale, nil until assigned.
	Score *float64

	// RoundNumber - the interview round the candidate currently sits in.
	// Zero until the candidate is added to a round.
	RoundNumber int

	// FormSnapshot - the student's academic profile frozen at submission
	// time. Later profile edits never touch it.
	FormSnapshot FormSnapshot

	// AppliedAt - submission time.
	AppliedAt time.Time

	// UpdatedAt - last update time.
	UpdatedAt time.Time
}

// FormSnapshot freezes the academic profile used for the eligibility decision.
type FormSnapshot struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Branch    string  `json:"branch"`
	BatchYear int     `json:"batch_year"`
	CGPA      float64 `json:"cgpa"`
	Backlogs  int     `json:"backlogs"`
}

// NewApplication creates a freshly submitted application.
func NewApplication(id, studentID, openingID, windowID string, snapshot FormSnapshot, now time.Time) (*Application, error) {
	if id == "" || studentID == "" || openingID == "" || windowID == "" {
		return nil, shared.NewDomainError("application", "Create", shared.ErrInvalidInput, "application, student, opening and window ids are required")
	}
	return &Application{
		ID:           id,
		StudentID:    studentID,
		OpeningID:    openingID,
		WindowID:     windowID,
		Status:       StatusSubmitted,
		FormSnapshot: snapshot,
		AppliedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

// Transition moves the application to the next status, enforcing the graph.
// Terminal applications reject every transition, including re-submission of
// a rejected candidate.
func (a *Application) Transition(next Status, now time.Time) error {
	if !next.IsValid() {
		return shared.NewDomainError("application", "Transition", shared.ErrInvalidInput, fmt.Sprintf("unknown status %q", next))
	}
	if a.Status.IsTerminal() {
		return shared.ErrTerminalApplication
	}
	if !a.Status.CanTransitionTo(next) {
		return shared.NewDomainError("application", "Transition", shared.ErrInvalidState,
			fmt.Sprintf("cannot move from %s to %s", a.Status, next))
	}
	a.Status = next
	a.UpdatedAt = now.UTC()
	return nil
}

// SetScore assigns or overwrites the reviewer score.
// Scoring a terminal application is rejected to keep the audit trail closed.
func (a *Application) SetScore(score float64, now time.Time) error {
	if s := shared.Score(score); !s.IsValid() {
		return shared.ErrInvalidScore
	}
	if a.Status.IsTerminal() {
		return shared.ErrTerminalApplication
	}
	a.Score = &score
	a.UpdatedAt = now.UTC()
	return nil
}

// EnterRound records that the candidate joined the given interview round.
// Only shortlisted candidates sit in rounds, and rounds are entered in order.
func (a *Application) EnterRound(roundNumber int, now time.Time) error {
	if a.Status != StatusShortlisted {
		return shared.NewDomainError("application", "EnterRound", shared.ErrInvalidState,
			fmt.Sprintf("only shortlisted candidates enter rounds, status is %s", a.Status))
	}
	if roundNumber != a.RoundNumber+1 {
		return shared.ErrRoundNotOrdered
	}
	a.RoundNumber = roundNumber
	a.UpdatedAt = now.UTC()
	return nil
}

// LeaveRound clears the candidate's round reference after a removal.
func (a *Application) LeaveRound(now time.Time) error {
	if a.RoundNumber == 0 {
		return shared.NewDomainError("application", "LeaveRound", shared.ErrInvalidState, "candidate is not in a round")
	}
	a.RoundNumber = 0
	a.UpdatedAt = now.UTC()
	return nil
}

// IsTerminal reports whether the application reached a terminal status.
func (a *Application) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// String returns a loggable representation of the application.
func (a *Application) String() string {
	return fmt.Sprintf("Application{ID: %s, Student: %s, Opening: %s, Status: %s}",
		a.ID, a.StudentID, a.OpeningID, a.Status)
}

// Clone returns a deep copy of the application.
func (a *Application) Clone() *Application {
	clone := *a
	if a.Score != nil {
		score := *a.Score
		clone.Score = &score
	}
	return &clone
}

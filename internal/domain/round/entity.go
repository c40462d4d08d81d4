// Package round contains the interview round domain model: an ordered
// sequence of selection stages per opening, each with an optional candidate
// capacity.
package round

import (
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

// Status defines the lifecycle status of an interview round.
type Status string

const (
	// StatusUpcoming - the round is scheduled but has not started.
	StatusUpcoming Status = "upcoming"
	// StatusOngoing - the round is in progress.
	StatusOngoing Status = "ongoing"
	// StatusCompleted - the round finished and its results were applied.
	StatusCompleted Status = "completed"
	// StatusCancelled - the round was called off.
	StatusCancelled Status = "cancelled"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the round can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Round is one interview stage of an opening. Rounds are numbered from 1
// and must be created contiguously.
type Round struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// OpeningID - the opening this round belongs to.
	OpeningID string

	// Number - 1-based position in the sequence, unique per opening.
	Number int

	// Name - human-readable stage name ("Online Test", "HR Interview").
	Name string

	// ScheduledAt - when the round takes place.
	ScheduledAt time.Time

	// MaxCandidates - capacity limit, nil means unlimited.
	MaxCandidates *int

	// CurrentCandidates - number of candidates currently in the round.
	CurrentCandidates int

	// Status - lifecycle status.
	Status Status

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last update time.
	UpdatedAt time.Time
}

// NewRoundParams contains parameters for scheduling a round.
type NewRoundParams struct {
	ID            string
	OpeningID     string
	Number        int
	Name          string
	ScheduledAt   time.Time
	MaxCandidates *int
}

// NewRound creates a scheduled round with validation. Contiguity against
// the opening's existing rounds is checked by the command handler, which
// knows the current highest number.
func NewRound(params NewRoundParams, now time.Time) (*Round, error) {
	if params.ID == "" || params.OpeningID == "" {
		return nil, shared.NewDomainError("round", "Create", shared.ErrInvalidInput, "round and opening ids are required")
	}
	if params.Number < 1 {
		return nil, shared.ErrRoundNotOrdered
	}
	if params.Name == "" {
		return nil, shared.NewDomainError("round", "Create", shared.ErrInvalidInput, "round name is required")
	}
	if params.MaxCandidates != nil && *params.MaxCandidates < 1 {
		return nil, shared.NewDomainError("round", "Create", shared.ErrValueOutOfRange, "max candidates must be positive")
	}

	return &Round{
		ID:            params.ID,
		OpeningID:     params.OpeningID,
		Number:        params.Number,
		Name:          params.Name,
		ScheduledAt:   params.ScheduledAt.UTC(),
		MaxCandidates: params.MaxCandidates,
		Status:        StatusUpcoming,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// HasCapacity reports whether one more candidate fits. The authoritative
// check is the conditional update in the repository; this is for fast-path
// rejection and for in-memory fakes.
func (r *Round) HasCapacity() bool {
	return r.MaxCandidates == nil || r.CurrentCandidates < *r.MaxCandidates
}

// AddCandidate increments the in-memory counter after a capacity check.
func (r *Round) AddCandidate() error {
	if r.Status.IsTerminal() {
		return shared.ErrRoundCompleted
	}
	if !r.HasCapacity() {
		return shared.ErrRoundFull
	}
	r.CurrentCandidates++
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveCandidate decrements the counter, never below zero.
func (r *Round) RemoveCandidate() {
	if r.CurrentCandidates > 0 {
		r.CurrentCandidates--
	}
	r.UpdatedAt = time.Now().UTC()
}

// Start moves the round to ongoing.
func (r *Round) Start() error {
	if r.Status != StatusUpcoming {
		return shared.NewDomainError("round", "Start", shared.ErrInvalidState,
			fmt.Sprintf("cannot start a %s round", r.Status))
	}
	r.Status = StatusOngoing
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete marks the round finished. Completing a completed round again is
// rejected so the results sweep never runs twice.
func (r *Round) Complete() error {
	if r.Status.IsTerminal() {
		return shared.ErrRoundCompleted
	}
	r.Status = StatusCompleted
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel calls the round off.
func (r *Round) Cancel() error {
	if r.Status.IsTerminal() {
		return shared.ErrRoundCompleted
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// String returns a loggable representation of the round.
func (r *Round) String() string {
	return fmt.Sprintf("Round{ID: %s, Opening: %s, Number: %d, Status: %s, Candidates: %d}",
		r.ID, r.OpeningID, r.Number, r.Status, r.CurrentCandidates)
}

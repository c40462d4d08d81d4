package application

import (
	"context"
)

// Repository defines the data access contract for applications.
type Repository interface {
	// Create persists a new application.
	// Returns shared.ErrDuplicateApplication when the student already
	// applied to the opening (unique constraint on student + opening).
	Create(ctx context.Context, a *Application) error

	// GetByID returns an application by its identifier.
	// Returns shared.ErrApplicationNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Application, error)

	// GetByStudentAndOpening returns the student's application to an opening.
	// Returns shared.ErrApplicationNotFound if none exists.
	GetByStudentAndOpening(ctx context.Context, studentID, openingID string) (*Application, error)

	// Update persists the mutable fields of an application.
	Update(ctx context.Context, a *Application) error

	// GetByOpening returns applications for an opening filtered by options.
	GetByOpening(ctx context.Context, openingID string, opts ListOptions) ([]*Application, error)

	// GetByStudent returns all applications of a student, newest first.
	GetByStudent(ctx context.Context, studentID string) ([]*Application, error)

	// GetByOpeningAndRound returns applications sitting in the given round
	// of an opening. Used by the round completion sweep.
	GetByOpeningAndRound(ctx context.Context, openingID string, roundNumber int) ([]*Application, error)

	// ExistsByStudentAndOpening reports whether the student already applied.
	ExistsByStudentAndOpening(ctx context.Context, studentID, openingID string) (bool, error)

	// CountByOpening returns the number of applications matching the options.
	CountByOpening(ctx context.Context, openingID string, opts ListOptions) (int64, error)
}

// HistoryRepository defines the append-only review audit trail.
type HistoryRepository interface {
	// Append stores a new audit entry. Entries are never updated or deleted.
	Append(ctx context.Context, e *ReviewEntry) error

	// ListByApplication returns an application's entries, most recent first.
	ListByApplication(ctx context.Context, applicationID string) ([]*ReviewEntry, error)

	// ListByReviewer returns a reviewer's entries, most recent first.
	ListByReviewer(ctx context.Context, reviewerID string, limit int) ([]*ReviewEntry, error)
}

// ListOptions defines pagination and filtering for application queries.
type ListOptions struct {
	Offset int
	Limit  int
	Status Status // empty means any status
}

// DefaultListOptions returns sensible list options.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 100}
}

package student

import (
	"context"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the persistence contract for students.
type Repository interface {
	// Create stores a new student. Returns shared.ErrStudentAlreadyExists
	// when the email is taken.
	Create(ctx context.Context, student *Student) error

	// GetByID returns a student by internal ID, or shared.ErrStudentNotFound.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail returns a student by email.
	GetByEmail(ctx context.Context, email shared.Email) (*Student, error)

	// Update persists changed student fields.
	Update(ctx context.Context, student *Student) error

	// GetAll lists students with pagination.
	GetAll(ctx context.Context, opts ListOptions) ([]*Student, error)

	// GetByBatch lists students of one graduating batch.
	GetByBatch(ctx context.Context, year shared.BatchYear, opts ListOptions) ([]*Student, error)

	// Count returns the total number of students.
	Count(ctx context.Context) (int, error)

	// MarkPlaced records a placement atomically: the update applies only
	// while placed is still false. Returns shared.ErrStudentAlreadyPlaced
	// when another finalization won the race, shared.ErrStudentNotFound
	// when the student does not exist.
	MarkPlaced(ctx context.Context, studentID, openingID string, at time.Time) error
}

// ListOptions controls pagination and ordering of student listings.
type ListOptions struct {
	Offset int
	Limit  int

	// SortBy names the column to order by.
	SortBy string

	// SortDesc orders descending.
	SortDesc bool

	// IncludePlaced keeps already-placed students in the listing.
	IncludePlaced bool
}

// DefaultListOptions lists by CGPA, best first, placed included.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:         100,
		SortBy:        "cgpa",
		SortDesc:      true,
		IncludePlaced: true,
	}
}

func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithoutPlaced filters out students who already hold an offer.
func (o ListOptions) WithoutPlaced() ListOptions {
	o.IncludePlaced = false
	return o
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Cache holds hot student profiles, keyed by student ID.
type Cache interface {
	// Get returns a cached profile or a cache-miss error.
	Get(ctx context.Context, studentID string) (*Student, error)

	// Set caches a profile for ttl.
	Set(ctx context.Context, student *Student, ttl time.Duration) error

	// Invalidate drops a cached profile.
	Invalidate(ctx context.Context, studentID string) error
}

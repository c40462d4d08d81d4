package round

import (
	"context"
)

// Repository defines the data access contract for interview rounds.
type Repository interface {
	// Create persists a new round.
	// Returns shared.ErrRoundNumberTaken when the opening already has a
	// round with the same number (unique constraint on opening + number).
	Create(ctx context.Context, r *Round) error

	// GetByID returns a round by its identifier.
	// Returns shared.ErrRoundNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Round, error)

	// GetByOpeningAndNumber returns a specific round of an opening.
	// Returns shared.ErrRoundNotFound if it does not exist.
	GetByOpeningAndNumber(ctx context.Context, openingID string, number int) (*Round, error)

	// GetByOpening returns all rounds of an opening ordered by number.
	GetByOpening(ctx context.Context, openingID string) ([]*Round, error)

	// MaxNumber returns the highest round number of an opening, 0 if none.
	MaxNumber(ctx context.Context, openingID string) (int, error)

	// Update persists changes to an existing round.
	Update(ctx context.Context, r *Round) error

	// TryAddCandidate atomically increments the candidate counter if the
	// round has capacity and is not terminal. Returns shared.ErrRoundFull
	// on a capacity miss and shared.ErrRoundCompleted on a terminal round.
	TryAddCandidate(ctx context.Context, roundID string) error

	// RemoveCandidate atomically decrements the candidate counter,
	// flooring at zero.
	RemoveCandidate(ctx context.Context, roundID string) error
}

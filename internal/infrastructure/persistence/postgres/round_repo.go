package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUND REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RoundRepository implements round.Repository for PostgreSQL.
type RoundRepository struct {
	conn *Connection
}

// NewRoundRepository creates a new RoundRepository.
func NewRoundRepository(conn *Connection) *RoundRepository {
	return &RoundRepository{conn: conn}
}

const roundColumns = `id, opening_id, round_number, name, scheduled_at,
	   max_candidates, current_candidates, status, created_at, updated_at`

// Create creates a new round.
func (r *RoundRepository) Create(ctx context.Context, rd *round.Round) error {
	query := `
		INSERT INTO recruitment_rounds (
			id, opening_id, round_number, name, scheduled_at,
			max_candidates, current_candidates, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		rd.ID,
		rd.OpeningID,
		rd.Number,
		rd.Name,
		rd.ScheduledAt,
		rd.MaxCandidates,
		rd.CurrentCandidates,
		string(rd.Status),
		rd.CreatedAt,
		rd.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrRoundNumberTaken
		}
		return fmt.Errorf("failed to create round: %w", err)
	}

	return nil
}

// GetByID returns a round by ID.
func (r *RoundRepository) GetByID(ctx context.Context, id string) (*round.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM recruitment_rounds WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanRound(row)
}

// GetByOpeningAndNumber returns a specific round of an opening.
func (r *RoundRepository) GetByOpeningAndNumber(ctx context.Context, openingID string, number int) (*round.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM recruitment_rounds
		WHERE opening_id = $1 AND round_number = $2`

	row := r.conn.QueryRow(ctx, query, openingID, number)
	return r.scanRound(row)
}

// GetByOpening returns all rounds of an opening ordered by number.
func (r *RoundRepository) GetByOpening(ctx context.Context, openingID string) ([]*round.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM recruitment_rounds
		WHERE opening_id = $1
		ORDER BY round_number ASC`

	rows, err := r.conn.Query(ctx, query, openingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	return r.scanRounds(rows)
}

// MaxNumber returns the highest round number of an opening, 0 if none.
func (r *RoundRepository) MaxNumber(ctx context.Context, openingID string) (int, error) {
	var max int
	err := r.conn.QueryRow(ctx,
		"SELECT COALESCE(MAX(round_number), 0) FROM recruitment_rounds WHERE opening_id = $1",
		openingID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max round number: %w", err)
	}
	return max, nil
}

// Update updates a round's mutable fields. The candidate counter is owned
// by TryAddCandidate/RemoveCandidate and is not written here.
func (r *RoundRepository) Update(ctx context.Context, rd *round.Round) error {
	query := `
		UPDATE recruitment_rounds SET
			name = $1,
			scheduled_at = $2,
			max_candidates = $3,
			status = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		rd.Name,
		rd.ScheduledAt,
		rd.MaxCandidates,
		string(rd.Status),
		time.Now().UTC(),
		rd.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrRoundNotFound
	}

	return nil
}

// TryAddCandidate atomically claims one capacity slot. The WHERE clause
// carries the whole capacity check, so two concurrent callers can never
// push the counter past the limit.
func (r *RoundRepository) TryAddCandidate(ctx context.Context, roundID string) error {
	query := `
		UPDATE recruitment_rounds SET
			current_candidates = current_candidates + 1,
			updated_at = $1
		WHERE id = $2
		  AND status IN ('upcoming', 'ongoing')
		  AND (max_candidates IS NULL OR current_candidates < max_candidates)
	`

	result, err := r.conn.Exec(ctx, query, time.Now().UTC(), roundID)
	if err != nil {
		return fmt.Errorf("failed to add candidate: %w", err)
	}

	if result.RowsAffected() == 0 {
		rd, err := r.GetByID(ctx, roundID)
		if err != nil {
			return err
		}
		if rd.Status.IsTerminal() {
			return shared.ErrRoundCompleted
		}
		return shared.ErrRoundFull
	}

	return nil
}

// RemoveCandidate atomically releases one slot, flooring at zero.
func (r *RoundRepository) RemoveCandidate(ctx context.Context, roundID string) error {
	query := `
		UPDATE recruitment_rounds SET
			current_candidates = current_candidates - 1,
			updated_at = $1
		WHERE id = $2 AND current_candidates > 0
	`

	if _, err := r.conn.Exec(ctx, query, time.Now().UTC(), roundID); err != nil {
		return fmt.Errorf("failed to remove candidate: %w", err)
	}
	return nil
}

// scanRound scans a single round from a row.
func (r *RoundRepository) scanRound(row pgx.Row) (*round.Round, error) {
	var rd round.Round
	var status string

	err := row.Scan(
		&rd.ID,
		&rd.OpeningID,
		&rd.Number,
		&rd.Name,
		&rd.ScheduledAt,
		&rd.MaxCandidates,
		&rd.CurrentCandidates,
		&status,
		&rd.CreatedAt,
		&rd.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}

	rd.Status = round.Status(status)
	return &rd, nil
}

// scanRounds scans multiple rounds from rows.
func (r *RoundRepository) scanRounds(rows pgx.Rows) ([]*round.Round, error) {
	var rounds []*round.Round

	for rows.Next() {
		rd, err := r.scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rounds, nil
}

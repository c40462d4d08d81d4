package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW HISTORY REPOSITORY IMPLEMENTATION
// The table is append-only: no UPDATE or DELETE exists here.
// ══════════════════════════════════════════════════════════════════════════════

// HistoryRepository implements application.HistoryRepository for PostgreSQL.
type HistoryRepository struct {
	conn *Connection
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(conn *Connection) *HistoryRepository {
	return &HistoryRepository{conn: conn}
}

const historyColumns = `id, application_id, reviewer_id, change_kind, old_status,
	   new_status, old_score, new_score, comment, created_at`

// Append stores a new audit entry.
func (r *HistoryRepository) Append(ctx context.Context, e *application.ReviewEntry) error {
	query := `
		INSERT INTO application_review_history (
			id, application_id, reviewer_id, change_kind, old_status,
			new_status, old_score, new_score, comment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.ApplicationID,
		e.ReviewerID,
		string(e.Kind),
		nullIfEmpty(string(e.OldStatus)),
		nullIfEmpty(string(e.NewStatus)),
		e.OldScore,
		e.NewScore,
		nullIfEmpty(e.Comment),
		e.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append review entry: %w", err)
	}

	return nil
}

// ListByApplication returns an application's entries, most recent first.
func (r *HistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]*application.ReviewEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM application_review_history
		WHERE application_id = $1
		ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query review history: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// ListByReviewer returns a reviewer's entries, most recent first.
func (r *HistoryRepository) ListByReviewer(ctx context.Context, reviewerID string, limit int) ([]*application.ReviewEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM application_review_history
		WHERE reviewer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.conn.Query(ctx, query, reviewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviewer history: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// scanEntries scans audit entries from rows.
func (r *HistoryRepository) scanEntries(rows pgx.Rows) ([]*application.ReviewEntry, error) {
	var entries []*application.ReviewEntry

	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepository) scanEntry(row pgx.Row) (*application.ReviewEntry, error) {
	var e application.ReviewEntry
	var kind string
	var oldStatus, newStatus, comment *string

	err := row.Scan(
		&e.ID,
		&e.ApplicationID,
		&e.ReviewerID,
		&kind,
		&oldStatus,
		&newStatus,
		&e.OldScore,
		&e.NewScore,
		&comment,
		&e.RecordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan review entry: %w", err)
	}

	e.Kind = application.ChangeKind(kind)
	if oldStatus != nil {
		e.OldStatus = application.Status(*oldStatus)
	}
	if newStatus != nil {
		e.NewStatus = application.Status(*newStatus)
	}
	if comment != nil {
		e.Comment = *comment
	}

	return &e, nil
}

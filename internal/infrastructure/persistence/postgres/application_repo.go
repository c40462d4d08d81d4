package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationRepository implements application.Repository for PostgreSQL.
type ApplicationRepository struct {
	conn *Connection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{conn: conn}
}

const applicationColumns = `id, student_id, opening_id, window_id, status, score,
	   round_number, form_snapshot, applied_at, updated_at`

// Create creates a new application. The UNIQUE (student_id, opening_id)
// constraint is the authoritative duplicate guard.
func (r *ApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	query := `
		INSERT INTO applications (
			id, student_id, opening_id, window_id, status, score,
			round_number, form_snapshot, applied_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	snapshotJSON, err := json.Marshal(a.FormSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal form snapshot: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		a.ID,
		a.StudentID,
		a.OpeningID,
		a.WindowID,
		string(a.Status),
		a.Score,
		a.RoundNumber,
		snapshotJSON,
		a.AppliedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID returns an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanApplication(row)
}

// GetByStudentAndOpening returns the student's application to an opening.
func (r *ApplicationRepository) GetByStudentAndOpening(ctx context.Context, studentID, openingID string) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE student_id = $1 AND opening_id = $2`

	row := r.conn.QueryRow(ctx, query, studentID, openingID)
	return r.scanApplication(row)
}

// Update updates the mutable fields of an application. The form snapshot is
// immutable and never rewritten.
func (r *ApplicationRepository) Update(ctx context.Context, a *application.Application) error {
	query := `
		UPDATE applications SET
			status = $1,
			score = $2,
			round_number = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		string(a.Status),
		a.Score,
		a.RoundNumber,
		time.Now().UTC(),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}

	return nil
}

// GetByOpening returns applications for an opening, newest first.
func (r *ApplicationRepository) GetByOpening(ctx context.Context, openingID string, opts application.ListOptions) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE opening_id = $1`
	args := []interface{}{openingID, opts.Limit, opts.Offset}

	if opts.Status != "" {
		query += " AND status = $4"
		args = append(args, string(opts.Status))
	}
	query += " ORDER BY applied_at DESC LIMIT $2 OFFSET $3"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	return r.scanApplications(rows)
}

// GetByStudent returns all applications of a student, newest first.
func (r *ApplicationRepository) GetByStudent(ctx context.Context, studentID string) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE student_id = $1
		ORDER BY applied_at DESC`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications by student: %w", err)
	}
	defer rows.Close()

	return r.scanApplications(rows)
}

// GetByOpeningAndRound returns applications sitting in a round.
func (r *ApplicationRepository) GetByOpeningAndRound(ctx context.Context, openingID string, roundNumber int) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
		WHERE opening_id = $1 AND round_number = $2
		ORDER BY applied_at ASC`

	rows, err := r.conn.Query(ctx, query, openingID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications by round: %w", err)
	}
	defer rows.Close()

	return r.scanApplications(rows)
}

// ExistsByStudentAndOpening reports whether the student already applied.
func (r *ApplicationRepository) ExistsByStudentAndOpening(ctx context.Context, studentID, openingID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM applications WHERE student_id = $1 AND opening_id = $2)",
		studentID, openingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application existence: %w", err)
	}
	return exists, nil
}

// CountByOpening returns the number of applications matching the options.
func (r *ApplicationRepository) CountByOpening(ctx context.Context, openingID string, opts application.ListOptions) (int64, error) {
	query := "SELECT COUNT(*) FROM applications WHERE opening_id = $1"
	args := []interface{}{openingID}
	if opts.Status != "" {
		query += " AND status = $2"
		args = append(args, string(opts.Status))
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// scanApplication scans a single application from a row.
func (r *ApplicationRepository) scanApplication(row pgx.Row) (*application.Application, error) {
	var a application.Application
	var status string
	var snapshotJSON []byte

	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.OpeningID,
		&a.WindowID,
		&status,
		&a.Score,
		&a.RoundNumber,
		&snapshotJSON,
		&a.AppliedAt,
		&a.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	a.Status = application.Status(status)
	if len(snapshotJSON) > 0 {
		if err := json.Unmarshal(snapshotJSON, &a.FormSnapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal form snapshot: %w", err)
		}
	}

	return &a, nil
}

// scanApplications scans multiple applications from rows.
func (r *ApplicationRepository) scanApplications(rows pgx.Rows) ([]*application.Application, error) {
	var apps []*application.Application

	for rows.Next() {
		a, err := r.scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return apps, nil
}

// Package postgres implements the PostgreSQL persistence layer for Campus Placement Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

const studentColumns = `id, email, password_hash, name, roll_number, branch, batch_year,
	   cgpa, backlogs, placed, placed_opening_id, placed_at, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, email, password_hash, name, roll_number, branch, batch_year,
			cgpa, backlogs, placed, placed_opening_id, placed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Email.String(),
		s.PasswordHash,
		s.Name,
		s.RollNumber,
		s.Branch.String(),
		s.BatchYear.Int(),
		s.CGPA.Float64(),
		s.Backlogs,
		s.Placed,
		nullIfEmpty(s.PlacedOpeningID),
		nullIfZeroTime(s.PlacedAt),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// GetByEmail returns a student by email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email shared.Email) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1`

	row := r.conn.QueryRow(ctx, query, email.Normalize().String())
	return r.scanStudent(row)
}

// Update updates a student's profile. The placed columns are owned by
// MarkPlaced and are deliberately not written here.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			email = $1,
			password_hash = $2,
			name = $3,
			roll_number = $4,
			branch = $5,
			batch_year = $6,
			cgpa = $7,
			backlogs = $8,
			updated_at = $9
		WHERE id = $10
	`

	result, err := r.conn.Exec(ctx, query,
		s.Email.String(),
		s.PasswordHash,
		s.Name,
		s.RollNumber,
		s.Branch.String(),
		s.BatchYear.Int(),
		s.CGPA.Float64(),
		s.Backlogs,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// MarkPlaced atomically flips the placed flag. The WHERE clause makes the
// first writer win: a second finalize for an already-placed student matches
// no rows.
func (r *StudentRepository) MarkPlaced(ctx context.Context, studentID, openingID string, at time.Time) error {
	query := `
		UPDATE students SET
			placed = TRUE,
			placed_opening_id = $1,
			placed_at = $2,
			updated_at = $2
		WHERE id = $3 AND placed = FALSE
	`

	result, err := r.conn.Exec(ctx, query, openingID, at.UTC(), studentID)
	if err != nil {
		return fmt.Errorf("failed to mark student placed: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, err := r.exists(ctx, studentID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrStudentNotFound
		}
		return shared.ErrStudentAlreadyPlaced
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns all students with pagination.
func (r *StudentRepository) GetAll(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	if !opts.IncludePlaced {
		query += ` WHERE placed = FALSE`
	}
	query += r.buildOrderBy(opts)

	args := []interface{}{}
	if opts.Limit > 0 {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// GetByBatch returns students of a batch year.
func (r *StudentRepository) GetByBatch(ctx context.Context, year shared.BatchYear, opts student.ListOptions) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE batch_year = $1`
	if !opts.IncludePlaced {
		query += ` AND placed = FALSE`
	}
	query += r.buildOrderBy(opts)
	query += ` LIMIT $2 OFFSET $3`

	rows, err := r.conn.Query(ctx, query, year.Int(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query students by batch: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func (r *StudentRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// scanStudent scans a single student from a row.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var email, branch string
	var batchYear int
	var cgpa float64
	var placedOpeningID *string
	var placedAt *time.Time

	err := row.Scan(
		&s.ID,
		&email,
		&s.PasswordHash,
		&s.Name,
		&s.RollNumber,
		&branch,
		&batchYear,
		&cgpa,
		&s.Backlogs,
		&s.Placed,
		&placedOpeningID,
		&placedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Email = shared.Email(email)
	s.Branch = shared.Branch(branch)
	s.BatchYear = shared.BatchYear(batchYear)
	s.CGPA = shared.CGPA(cgpa)
	if placedOpeningID != nil {
		s.PlacedOpeningID = *placedOpeningID
	}
	if placedAt != nil {
		s.PlacedAt = *placedAt
	}

	return &s, nil
}

// scanStudents scans multiple students from rows.
func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return students, nil
}

// buildOrderBy builds the ORDER BY clause from an allowlist of columns.
func (r *StudentRepository) buildOrderBy(opts student.ListOptions) string {
	orderField := "cgpa"
	validFields := map[string]string{
		"cgpa":       "cgpa",
		"name":       "name",
		"batch_year": "batch_year",
		"backlogs":   "backlogs",
		"created_at": "created_at",
	}

	if field, ok := validFields[opts.SortBy]; ok {
		orderField = field
	}

	direction := "DESC"
	if !opts.SortDesc {
		direction = "ASC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", orderField, direction)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

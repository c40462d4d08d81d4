package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// OPENING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// OpeningRepository implements opening.Repository for PostgreSQL.
type OpeningRepository struct {
	conn *Connection
}

// NewOpeningRepository creates a new OpeningRepository.
func NewOpeningRepository(conn *Connection) *OpeningRepository {
	return &OpeningRepository{conn: conn}
}

const openingColumns = `id, company, role, description, status, deadline, positions,
	   criteria, created_at, updated_at`

// Create creates a new opening.
func (r *OpeningRepository) Create(ctx context.Context, o *opening.Opening) error {
	query := `
		INSERT INTO openings (
			id, company, role, description, status, deadline, positions,
			criteria, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	criteriaJSON, err := json.Marshal(criteriaToMap(o.DefaultCriteria))
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		o.ID,
		o.Company,
		o.Role,
		o.Description,
		string(o.Status),
		o.Deadline,
		o.Positions,
		criteriaJSON,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create opening: %w", err)
	}

	return nil
}

// GetByID returns an opening by ID.
func (r *OpeningRepository) GetByID(ctx context.Context, id string) (*opening.Opening, error) {
	query := `SELECT ` + openingColumns + ` FROM openings WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanOpening(row)
}

// Update updates an opening.
func (r *OpeningRepository) Update(ctx context.Context, o *opening.Opening) error {
	query := `
		UPDATE openings SET
			company = $1,
			role = $2,
			description = $3,
			status = $4,
			deadline = $5,
			positions = $6,
			criteria = $7,
			updated_at = $8
		WHERE id = $9
	`

	criteriaJSON, err := json.Marshal(criteriaToMap(o.DefaultCriteria))
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		o.Company,
		o.Role,
		o.Description,
		string(o.Status),
		o.Deadline,
		o.Positions,
		criteriaJSON,
		time.Now().UTC(),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update opening: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrOpeningNotFound
	}

	return nil
}

// GetAll returns openings filtered by options.
func (r *OpeningRepository) GetAll(ctx context.Context, opts opening.ListOptions) ([]*opening.Opening, error) {
	query := `SELECT ` + openingColumns + ` FROM openings`
	args := []interface{}{opts.Limit, opts.Offset}

	where := ""
	if opts.Status != "" {
		where = " WHERE status = $3"
		args = append(args, string(opts.Status))
	}
	if opts.Company != "" {
		if where == "" {
			where = fmt.Sprintf(" WHERE company = $%d", len(args)+1)
		} else {
			where += fmt.Sprintf(" AND company = $%d", len(args)+1)
		}
		args = append(args, opts.Company)
	}
	query += where

	if opts.SortByDate {
		query += " ORDER BY deadline ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}
	query += " LIMIT $1 OFFSET $2"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query openings: %w", err)
	}
	defer rows.Close()

	return r.scanOpenings(rows)
}

// GetActivePastDeadline returns active openings whose deadline has passed.
func (r *OpeningRepository) GetActivePastDeadline(ctx context.Context, before time.Time) ([]*opening.Opening, error) {
	query := `SELECT ` + openingColumns + ` FROM openings
		WHERE status = 'active' AND deadline < $1
		ORDER BY deadline ASC`

	rows, err := r.conn.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired openings: %w", err)
	}
	defer rows.Close()

	return r.scanOpenings(rows)
}

// Count returns the number of openings matching the options.
func (r *OpeningRepository) Count(ctx context.Context, opts opening.ListOptions) (int64, error) {
	query := "SELECT COUNT(*) FROM openings"
	args := []interface{}{}
	if opts.Status != "" {
		query += " WHERE status = $1"
		args = append(args, string(opts.Status))
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count openings: %w", err)
	}
	return count, nil
}

// scanOpening scans a single opening from a row.
func (r *OpeningRepository) scanOpening(row pgx.Row) (*opening.Opening, error) {
	var o opening.Opening
	var status string
	var criteriaJSON []byte

	err := row.Scan(
		&o.ID,
		&o.Company,
		&o.Role,
		&o.Description,
		&status,
		&o.Deadline,
		&o.Positions,
		&criteriaJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrOpeningNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan opening: %w", err)
	}

	o.Status = opening.Status(status)
	o.DefaultCriteria = mapToCriteria(criteriaJSON)

	return &o, nil
}

// scanOpenings scans multiple openings from rows.
func (r *OpeningRepository) scanOpenings(rows pgx.Rows) ([]*opening.Opening, error) {
	var openings []*opening.Opening

	for rows.Next() {
		o, err := r.scanOpening(rows)
		if err != nil {
			return nil, err
		}
		openings = append(openings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return openings, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA CONVERSION
// ══════════════════════════════════════════════════════════════════════════════

// criteriaToMap converts EligibilityCriteria to a map for JSONB storage.
// Unset dimensions are omitted so the stored document stays minimal.
func criteriaToMap(c opening.EligibilityCriteria) map[string]interface{} {
	m := map[string]interface{}{}
	if c.MinCGPA != nil {
		m["min_cgpa"] = *c.MinCGPA
	}
	if c.MaxBacklogs != nil {
		m["max_backlogs"] = *c.MaxBacklogs
	}
	if len(c.Branches) > 0 {
		branches := make([]string, 0, len(c.Branches))
		for _, b := range c.Branches {
			branches = append(branches, b.String())
		}
		m["branches"] = branches
	}
	if c.PassingYear != nil {
		m["passing_year"] = *c.PassingYear
	}
	return m
}

// mapToCriteria converts JSONB bytes to EligibilityCriteria.
func mapToCriteria(data []byte) opening.EligibilityCriteria {
	var c opening.EligibilityCriteria
	if len(data) == 0 {
		return c
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return c
	}

	if v, ok := m["min_cgpa"].(float64); ok {
		c.MinCGPA = &v
	}
	if v, ok := m["max_backlogs"].(float64); ok {
		n := int(v)
		c.MaxBacklogs = &n
	}
	if v, ok := m["branches"].([]interface{}); ok {
		for _, b := range v {
			if s, ok := b.(string); ok {
				c.Branches = append(c.Branches, shared.Branch(s))
			}
		}
	}
	if v, ok := m["passing_year"].(float64); ok {
		n := int(v)
		c.PassingYear = &n
	}
	return c
}

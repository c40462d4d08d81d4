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
// APPLICATION WINDOW REPOSITORY IMPLEMENTATION
// Times of day are stored as "HH:MM" text: the windows are defined in campus
// local time and combined with the date in the domain, not in SQL.
// ══════════════════════════════════════════════════════════════════════════════

// WindowRepository implements opening.WindowRepository for PostgreSQL.
type WindowRepository struct {
	conn *Connection
}

// NewWindowRepository creates a new WindowRepository.
func NewWindowRepository(conn *Connection) *WindowRepository {
	return &WindowRepository{conn: conn}
}

const windowColumns = `id, opening_id, start_date, start_time, end_date, end_time,
	   criteria, active, created_at, updated_at`

// Create creates a new application window.
func (r *WindowRepository) Create(ctx context.Context, w *opening.ApplicationWindow) error {
	query := `
		INSERT INTO application_windows (
			id, opening_id, start_date, start_time, end_date, end_time,
			criteria, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	criteriaJSON, err := json.Marshal(criteriaToMap(w.Criteria))
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		w.ID,
		w.OpeningID,
		w.StartDate,
		w.StartTime.String(),
		w.EndDate,
		w.EndTime.String(),
		criteriaJSON,
		w.Active,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	return nil
}

// GetByID returns a window by ID.
func (r *WindowRepository) GetByID(ctx context.Context, id string) (*opening.ApplicationWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM application_windows WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanWindow(row)
}

// Update updates a window.
func (r *WindowRepository) Update(ctx context.Context, w *opening.ApplicationWindow) error {
	query := `
		UPDATE application_windows SET
			start_date = $1,
			start_time = $2,
			end_date = $3,
			end_time = $4,
			criteria = $5,
			active = $6,
			updated_at = $7
		WHERE id = $8
	`

	criteriaJSON, err := json.Marshal(criteriaToMap(w.Criteria))
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		w.StartDate,
		w.StartTime.String(),
		w.EndDate,
		w.EndTime.String(),
		criteriaJSON,
		w.Active,
		time.Now().UTC(),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update window: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrWindowNotFound
	}

	return nil
}

// GetByOpening returns all windows of an opening, earliest first.
func (r *WindowRepository) GetByOpening(ctx context.Context, openingID string) ([]*opening.ApplicationWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM application_windows
		WHERE opening_id = $1
		ORDER BY start_date ASC, start_time ASC`

	rows, err := r.conn.Query(ctx, query, openingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer rows.Close()

	return r.scanWindows(rows)
}

// GetActive returns all active windows.
func (r *WindowRepository) GetActive(ctx context.Context) ([]*opening.ApplicationWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM application_windows
		WHERE active = TRUE
		ORDER BY start_date ASC, start_time ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active windows: %w", err)
	}
	defer rows.Close()

	return r.scanWindows(rows)
}

// scanWindow scans a single window from a row.
func (r *WindowRepository) scanWindow(row pgx.Row) (*opening.ApplicationWindow, error) {
	var w opening.ApplicationWindow
	var startTime, endTime string
	var criteriaJSON []byte

	err := row.Scan(
		&w.ID,
		&w.OpeningID,
		&w.StartDate,
		&startTime,
		&w.EndDate,
		&endTime,
		&criteriaJSON,
		&w.Active,
		&w.CreatedAt,
		&w.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrWindowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan window: %w", err)
	}

	if w.StartTime, err = parseTimeOfDay(startTime); err != nil {
		return nil, err
	}
	if w.EndTime, err = parseTimeOfDay(endTime); err != nil {
		return nil, err
	}
	w.Criteria = mapToCriteria(criteriaJSON)

	return &w, nil
}

// scanWindows scans multiple windows from rows.
func (r *WindowRepository) scanWindows(rows pgx.Rows) ([]*opening.ApplicationWindow, error) {
	var windows []*opening.ApplicationWindow

	for rows.Next() {
		w, err := r.scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return windows, nil
}

func parseTimeOfDay(value string) (shared.TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return shared.TimeOfDay{}, fmt.Errorf("invalid stored time of day %q: %w", value, err)
	}
	return shared.NewTimeOfDay(hour, minute)
}

// Package student contains the campus student domain model.
// This is core business logic - no external dependencies here.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is the central entity of the system, representing one campus student.
type Student struct {
	// ID is the internal unique identifier (UUID as a string).
	ID string

	// Email is the institute email, unique across the system.
	Email shared.Email

	// PasswordHash is the bcrypt hash of the password. Sessions and
	// authorization live outside; only the account itself is stored here.
	PasswordHash string

	// Name is the student's full name.
	Name string

	// RollNumber is the student card number.
	RollNumber string

	// Branch is the field of study (CSE, ECE, ...).
	Branch shared.Branch

	// BatchYear is the graduation year.
	BatchYear shared.BatchYear

	// CGPA is the grade average on a 0-10 scale.
	CGPA shared.CGPA

	// Backlogs is the number of uncleared subjects.
	Backlogs int

	// Placed marks that the student already holds an offer from a
	// completed selection.
	Placed bool

	// PlacedOpeningID is the opening the student was placed through.
	// Empty while Placed == false.
	PlacedOpeningID string

	// PlacedAt is when the placement was finalized.
	PlacedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidName      = errors.New("invalid name: must be 1-100 chars")
	ErrInvalidBranch    = errors.New("invalid branch: must be 2-30 chars without whitespace")
	ErrInvalidBatchYear = errors.New("invalid batch year")
	ErrInvalidBacklogs  = errors.New("invalid backlogs: must be non-negative")

	// ErrAlreadyPlaced rejects a second placement attempt.
	ErrAlreadyPlaced = errors.New("student is already placed")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams carries the inputs for creating a student.
type NewStudentParams struct {
	ID           string
	Email        shared.Email
	PasswordHash string
	Name         string
	RollNumber   string
	Branch       shared.Branch
	BatchYear    shared.BatchYear
	CGPA         shared.CGPA
	Backlogs     int
}

// NewStudent creates a student, validating every field.
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, errors.New("student id is required")
	}

	email := params.Email.Normalize()
	if !email.IsValid() {
		return nil, ErrInvalidEmail
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	branch := params.Branch.Normalize()
	if !branch.IsValid() {
		return nil, ErrInvalidBranch
	}

	if !params.BatchYear.IsValid() {
		return nil, ErrInvalidBatchYear
	}

	if !params.CGPA.IsValid() {
		return nil, shared.NewDomainError("student", "Validate", shared.ErrValueOutOfRange, "CGPA must be between 0 and 10")
	}

	if params.Backlogs < 0 {
		return nil, ErrInvalidBacklogs
	}

	now := time.Now().UTC()

	return &Student{
		ID:           params.ID,
		Email:        email,
		PasswordHash: params.PasswordHash,
		Name:         name,
		RollNumber:   strings.TrimSpace(params.RollNumber),
		Branch:       branch,
		BatchYear:    params.BatchYear,
		CGPA:         params.CGPA,
		Backlogs:     params.Backlogs,
		Placed:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// UpdateAcademics refreshes the academic figures, as synced from the
// dean's office records.
func (s *Student) UpdateAcademics(cgpa shared.CGPA, backlogs int) error {
	if !cgpa.IsValid() {
		return shared.NewDomainError("student", "UpdateAcademics", shared.ErrValueOutOfRange, "CGPA must be between 0 and 10")
	}
	if backlogs < 0 {
		return ErrInvalidBacklogs
	}

	s.CGPA = cgpa
	s.Backlogs = backlogs
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPlaced records the student's placement through the given opening.
// Reject-second policy: a later placement through another opening is
// refused, the first record stands.
func (s *Student) MarkPlaced(openingID string, at time.Time) error {
	if openingID == "" {
		return errors.New("opening id is required")
	}
	if s.Placed {
		return ErrAlreadyPlaced
	}

	s.Placed = true
	s.PlacedOpeningID = openingID
	s.PlacedAt = at
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IsPlacedBy reports whether the student was placed through this exact opening.
func (s *Student) IsPlacedBy(openingID string) bool {
	return s.Placed && s.PlacedOpeningID == openingID
}

// String renders the student for logging.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Email: %s, Branch: %s, CGPA: %s, Placed: %t}",
		s.ID, s.Email, s.Branch, s.CGPA, s.Placed,
	)
}

// Clone returns a copy of the student.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	return &clone
}

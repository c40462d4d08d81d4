// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Creates the durable student account with its academic profile.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data needed to register a student.
type RegisterStudentCommand struct {
	Email      string
	Password   string
	Name       string
	RollNumber string
	Branch     string
	BatchYear  int
	CGPA       float64
	Backlogs   int

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if c.Email == "" {
		return errors.New("register_student: email is required")
	}
	if len(c.Password) < 8 {
		return errors.New("register_student: password must be at least 8 characters")
	}
	if c.Name == "" {
		return errors.New("register_student: name is required")
	}
	return nil
}

// RegisterStudentResult contains the result of registration.
type RegisterStudentResult struct {
	// StudentID is the internal ID of the created student.
	StudentID string

	// RegisteredAt is when the account was created.
	RegisteredAt time.Time
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *RegisterStudentHandler {
	return &RegisterStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register student command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_student: validation failed: %w", err)
	}

	email := shared.Email(cmd.Email).Normalize()
	if _, err := h.studentRepo.GetByEmail(ctx, email); err == nil {
		return nil, shared.ErrStudentAlreadyExists
	} else if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("register_student: failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register_student: failed to hash password: %w", err)
	}

	s, err := student.NewStudent(student.NewStudentParams{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         cmd.Name,
		RollNumber:   cmd.RollNumber,
		Branch:       shared.Branch(cmd.Branch).Normalize(),
		BatchYear:    shared.BatchYear(cmd.BatchYear),
		CGPA:         shared.CGPA(cmd.CGPA),
		Backlogs:     cmd.Backlogs,
	})
	if err != nil {
		return nil, fmt.Errorf("register_student: %w", err)
	}

	if err := h.studentRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("register_student: failed to save student: %w", err)
	}

	event := shared.NewStudentRegisteredEvent(s.ID, s.Email.String(), s.Branch.String(), s.BatchYear.Int())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if err := h.eventPublisher.Publish(event); err != nil {
		// The account is saved; event delivery is best-effort.
		_ = err
	}

	return &RegisterStudentResult{
		StudentID:    s.ID,
		RegisteredAt: s.CreatedAt,
	}, nil
}

// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrPastDate        = errors.New("date cannot be in the past")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrTerminalState   = errors.New("entity is in a terminal state")
	ErrExpired         = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConflict               = errors.New("conflict")
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "application", "round"
	Op      string // Operation that failed, e.g., "Create", "UpdateStatus"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrStudentAlreadyPlaced = NewDomainError("student", "Finalize", ErrConflict, "student is already placed")
)

// Opening domain errors
var (
	ErrOpeningNotFound    = NewDomainError("opening", "Find", ErrNotFound, "opening not found")
	ErrOpeningInactive    = NewDomainError("opening", "CheckStatus", ErrInvalidState, "opening is not active")
	ErrDeadlinePassed     = NewDomainError("opening", "CheckDeadline", ErrExpired, "opening deadline has passed")
	ErrWindowNotFound     = NewDomainError("window", "Find", ErrNotFound, "application window not found")
	ErrWindowNotOpen      = NewDomainError("window", "CheckOpen", ErrInvalidState, "application window is not open")
	ErrInvalidWindowRange = NewDomainError("window", "Validate", ErrInvalidInput, "window start must precede window end")
)

// Application domain errors
var (
	ErrApplicationNotFound  = NewDomainError("application", "Find", ErrNotFound, "application not found")
	ErrDuplicateApplication = NewDomainError("application", "Create", ErrAlreadyExists, "application already exists for this student and opening")
	ErrInvalidScore         = NewDomainError("application", "UpdateScore", ErrValueOutOfRange, "score must be between 0 and 100")
	ErrTerminalApplication  = NewDomainError("application", "UpdateStatus", ErrTerminalState, "application is selected or rejected and cannot change")
)

// Round domain errors
var (
	ErrRoundNotFound    = NewDomainError("round", "Find", ErrNotFound, "recruitment round not found")
	ErrRoundNumberTaken = NewDomainError("round", "Create", ErrAlreadyExists, "round number already exists for this opening")
	ErrRoundNotOrdered  = NewDomainError("round", "Create", ErrInvalidInput, "round numbers must be contiguous starting at 1")
	ErrRoundFull        = NewDomainError("round", "AddCandidate", ErrConflict, "round has reached its candidate capacity")
	ErrRoundCompleted   = NewDomainError("round", "CheckStatus", ErrInvalidState, "round is already completed or cancelled")
)

// Notifier errors
var (
	ErrNotificationFailed = NewDomainError("notifier", "Send", ErrExternalService, "failed to deliver notification")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrPastDate)
}

// IsConflict checks if the error is a retryable conflict: a capacity or
// uniqueness race that a caller may resolve by re-reading and retrying.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsTerminalState checks if the error came from touching a finished entity.
func IsTerminalState(err error) bool {
	return errors.Is(err, ErrTerminalState)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Academic Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// CGPA represents a cumulative grade point average on the 0-10 scale.
type CGPA float64

// IsValid checks if the CGPA is within the 0-10 range.
func (c CGPA) IsValid() bool {
	return c >= 0 && c <= 10
}

// Float64 returns the underlying float64 value.
func (c CGPA) Float64() float64 {
	return float64(c)
}

// String returns the string representation with one decimal place.
func (c CGPA) String() string {
	return fmt.Sprintf("%.1f", float64(c))
}

// NewCGPA creates a new CGPA with validation.
func NewCGPA(v float64) (CGPA, error) {
	c := CGPA(v)
	if !c.IsValid() {
		return 0, NewDomainError("student", "Validate", ErrValueOutOfRange, "CGPA must be between 0 and 10")
	}
	return c, nil
}

// Score represents a reviewer-assigned score on the 0-100 scale.
type Score float64

// IsValid checks if the score is within the 0-100 range.
func (s Score) IsValid() bool {
	return s >= 0 && s <= 100
}

// Float64 returns the underlying float64 value.
func (s Score) Float64() float64 {
	return float64(s)
}

// NewScore creates a new Score with validation.
func NewScore(v float64) (Score, error) {
	s := Score(v)
	if !s.IsValid() {
		return 0, ErrInvalidScore
	}
	return s, nil
}

// Branch represents an academic branch/department code (e.g., "CSE", "ECE").
type Branch string

// IsValid checks that the branch code is a short non-empty token.
func (b Branch) IsValid() bool {
	s := string(b)
	return len(s) >= 2 && len(s) <= 30 && !strings.ContainsAny(s, " \t\n\r")
}

// Normalize returns the uppercase form used for comparisons.
func (b Branch) Normalize() Branch {
	return Branch(strings.ToUpper(strings.TrimSpace(string(b))))
}

// String returns the string representation.
func (b Branch) String() string {
	return string(b)
}

// BatchYear represents a graduation batch year.
type BatchYear int

// IsValid checks that the year is in a sane range for an active campus.
func (y BatchYear) IsValid() bool {
	return y >= 2000 && y <= 2100
}

// Int returns the underlying int value.
func (y BatchYear) Int() int {
	return int(y)
}

// ═══════════════════════════════════════════════════════════════════════════
// Identity Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Email represents a student or reviewer email address.
type Email string

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValid checks if the email has a plausible format.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// Normalize returns a normalized (lowercase) version of the email.
func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// ═══════════════════════════════════════════════════════════════════════════
// Time-of-Day Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeOfDay is a wall-clock time without a date, used for window boundaries.
// Application windows store their date range and daily time range separately;
// the effective boundary instant is the date combined with the time-of-day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// IsValid checks the hour and minute ranges.
func (t TimeOfDay) IsValid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String returns the HH:MM representation.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the offset from midnight in minutes, for ordering.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// NewTimeOfDay creates a TimeOfDay with validation.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.IsValid() {
		return TimeOfDay{}, NewDomainError("window", "Validate", ErrValueOutOfRange, "time of day out of range")
	}
	return t, nil
}

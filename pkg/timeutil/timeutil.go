// Package timeutil provides timezone utilities for the campus timezone (UTC+5:30).
// The placement cell, recruiters, and students all operate on Indian Standard Time,
// so window boundaries and round schedules are interpreted in IST.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// CampusTZ is the campus timezone (IST, UTC+5:30, no DST).
var CampusTZ = time.FixedZone("Asia/Kolkata", 5*60*60+30*60)

// Now returns the current time in the campus timezone.
func Now() time.Time {
	return time.Now().In(CampusTZ)
}

// ToCampus converts a time to the campus timezone.
func ToCampus(t time.Time) time.Time {
	return t.In(CampusTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in the campus timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, CampusTZ)
}

// DateTime creates a time in the campus timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, CampusTZ)
}

// Combine merges the calendar date of d with a time-of-day, in the campus
// timezone. Application windows store dates and times-of-day separately;
// their effective boundary instants come from this combination.
func Combine(d time.Time, hour, min int) time.Time {
	campus := ToCampus(d)
	return time.Date(campus.Year(), campus.Month(), campus.Day(), hour, min, 0, 0, CampusTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the campus timezone.
func StartOfDay(t time.Time) time.Time {
	campus := ToCampus(t)
	return time.Date(campus.Year(), campus.Month(), campus.Day(), 0, 0, 0, 0, CampusTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the campus timezone.
func EndOfDay(t time.Time) time.Time {
	campus := ToCampus(t)
	return time.Date(campus.Year(), campus.Month(), campus.Day(), 23, 59, 59, 999999999, CampusTZ)
}

// IsSameDay checks if two times are on the same day in the campus timezone.
func IsSameDay(t1, t2 time.Time) bool {
	c1, c2 := ToCampus(t1), ToCampus(t2)
	return c1.Year() == c2.Year() && c1.YearDay() == c2.YearDay()
}

// IsToday checks if the given time is today in the campus timezone.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	c1 := StartOfDay(t1)
	c2 := StartOfDay(t2)
	days := int(c2.Sub(c1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// DaysUntil returns the number of whole days from now until the given time.
// Negative when the time is in the past.
func DaysUntil(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	return int(then.Sub(now).Hours() / 24)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
)

// FormatCampus formats a time in the campus timezone with the given layout.
func FormatCampus(t time.Time, layout string) string {
	return ToCampus(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in the campus timezone.
func FormatDateStr(t time.Time) string {
	return FormatCampus(t, FormatDate)
}

// FormatTimeStr formats a time as a time string (HH:MM) in the campus timezone.
func FormatTimeStr(t time.Time) string {
	return FormatCampus(t, FormatTime)
}

// ParseCampus parses a time string in the campus timezone.
func ParseCampus(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, CampusTZ)
}

// ParseDateCampus parses a date string (YYYY-MM-DD) in the campus timezone.
func ParseDateCampus(value string) (time.Time, error) {
	return ParseCampus(FormatDate, value)
}

// ParseTimeOfDay parses an HH:MM string into hour and minute components.
func ParseTimeOfDay(value string) (hour, min int, err error) {
	t, err := time.Parse(FormatTime, value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	now := Now()
	campus := ToCampus(t)
	duration := now.Sub(campus)

	if duration < 0 {
		return formatFutureDuration(-duration)
	}
	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return fmt.Sprintf("%d weeks ago", int(d.Hours()/24/7))
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %d h", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %d days", days)
	}
}

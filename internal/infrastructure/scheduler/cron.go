package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CronExpression is a parsed 5-field cron expression
// (minute hour day-of-month month day-of-week) usable as a Schedule.
// Examples:
//   - "*/5 * * * *"  - every 5 minutes
//   - "0 21 * * *"   - every day at 21:00, for the nightly opening sweep
//   - "0 0 * * 0"    - every Sunday at midnight
type CronExpression struct {
	raw      string
	minutes  []int // 0-59
	hours    []int // 0-23
	days     []int // 1-31
	months   []int // 1-12
	weekdays []int // 0-6 (0 = Sunday)
}

// ParseCronExpression parses a cron expression string. Each field accepts
// a comma-separated list of terms, where a term is *, n or n-m, optionally
// followed by /step.
func ParseCronExpression(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("invalid cron expression: expected 5 fields, got %d", len(fields))
	}

	ce := &CronExpression{raw: expr}

	specs := []struct {
		name     string
		min, max int
		dst      *[]int
	}{
		{"minute", 0, 59, &ce.minutes},
		{"hour", 0, 23, &ce.hours},
		{"day", 1, 31, &ce.days},
		{"month", 1, 12, &ce.months},
		{"weekday", 0, 6, &ce.weekdays},
	}

	for i, spec := range specs {
		values, err := parseCronField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", spec.name, err)
		}
		*spec.dst = values
	}

	return ce, nil
}

// MustParseCronExpression parses a cron expression or panics.
// Use only for compile-time constants.
func MustParseCronExpression(expr string) *CronExpression {
	ce, err := ParseCronExpression(expr)
	if err != nil {
		panic(fmt.Sprintf("invalid cron expression %q: %v", expr, err))
	}
	return ce
}

// parseCronField expands one field into the sorted set of matching values.
func parseCronField(field string, min, max int) ([]int, error) {
	seen := make(map[int]bool)

	for _, term := range strings.Split(field, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("empty term in %q", field)
		}

		values, err := parseCronTerm(term, min, max)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			seen[v] = true
		}
	}

	result := make([]int, 0, len(seen))
	for v := range seen {
		result = append(result, v)
	}
	sort.Ints(result)
	return result, nil
}

// parseCronTerm handles a single term: *, n, n-m, each optionally with /step.
func parseCronTerm(term string, min, max int) ([]int, error) {
	step := 1
	if base, stepStr, ok := strings.Cut(term, "/"); ok {
		s, err := strconv.Atoi(stepStr)
		if err != nil || s <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", stepStr)
		}
		term, step = base, s
	}

	start, end := min, max
	switch {
	case term == "*":
		// full range
	case strings.Contains(term, "-"):
		startStr, endStr, _ := strings.Cut(term, "-")
		var err error
		start, err = strconv.Atoi(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid range start: %s", startStr)
		}
		end, err = strconv.Atoi(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid range end: %s", endStr)
		}
	default:
		v, err := strconv.Atoi(term)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", term)
		}
		if v < min || v > max {
			return nil, fmt.Errorf("value out of range [%d-%d]: %d", min, max, v)
		}
		start = v
		if step == 1 {
			end = v
		}
	}

	var values []int
	for i := start; i <= end; i += step {
		if i >= min && i <= max {
			values = append(values, i)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("term matches nothing: %s", term)
	}
	return values, nil
}

// String returns the original cron expression.
func (ce *CronExpression) String() string {
	return ce.raw
}

// Next returns the next matching instant strictly after t.
// It satisfies the Schedule interface, so a parsed expression can be
// registered with the Scheduler directly.
func (ce *CronExpression) Next(t time.Time) time.Time {
	next := t.Add(time.Minute).Truncate(time.Minute)

	// A valid expression matches at least once a year.
	const maxIterations = 366 * 24 * 60

	for i := 0; i < maxIterations; i++ {
		if ce.matches(next) {
			return next
		}
		next = next.Add(time.Minute)
	}

	return time.Time{}
}

func (ce *CronExpression) matches(t time.Time) bool {
	return cronContains(ce.minutes, t.Minute()) &&
		cronContains(ce.hours, t.Hour()) &&
		cronContains(ce.days, t.Day()) &&
		cronContains(ce.months, int(t.Month())) &&
		cronContains(ce.weekdays, int(t.Weekday()))
}

func cronContains(values []int, v int) bool {
	for _, c := range values {
		if c == v {
			return true
		}
	}
	return false
}

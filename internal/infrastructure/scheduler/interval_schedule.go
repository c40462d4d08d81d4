package scheduler

import (
	"fmt"
	"time"
)

// minInterval floors how often a recurring job may fire. The sweeps all
// hit Postgres, so sub-second intervals are never sensible.
const minInterval = time.Second

// IntervalSchedule fires a job at a fixed interval, measured from the
// start of the previous run. Used for the window-close sweep.
type IntervalSchedule struct {
	interval time.Duration
}

// NewIntervalSchedule creates an IntervalSchedule. Intervals below one
// second are raised to one second.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < minInterval {
		interval = minInterval
	}
	return &IntervalSchedule{interval: interval}
}

// Next returns the next firing instant after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.interval)
}

// String describes the schedule for logs.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.interval.String())
}

// Package circuitbreaker keeps a failing outbound dependency — in this
// service, the notification webhook endpoint — from being hammered while
// it is down. Consecutive failures trip the breaker; after a cool-down a
// single probe decides whether traffic resumes.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker's position.
type State int

const (
	// StateClosed lets requests through.
	StateClosed State = iota
	// StateOpen blocks requests until the cool-down elapses.
	StateOpen
	// StateHalfOpen admits a limited number of probes.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned while the breaker blocks requests.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when the half-open probe quota is
	// already in flight.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Settings tunes a breaker. Zero fields take the documented defaults.
type Settings struct {
	// Name tags the breaker in logs and state-change callbacks.
	Name string

	// TripAfter is how many consecutive failures open the breaker
	// (default 5).
	TripAfter int

	// CloseAfter is how many consecutive half-open successes close it
	// (default 2).
	CloseAfter int

	// CoolDown is how long the breaker stays open before probing
	// (default 30s).
	CoolDown time.Duration

	// MaxProbes bounds concurrent half-open requests (default 1).
	MaxProbes int

	// OnStateChange observes transitions.
	OnStateChange func(name string, from, to State)

	// IsFailure classifies errors. When nil every non-nil error counts.
	IsFailure func(error) bool
}

func (s Settings) normalized() Settings {
	if s.TripAfter < 1 {
		s.TripAfter = 5
	}
	if s.CloseAfter < 1 {
		s.CloseAfter = 2
	}
	if s.CoolDown <= 0 {
		s.CoolDown = 30 * time.Second
	}
	if s.MaxProbes < 1 {
		s.MaxProbes = 1
	}
	return s
}

// Stats is a snapshot of the breaker's counters.
type Stats struct {
	Requests             int
	TotalSuccesses       int
	TotalFailures        int
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
}

// CircuitBreaker guards one outbound dependency.
type CircuitBreaker struct {
	settings Settings

	mu         sync.Mutex
	state      State
	stats      Stats
	openedAt   time.Time
	probeCount int
}

// New creates a closed breaker with the given settings.
func New(settings Settings) *CircuitBreaker {
	return &CircuitBreaker{
		settings: settings.normalized(),
		state:    StateClosed,
	}
}

// WebhookBreaker guards the notification webhook. Deliveries are
// best-effort, so it trips early and recovers slowly.
func WebhookBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(Settings{
		Name:          "notification-webhook",
		TripAfter:     3,
		CloseAfter:    2,
		CoolDown:      time.Minute,
		MaxProbes:     1,
		OnStateChange: onStateChange,
	})
}

// Execute runs fn if the breaker admits the request, recording the
// outcome for state transitions. The fn error is returned unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(cb.openedAt) >= cb.settings.CoolDown {
			cb.transition(StateHalfOpen)
			cb.probeCount = 1
			return nil
		}
		return ErrCircuitOpen

	case StateHalfOpen:
		if cb.probeCount < cb.settings.MaxProbes {
			cb.probeCount++
			return nil
		}
		return ErrTooManyRequests

	default:
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.stats.Requests++

	failed := err != nil
	if failed && cb.settings.IsFailure != nil {
		failed = cb.settings.IsFailure(err)
	}

	if failed {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.stats.TotalSuccesses++
	cb.stats.ConsecutiveSuccesses++
	cb.stats.ConsecutiveFailures = 0

	if cb.state == StateHalfOpen && cb.stats.ConsecutiveSuccesses >= cb.settings.CloseAfter {
		cb.transition(StateClosed)
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.stats.TotalFailures++
	cb.stats.ConsecutiveFailures++
	cb.stats.ConsecutiveSuccesses = 0
	cb.openedAt = time.Now()

	switch cb.state {
	case StateClosed:
		if cb.stats.ConsecutiveFailures >= cb.settings.TripAfter {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		// A failed probe reopens immediately.
		cb.transition(StateOpen)
	}
}

// transition must be called with the lock held.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}

	prev := cb.state
	cb.state = next
	cb.stats.ConsecutiveSuccesses = 0
	cb.stats.ConsecutiveFailures = 0
	cb.probeCount = 0

	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, prev, next)
	}
}

// State returns the current position.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a counter snapshot.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stats
}

// Reset closes the breaker and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.stats = Stats{}
	cb.probeCount = 0
}

// Name returns the breaker's tag.
func (cb *CircuitBreaker) Name() string {
	return cb.settings.Name
}

// IsOpen reports whether requests are currently blocked.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state == StateOpen
}

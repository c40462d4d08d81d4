// Package scheduler implements background job scheduling for Campus Placement Hub.
// It provides cron-like scheduling for periodic tasks such as closing expired
// application windows and completing openings whose deadline has passed.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB AND SCHEDULE CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrNilJob         = errors.New("scheduler: job is nil")
	ErrNilSchedule    = errors.New("scheduler: schedule is nil")
	ErrDuplicateJob   = errors.New("scheduler: job already registered")
	ErrAlreadyRunning = errors.New("scheduler: already running")
	ErrNotRunning     = errors.New("scheduler: not running")
)

// Job is a unit of recurring work.
type Job interface {
	// Name uniquely identifies the job within one scheduler.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// shuts down.
	Run(ctx context.Context) error

	// Description is a short human-readable summary for logs.
	Description() string
}

// Schedule decides when a job fires.
type Schedule interface {
	// Next returns the first activation time strictly after t.
	Next(t time.Time) time.Time

	// String renders the schedule for logs.
	String() string
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// SchedulerConfig controls scheduler behaviour.
type SchedulerConfig struct {
	// Logger receives job lifecycle events. Defaults to slog.Default.
	Logger *slog.Logger

	// Timezone is the location schedules are evaluated in.
	// Defaults to time.Local.
	Timezone *time.Location

	// MaxHistorySize bounds the retained run results.
	MaxHistorySize int
}

// DefaultSchedulerConfig returns the configuration the worker starts from.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Logger:         slog.Default(),
		Timezone:       time.Local,
		MaxHistorySize: 200,
	}
}

func (c SchedulerConfig) normalized() SchedulerConfig {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Timezone == nil {
		c.Timezone = time.Local
	}
	if c.MaxHistorySize <= 0 {
		c.MaxHistorySize = 200
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// entry is the bookkeeping for one registered job.
type entry struct {
	job      Job
	schedule Schedule

	mu       sync.Mutex
	nextRun  time.Time
	lastRun  time.Time
	runs     int64
	failures int64
	inFlight bool
}

// RunResult records one completed job execution.
type RunResult struct {
	Job        string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Scheduler fires registered jobs according to their schedules.
// Jobs are registered once at startup and driven from a single ticker
// goroutine; a job still running when its next slot arrives is skipped,
// never stacked.
type Scheduler struct {
	config SchedulerConfig
	log    *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	histMu  sync.Mutex
	history []RunResult
}

// NewScheduler builds a scheduler from the given configuration.
func NewScheduler(config SchedulerConfig) *Scheduler {
	config = config.normalized()
	return &Scheduler{
		config:  config,
		log:     config.Logger.With(slog.String("component", "scheduler")),
		entries: make(map[string]*entry),
	}
}

// Register adds a job with its schedule. Registration after Start is
// allowed; the job is picked up on the next tick.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	now := time.Now().In(s.config.Timezone)
	s.entries[name] = &entry{
		job:      job,
		schedule: schedule,
		nextRun:  schedule.Next(now),
	}

	s.log.Info("job registered",
		slog.String("job", name),
		slog.String("schedule", schedule.String()),
		slog.String("description", job.Description()),
	)
	return nil
}

// Start launches the tick loop. It returns immediately; jobs run on
// background goroutines until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	jobs := len(s.entries)
	s.mu.Unlock()

	s.log.Info("scheduler started", slog.Int("jobs", jobs))

	go s.loop(runCtx)
	return nil
}

// Stop halts the tick loop and waits for it to exit. In-flight job runs
// observe the cancelled context and wind down on their own.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, now.In(s.config.Timezone))
		}
	}
}

// tick fires every registered job whose activation time has passed.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	due := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		if !e.inFlight && !now.Before(e.nextRun) {
			e.inFlight = true
			e.lastRun = now
			e.nextRun = e.schedule.Next(now)
			due = append(due, e)
		}
		e.mu.Unlock()
	}
	s.mu.Unlock()

	for _, e := range due {
		go s.execute(ctx, e, now)
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry, startedAt time.Time) {
	name := e.job.Name()
	log := s.log.With(slog.String("job", name))
	log.Info("job starting")

	err := s.runGuarded(ctx, e.job)
	finishedAt := time.Now().In(s.config.Timezone)

	e.mu.Lock()
	e.inFlight = false
	e.runs++
	if err != nil {
		e.failures++
	}
	next := e.nextRun
	e.mu.Unlock()

	s.record(RunResult{
		Job:        name,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Err:        err,
	})

	elapsed := finishedAt.Sub(startedAt)
	if err != nil {
		log.Error("job failed",
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
			slog.Time("next_run", next),
		)
		return
	}
	log.Info("job completed",
		slog.Duration("elapsed", elapsed),
		slog.Time("next_run", next),
	)
}

// runGuarded converts a job panic into an error so one misbehaving job
// cannot take down the worker.
func (s *Scheduler) runGuarded(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}

func (s *Scheduler) record(r RunResult) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	s.history = append(s.history, r)
	if overflow := len(s.history) - s.config.MaxHistorySize; overflow > 0 {
		s.history = s.history[overflow:]
	}
}

// History returns recent run results, oldest first.
func (s *Scheduler) History() []RunResult {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	out := make([]RunResult, len(s.history))
	copy(out, s.history)
	return out
}

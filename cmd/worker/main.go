// Package main is the entry point for the Campus Placement Hub worker.
//
// The worker owns the clock-driven side of the system:
// - Closing application windows whose end instant has passed
// - Completing openings whose deadline has passed
//
// Both sweeps publish domain events; with Redis enabled those events reach
// the API process over the shared event bus, where the notification
// handlers pick them up.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-hub/campus-placement-hub/config"

	// Domain layer
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/messaging"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/scheduler"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/scheduler/jobs"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Campus Placement Hub Worker",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler is disabled, worker has nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS (worker needs the current schema too)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var windowCache opening.WindowCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			windowCache = redis.NewWindowCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	openingRepo := postgres.NewOpeningRepository(dbConn)
	windowRepo := postgres.NewWindowRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log
	localBusConfig.AsyncMode = true

	var eventBus shared.EventBus
	var closeBus func() error

	if redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewCacheRedisClient(redisCache),
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		eventBus = redisBus
		closeBus = redisBus.Close
	} else {
		localBus := messaging.NewInMemoryEventBus(localBusConfig)
		eventBus = localBus
		closeBus = localBus.Close
	}
	defer func() {
		log.Info("closing event bus...")
		_ = closeBus()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER & JOBS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing scheduler...")

	schedConfig := scheduler.DefaultSchedulerConfig()
	schedConfig.Logger = log
	schedConfig.Timezone = cfg.App.Location

	sched := scheduler.NewScheduler(schedConfig)

	closeWindowsJob := jobs.NewCloseExpiredWindowsJob(windowRepo, windowCache, eventBus, log)
	if err := sched.Register(closeWindowsJob, scheduler.NewIntervalSchedule(cfg.Scheduler.CloseWindowsInterval)); err != nil {
		return fmt.Errorf("failed to register %s: %w", closeWindowsJob.Name(), err)
	}

	completeOpeningsJob := jobs.NewCompleteExpiredOpeningsJob(openingRepo, eventBus, log)
	completeCron := fmt.Sprintf("%d %d * * *", cfg.Scheduler.CompleteOpeningsMinute, cfg.Scheduler.CompleteOpeningsHour)
	completeSchedule, err := scheduler.ParseCronExpression(completeCron)
	if err != nil {
		return fmt.Errorf("invalid completion schedule %q: %w", completeCron, err)
	}
	if err := sched.Register(completeOpeningsJob, completeSchedule); err != nil {
		return fmt.Errorf("failed to register %s: %w", completeOpeningsJob.Name(), err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Campus Placement Hub Worker is running",
		"close_windows_every", cfg.Scheduler.CloseWindowsInterval.String(),
		"complete_openings_at", fmt.Sprintf("%02d:%02d", cfg.Scheduler.CompleteOpeningsHour, cfg.Scheduler.CompleteOpeningsMinute),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
	}

	// Event bus and database close via defer.

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging per the observability config.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Observability.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

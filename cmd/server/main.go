// Package main is the entry point for the Campus Placement Hub API server.
//
// The server exposes the REST API for students and the placement cell:
// registration, opening and window management, the application pipeline,
// reviews, rounds, and read-side queries. Background sweeps live in
// cmd/worker.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: repositories, caches, messaging, external delivery
// - Interface: HTTP handlers
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-hub/campus-placement-hub/config"

	// Application layer
	"github.com/campus-hub/campus-placement-hub/internal/application/command"
	"github.com/campus-hub/campus-placement-hub/internal/application/eventhandler"
	"github.com/campus-hub/campus-placement-hub/internal/application/query"

	// Domain layer
	"github.com/campus-hub/campus-placement-hub/internal/domain/notification"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"

	// Infrastructure layer
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/messaging"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/service"

	// Interface layer
	httpserver "github.com/campus-hub/campus-placement-hub/internal/interface/http"
	"github.com/campus-hub/campus-placement-hub/internal/interface/http/handlers"

	// Packages
	"github.com/campus-hub/campus-placement-hub/pkg/logger"
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
	log.Info("starting Campus Placement Hub API",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

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
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var studentCache student.Cache
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
			studentCache = redis.NewStudentCache(redisCache)
			windowCache = redis.NewWindowCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	openingRepo := postgres.NewOpeningRepository(dbConn)
	windowRepo := postgres.NewWindowRepository(dbConn)
	applicationRepo := postgres.NewApplicationRepository(dbConn)
	historyRepo := postgres.NewHistoryRepository(dbConn)
	roundRepo := postgres.NewRoundRepository(dbConn)

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
		// Redis bus shares events with the worker process.
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
	// 8. NOTIFICATION DELIVERY
	// ─────────────────────────────────────────────────────────────────────────
	var sender notification.Sender
	var webhookNotifier *service.WebhookNotifier

	if cfg.Webhook.Enabled {
		log.Info("initializing webhook notifier", "url", cfg.Webhook.URL)
		webhookCfg := service.DefaultWebhookConfig(cfg.Webhook.URL, cfg.Webhook.Secret)
		webhookCfg.Timeout = cfg.Webhook.RequestTimeout
		webhookCfg.Logger = log
		webhookNotifier, err = service.NewWebhookNotifier(webhookCfg)
		if err != nil {
			return fmt.Errorf("failed to create webhook notifier: %w", err)
		}
		sender = webhookNotifier
	} else {
		log.Info("webhook delivery disabled, notifications will be logged")
		sender = service.NewLogNotifier(log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	finalizer := command.NewFinalizePlacementHandler(applicationRepo, studentRepo, studentCache, eventBus)

	registerStudentCmd := command.NewRegisterStudentHandler(studentRepo, eventBus)
	publishOpeningCmd := command.NewPublishOpeningHandler(openingRepo, eventBus)
	openWindowCmd := command.NewOpenWindowHandler(openingRepo, windowRepo, windowCache, eventBus)
	applyCmd := command.NewApplyHandler(studentRepo, openingRepo, windowRepo, applicationRepo, eventBus)
	reviewCmd := command.NewReviewApplicationHandler(applicationRepo, historyRepo, roundRepo, finalizer, eventBus)
	bulkReviewCmd := command.NewBulkReviewHandler(reviewCmd)
	scheduleRoundCmd := command.NewScheduleRoundHandler(openingRepo, roundRepo, eventBus)
	addCandidateCmd := command.NewAddCandidateHandler(roundRepo, applicationRepo, historyRepo, eventBus)
	removeCandidateCmd := command.NewRemoveCandidateHandler(roundRepo, applicationRepo, historyRepo, eventBus)
	completeRoundCmd := command.NewCompleteRoundHandler(roundRepo, applicationRepo, historyRepo, finalizer, eventBus)

	openWindowsQuery := query.NewOpenWindowsHandler(windowRepo, openingRepo, windowCache, time.Minute)
	eligibleCountQuery := query.NewEligibleCountHandler(windowRepo, studentRepo, windowCache, 5*time.Minute)
	reviewHistoryQuery := query.NewReviewHistoryHandler(historyRepo)
	applicationStatusQuery := query.NewApplicationStatusHandler(applicationRepo)
	openingApplicationsQuery := query.NewOpeningApplicationsHandler(applicationRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS (notifications)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	statusCfg := eventhandler.DefaultStatusChangedConfig()
	statusCfg.NotifyShortlisted = cfg.Features.IsEnabled(config.FeatureNotifyShortlisted, nil)
	statusCfg.NotifyRejected = cfg.Features.IsEnabled(config.FeatureNotifyRejected, nil)
	statusCfg.NotifySelected = cfg.Features.IsEnabled(config.FeatureNotifySelected, nil)

	statusHandler := eventhandler.NewOnStatusChangedHandler(openingRepo, sender, log, statusCfg)
	openingHandler := eventhandler.NewOnOpeningPublishedHandler(sender, log)
	if err := eventhandler.RegisterHandlers(eventBus, statusHandler, openingHandler); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if webhookNotifier != nil {
		healthChecker.AddCheck("notifier", handlers.NewNotifierCheck(webhookNotifier))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.Server.Host
	httpConfig.Port = cfg.Server.Port
	httpConfig.ReadTimeout = cfg.Server.ReadTimeout
	httpConfig.WriteTimeout = cfg.Server.WriteTimeout
	httpConfig.IdleTimeout = cfg.Server.IdleTimeout
	httpConfig.EnableCORS = cfg.Server.EnableCORS
	httpConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.Server.RateLimitPerMinute
	httpConfig.APIKeyHeader = cfg.Server.APIKeyHeader
	httpConfig.APIKeys = cfg.Server.APIKeys
	httpConfig.EnableMetrics = cfg.Server.EnableMetrics

	httpDeps := httpserver.Dependencies{
		RegisterStudentHandler: registerStudentCmd,
		PublishOpeningHandler:  publishOpeningCmd,
		OpenWindowHandler:      openWindowCmd,
		ApplyHandler:           applyCmd,
		ReviewHandler:          reviewCmd,
		BulkReviewHandler:      bulkReviewCmd,
		ScheduleRoundHandler:   scheduleRoundCmd,
		AddCandidateHandler:    addCandidateCmd,
		RemoveCandidateHandler: removeCandidateCmd,
		CompleteRoundHandler:   completeRoundCmd,

		OpenWindowsHandler:         openWindowsQuery,
		EligibleCountHandler:       eligibleCountQuery,
		ReviewHistoryHandler:       reviewHistoryQuery,
		ApplicationStatusHandler:   applicationStatusQuery,
		OpeningApplicationsHandler: openingApplicationsQuery,

		Logger:        logger.Default(),
		HealthChecker: healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. START
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Campus Placement Hub API is running",
		"http_address", httpServer.Address(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
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

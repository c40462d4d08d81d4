// Package handlers contains HTTP handler interfaces, implementations, and middleware.
//
// This package provides:
//   - Health check interfaces and implementations
//   - API key authentication for placement-cell endpoints
//   - Security header and request size middleware
//
// # Health Checks
//
// CompositeHealthChecker runs multiple named health checks in parallel and
// serves the aggregate through the HealthChecker interface:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewDatabaseCheck(db))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//	checker.AddCheck("notifier", handlers.NewNotifierCheck(webhookNotifier))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// # Middleware
//
//	// API key authentication for the placement cell
//	auth := handlers.NewAPIKeyAuth("X-API-Key", []string{"secret-key"})
//	protected := auth.Middleware(reviewHandler)
//
//	// Security headers
//	secure := handlers.SecurityHeadersMiddleware(mux)
//
//	// Body size cap
//	limited := handlers.RequestSizeLimitMiddleware(1 << 20)(mux)
//
// Health checks should use timeouts, cover the database and cache, and
// stay fast; slow checks block readiness probes.
package handlers

package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
// Supports percentage rollout, batch targeting, and per-student overrides.
//
// Notifications are the sensitive surface here: a mistimed rejection notice
// reaches a real student, so each notification kind has its own switch.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // studentID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Students are assigned based on hash of their ID
	RolloutPercent int

	// Batch targeting (e.g., "2026", "2027")
	// Empty means all batches
	TargetBatches []string

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time

	// A/B test variant (for experiments)
	Variants []string
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID string // Student ID

	Batch   string // Graduating batch (e.g., "2026")
	IsAdmin bool   // Placement cell staff
}

// Predefined feature flag names.
const (
	// === Notification Features ===
	FeatureNotifyShortlisted      = "notify.shortlisted"       // "You were shortlisted"
	FeatureNotifyRejected         = "notify.rejected"          // "Your application was not selected"
	FeatureNotifySelected         = "notify.selected"          // "Congratulations, you are placed"
	FeatureNotifyOpeningPublished = "notify.opening_published" // New opening broadcast
	FeatureNotifyRoundScheduled   = "notify.round_scheduled"   // Round date announcements

	// === Window Features ===
	FeatureWindowsOpenCache     = "windows.open_cache"     // Cache the open-windows listing
	FeatureWindowsEligibleCount = "windows.eligible_count" // Eligible-count endpoint

	// === Review Features ===
	FeatureReviewBulk = "review.bulk" // Bulk status/score changes

	// === Experimental Features ===
	FeatureExperimentalAnalytics     = "experimental.analytics"      // Placement analytics dashboard
	FeatureExperimentalAutoShortlist = "experimental.auto_shortlist" // Score-threshold shortlisting
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Notification features - each status transition has its own switch
	ff.features[FeatureNotifyShortlisted] = &Feature{
		Name:           FeatureNotifyShortlisted,
		Description:    "Notify students when shortlisted",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyRejected] = &Feature{
		Name:           FeatureNotifyRejected,
		Description:    "Notify students when rejected",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifySelected] = &Feature{
		Name:           FeatureNotifySelected,
		Description:    "Notify students when selected",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyOpeningPublished] = &Feature{
		Name:           FeatureNotifyOpeningPublished,
		Description:    "Broadcast new openings to students",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyRoundScheduled] = &Feature{
		Name:           FeatureNotifyRoundScheduled,
		Description:    "Announce round schedules",
		Enabled:        false, // Rounds are announced by the cell manually for now
		RolloutPercent: 0,
	}

	// Window features
	ff.features[FeatureWindowsOpenCache] = &Feature{
		Name:           FeatureWindowsOpenCache,
		Description:    "Serve open windows from cache",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureWindowsEligibleCount] = &Feature{
		Name:           FeatureWindowsEligibleCount,
		Description:    "Expose eligible-count per window",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Review features
	ff.features[FeatureReviewBulk] = &Feature{
		Name:           FeatureReviewBulk,
		Description:    "Bulk review over many applications",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalAnalytics] = &Feature{
		Name:           FeatureExperimentalAnalytics,
		Description:    "Placement analytics dashboard",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureExperimentalAutoShortlist] = &Feature{
		Name:           FeatureExperimentalAutoShortlist,
		Description:    "Shortlist automatically above a score threshold",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_NOTIFY_SHORTLISTED=true
// Example: FEATURE_EXPERIMENTAL_ANALYTICS=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "notify.shortlisted" -> "FEATURE_NOTIFY_SHORTLISTED"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != "" {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Placement cell staff get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check batch targeting
	if len(feature.TargetBatches) > 0 && ctx != nil && ctx.Batch != "" {
		batchMatch := false
		for _, b := range feature.TargetBatches {
			if b == ctx.Batch {
				batchMatch = true
				break
			}
		}
		if !batchMatch {
			return false
		}
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != "" {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a student is in the rollout percentage.
// Uses consistent hashing so students stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID string, featureName string, percent int) bool {
	// Create a consistent hash for this student+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(userID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// GetVariant returns the A/B test variant for a student.
// Returns empty string if no variants defined or feature disabled.
func (ff *FeatureFlags) GetVariant(featureName string, ctx *FeatureContext) string {
	// Evaluate enablement before taking the read lock; IsEnabled locks too.
	if ctx == nil || !ff.IsEnabled(featureName, ctx) {
		return ""
	}

	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || len(feature.Variants) == 0 {
		return ""
	}

	// Consistent hashing keeps a student on the same variant.
	h := fnv.New32a()
	h.Write([]byte(featureName + "_variant"))
	h.Write([]byte(ctx.UserID))

	return feature.Variants[int(h.Sum32()%uint32(len(feature.Variants)))]
}

// SetUserOverride sets a feature override for a specific student.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID string, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a student.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// StatusNotificationsEnabled checks if any per-status notification is on.
func (ff *FeatureFlags) StatusNotificationsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureNotifyShortlisted, ctx) ||
		ff.IsEnabled(FeatureNotifyRejected, ctx) ||
		ff.IsEnabled(FeatureNotifySelected, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}

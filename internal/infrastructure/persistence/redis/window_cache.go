package redis

import (
	"context"
	"errors"
	"time"
)

// WindowCache implements opening.WindowCache interface using generic Redis Cache.
// It holds two kinds of derived state: the set of currently open window IDs and
// per-window eligible-student counts. Both are recomputed on miss, so every
// method degrades to (zero, false, nil) rather than failing the caller on a
// cold cache.
type WindowCache struct {
	cache *Cache
}

// NewWindowCache creates a new WindowCache.
func NewWindowCache(cache *Cache) *WindowCache {
	return &WindowCache{
		cache: cache,
	}
}

// GetOpenWindows returns the cached list of currently open window IDs.
// The second return value reports whether the set was present.
func (w *WindowCache) GetOpenWindows(ctx context.Context) ([]string, bool, error) {
	var ids []string
	err := w.cache.Get(ctx, OpenWindowsKey(), &ids)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return ids, true, nil
}

// SetOpenWindows caches the list of currently open window IDs.
// An empty list is cached too: "no windows open" is a valid answer.
func (w *WindowCache) SetOpenWindows(ctx context.Context, ids []string, ttl time.Duration) error {
	if ids == nil {
		ids = []string{}
	}
	return w.cache.Set(ctx, OpenWindowsKey(), ids, ttl)
}

// GetEligibleCount returns the cached eligible-student count for a window.
func (w *WindowCache) GetEligibleCount(ctx context.Context, windowID string) (int64, bool, error) {
	var count int64
	err := w.cache.Get(ctx, EligibleCountKey(windowID), &count)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

// SetEligibleCount caches the eligible-student count for a window.
func (w *WindowCache) SetEligibleCount(ctx context.Context, windowID string, count int64, ttl time.Duration) error {
	return w.cache.Set(ctx, EligibleCountKey(windowID), count, ttl)
}

// Invalidate drops all cached state for a window. The open-window set is
// dropped as well since the window's criteria or schedule may have changed.
func (w *WindowCache) Invalidate(ctx context.Context, windowID string) error {
	return w.cache.Delete(ctx, OpenWindowsKey(), EligibleCountKey(windowID))
}

// InvalidateAll clears all window cache.
func (w *WindowCache) InvalidateAll(ctx context.Context) error {
	return w.cache.DeleteByPattern(ctx, "window:*")
}

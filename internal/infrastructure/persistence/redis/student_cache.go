package redis

import (
	"context"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
)

// StudentCache keeps hot student profiles in Redis so eligibility checks
// do not hit PostgreSQL on every application attempt. It satisfies the
// student.Cache interface.
type StudentCache struct {
	cache *Cache
}

func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{cache: cache}
}

// Get returns the cached profile, or ErrCacheMiss when absent.
func (s *StudentCache) Get(ctx context.Context, studentID string) (*student.Student, error) {
	var st student.Student
	if err := s.cache.Get(ctx, StudentKey(studentID), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Set caches a profile for ttl. A nil student is ignored.
func (s *StudentCache) Set(ctx context.Context, st *student.Student, ttl time.Duration) error {
	if st == nil {
		return nil
	}
	return s.cache.Set(ctx, StudentKey(st.ID), st, ttl)
}

// Invalidate drops one student's cached profile.
func (s *StudentCache) Invalidate(ctx context.Context, studentID string) error {
	return s.cache.Delete(ctx, StudentKey(studentID))
}

// InvalidateAll drops every cached profile.
func (s *StudentCache) InvalidateAll(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, "student:*")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps resolved schedules for a short TTL when enabled. Cache
// failures are logged and otherwise ignored.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// ScheduleKey is the cache key for a viewer's resolved schedule.
func ScheduleKey(rc models.RoleContext) string {
	return fmt.Sprintf("schedule:%s:%s", rc.Role, rc.UserID)
}

// GetSchedule returns the cached schedule for rc, if any.
func (s *CacheService) GetSchedule(ctx context.Context, rc models.RoleContext) (*models.GroupedSchedule, bool) {
	if !s.Enabled() {
		return nil, false
	}
	var cached models.GroupedSchedule
	err := s.repo.Get(ctx, ScheduleKey(rc), &cached)
	if err != nil {
		s.metrics.RecordCacheLookup(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache get failed", zap.String("user_id", rc.UserID), zap.Error(err))
		}
		return nil, false
	}
	s.metrics.RecordCacheLookup(true)
	return &cached, true
}

// PutSchedule stores a resolved schedule. Failed resolutions are never cached.
func (s *CacheService) PutSchedule(ctx context.Context, rc models.RoleContext, schedule models.GroupedSchedule) {
	if !s.Enabled() || schedule.InfoCode == models.InfoLoadFailed {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, ScheduleKey(rc), schedule, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("schedule cache set failed", zap.String("user_id", rc.UserID), zap.Error(err))
	}
}

// InvalidateUser drops every cached schedule for a user, whatever the role.
func (s *CacheService) InvalidateUser(ctx context.Context, userID string) {
	if !s.Enabled() {
		return
	}
	pattern := fmt.Sprintf("schedule:*:%s", userID)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("schedule cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

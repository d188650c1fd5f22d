package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
)

type scheduleProfileReader interface {
	Student(ctx context.Context, uid string) (*models.StudentProfile, error)
	FetchRole(ctx context.Context, uid string) (models.UserRole, error)
}

type scheduleResolver interface {
	Resolve(ctx context.Context, rc models.RoleContext, student *models.StudentProfile) models.GroupedSchedule
}

// ScheduleService resolves schedules for authenticated viewers, detecting the
// role from profile documents when the token does not carry one.
type ScheduleService struct {
	resolver scheduleResolver
	profiles scheduleProfileReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewScheduleService constructs a ScheduleService. cache may be nil.
func NewScheduleService(resolver scheduleResolver, profiles scheduleProfileReader, cache *CacheService, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{resolver: resolver, profiles: profiles, cache: cache, logger: logger}
}

// RoleFor returns the schedule role of userID. Token roles STUDENT/ACADEMIC are
// trusted; anything else is looked up in the profile collections.
func (s *ScheduleService) RoleFor(ctx context.Context, userID string, tokenRole models.UserRole) (models.UserRole, error) {
	switch tokenRole {
	case models.RoleStudent, models.RoleAcademic:
		return tokenRole, nil
	}
	return s.profiles.FetchRole(ctx, userID)
}

// ForUser resolves the schedule of the authenticated caller.
func (s *ScheduleService) ForUser(ctx context.Context, userID string, tokenRole models.UserRole) (*models.GroupedSchedule, bool, error) {
	role, err := s.RoleFor(ctx, userID, tokenRole)
	if err != nil {
		return nil, false, err
	}
	return s.Resolve(ctx, models.RoleContext{UserID: userID, Role: role})
}

// Resolve returns the schedule for rc and whether it came from the cache.
// Only role problems are returned as errors; store failures surface in the
// schedule's Info.
func (s *ScheduleService) Resolve(ctx context.Context, rc models.RoleContext) (*models.GroupedSchedule, bool, error) {
	if rc.Role != models.RoleStudent && rc.Role != models.RoleAcademic {
		return nil, false, appErrors.Clone(appErrors.ErrUnknownRole, "schedules exist only for students and academics")
	}
	if cached, ok := s.cache.GetSchedule(ctx, rc); ok {
		return cached, true, nil
	}

	var student *models.StudentProfile
	if rc.Role == models.RoleStudent {
		profile, err := s.profiles.Student(ctx, rc.UserID)
		switch {
		case err == nil:
			student = profile
		case errors.Is(err, appErrors.ErrNotFound):
			s.logger.Info("student profile missing", zap.String("user_id", rc.UserID))
		default:
			s.logger.Warn("student profile load failed", zap.String("user_id", rc.UserID), zap.Error(err))
			failed := emptySchedule(rc.Role, "", models.InfoLoadFailed, infoLoadFailed)
			return &failed, false, nil
		}
	}

	schedule := s.resolver.Resolve(ctx, rc, student)
	s.cache.PutSchedule(ctx, rc, schedule)
	return &schedule, false, nil
}

// Invalidate drops cached schedules for userID after a profile change.
func (s *ScheduleService) Invalidate(ctx context.Context, userID string) {
	s.cache.InvalidateUser(ctx, userID)
}

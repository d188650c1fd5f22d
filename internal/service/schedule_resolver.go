package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

const defaultParentFanOut = 8

// Info messages shown when a schedule is empty or degraded.
const (
	infoMissingAttributes  = "Your student record is missing a department or class."
	infoDepartmentNotFound = "Department %q was not found."
	infoTermNotConfigured  = "The current term is not configured."
	infoTermGroupNotFound  = "No schedule group exists for your department, class and the current term."
	infoNoStudentLessons   = "No lessons were found for this term."
	infoNoAcademicLessons  = "No lessons are assigned to you."
	infoNoAcademicForTerm  = "No lessons are assigned to you for the current term."
	infoLoadFailed         = "The schedule could not be loaded. Please try again."
	infoMissingInstructor  = "Instructor identity is missing."
)

type termSelectorSource interface {
	Current(ctx context.Context) (models.TermSelector, error)
}

// ScheduleResolverConfig tunes the resolver.
type ScheduleResolverConfig struct {
	// ParentFanOut caps concurrent term-group lookups in the academic path.
	ParentFanOut int
}

// ScheduleResolver builds day-grouped schedules for students and academics.
// It never returns an error: failures are reported through Info/InfoCode on
// an otherwise empty schedule.
type ScheduleResolver struct {
	store   DocumentReader
	terms   termSelectorSource
	metrics *MetricsService
	logger  *zap.Logger
	fanOut  int
	cascade []termGroupStrategy
}

// NewScheduleResolver constructs a ScheduleResolver.
func NewScheduleResolver(store DocumentReader, terms termSelectorSource, metrics *MetricsService, logger *zap.Logger, cfg ScheduleResolverConfig) *ScheduleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ParentFanOut <= 0 {
		cfg.ParentFanOut = defaultParentFanOut
	}
	return &ScheduleResolver{
		store:   store,
		terms:   terms,
		metrics: metrics,
		logger:  logger,
		fanOut:  cfg.ParentFanOut,
		cascade: studentTermGroupCascade,
	}
}

// Resolve dispatches on the viewer's role. Student profiles are loaded by the
// caller; here a missing profile resolves like an empty one.
func (r *ScheduleResolver) Resolve(ctx context.Context, rc models.RoleContext, student *models.StudentProfile) models.GroupedSchedule {
	switch rc.Role {
	case models.RoleAcademic:
		return r.ResolveForAcademic(ctx, rc.UserID)
	default:
		profile := models.StudentProfile{UID: rc.UserID}
		if student != nil {
			profile = *student
		}
		return r.ResolveForStudent(ctx, profile)
	}
}

// ResolveForAcademic collects every lesson taught by instructorID whose term
// group matches the current term and year.
func (r *ScheduleResolver) ResolveForAcademic(ctx context.Context, instructorID string) models.GroupedSchedule {
	start := time.Now()
	result := r.resolveAcademic(ctx, strings.TrimSpace(instructorID))
	r.observe(result, time.Since(start))
	return result
}

// ResolveForStudent selects the student's term group through the cascade and
// merges its lessons.
func (r *ScheduleResolver) ResolveForStudent(ctx context.Context, profile models.StudentProfile) models.GroupedSchedule {
	start := time.Now()
	result := r.resolveStudent(ctx, profile)
	r.observe(result, time.Since(start))
	return result
}

func (r *ScheduleResolver) resolveAcademic(ctx context.Context, instructorID string) models.GroupedSchedule {
	role := models.RoleAcademic
	if instructorID == "" {
		return emptySchedule(role, "", models.InfoMissingAttributes, infoMissingInstructor)
	}
	log := r.logger.With(zap.String("role", string(role)), zap.String("user_id", instructorID))

	displayName := "Academic"
	profile, err := r.store.Get(ctx, models.JoinPath(models.CollectionAcademics, instructorID))
	switch {
	case err == nil:
		if name := profile.String("name", "fullName"); name != "" {
			displayName = name
		}
	case !errors.Is(err, models.ErrDocumentNotFound):
		return r.failed(log, role, displayName, "load_profile", err)
	}

	term, err := r.terms.Current(ctx)
	if err != nil {
		return r.failed(log, role, displayName, "load_term", err)
	}

	docs, err := r.store.QueryGroup(ctx, models.CollectionLessons, models.Eq("instructorId", instructorID))
	if err != nil {
		return r.failed(log, role, displayName, "query_lessons", err)
	}

	matching, err := r.matchingParents(ctx, docs, term)
	if err != nil {
		return r.failed(log, role, displayName, "load_term_group", err)
	}
	set := newLessonSet()
	for _, doc := range docs {
		parent := models.ParentDocumentPath(doc.Path)
		if matching[parent] {
			set.add(parent, doc)
		}
	}

	result := models.GroupedSchedule{
		Role:        role,
		DisplayName: displayName,
		Grouped:     groupLessons(set.lessons),
		Total:       set.len(),
		Banner: &models.ScheduleBanner{
			InstructorName: displayName,
			Term:           termLabel(term.RawTerm, term.Term),
			Year:           term.Year,
		},
	}
	result.Banner.Summary = bannerSummary(result.Total, result.Banner)
	if result.Total == 0 {
		result.InfoCode = models.InfoNoLessons
		result.Info = infoNoAcademicLessons
		if term.Configured() && len(docs) > 0 {
			result.Info = infoNoAcademicForTerm
		}
	}
	return result
}

// matchingParents loads each distinct term group owning a lesson and reports
// which ones belong to the current term. Missing parents do not match; any
// other lookup failure is returned.
func (r *ScheduleResolver) matchingParents(ctx context.Context, docs []models.Document, term models.TermSelector) (map[string]bool, error) {
	type parentCheck struct {
		path    string
		matches bool
	}

	seen := make(map[string]struct{})
	p := pool.NewWithResults[parentCheck]().WithContext(ctx).WithMaxGoroutines(r.fanOut)
	for _, doc := range docs {
		parent := models.ParentDocumentPath(doc.Path)
		if parent == "" {
			continue
		}
		if _, ok := seen[parent]; ok {
			continue
		}
		seen[parent] = struct{}{}
		p.Go(func(ctx context.Context) (parentCheck, error) {
			group, err := r.store.Get(ctx, parent)
			if errors.Is(err, models.ErrDocumentNotFound) {
				return parentCheck{path: parent}, nil
			}
			if err != nil {
				return parentCheck{}, fmt.Errorf("load term group %s: %w", parent, err)
			}
			return parentCheck{path: parent, matches: termMatches(*group, term)}, nil
		})
	}
	checks, err := p.Wait()
	if err != nil {
		return nil, err
	}

	matching := make(map[string]bool, len(checks))
	for _, check := range checks {
		matching[check.path] = check.matches
	}
	return matching, nil
}

func termMatches(group models.Document, term models.TermSelector) bool {
	if term.Term != "" && normalize.TermSlug(group.String("term")) != term.Term {
		return false
	}
	if term.Year != 0 && group.Int("year") != term.Year {
		return false
	}
	return true
}

func (r *ScheduleResolver) resolveStudent(ctx context.Context, profile models.StudentProfile) models.GroupedSchedule {
	role := models.RoleStudent
	displayName := profile.Name
	if displayName == "" {
		displayName = "Student"
	}
	departmentID := strings.TrimSpace(profile.DepartmentID)
	classNo := models.Stringify(profile.ClassNo)
	if departmentID == "" || classNo == "" {
		return emptySchedule(role, displayName, models.InfoMissingAttributes, infoMissingAttributes)
	}
	log := r.logger.With(zap.String("role", string(role)), zap.String("user_id", profile.UID))

	deptDoc, err := r.store.Get(ctx, models.JoinPath(models.CollectionDepartments, departmentID))
	if errors.Is(err, models.ErrDocumentNotFound) {
		return emptySchedule(role, displayName, models.InfoDepartmentNotFound, fmt.Sprintf(infoDepartmentNotFound, departmentID))
	}
	if err != nil {
		return r.failed(log, role, displayName, "load_department", err)
	}
	department := departmentFromDocument(deptDoc)

	term, err := r.terms.Current(ctx)
	if err != nil {
		return r.failed(log, role, displayName, "load_term", err)
	}
	if term.Term == "" {
		return emptySchedule(role, displayName, models.InfoTermNotConfigured, infoTermNotConfigured)
	}

	query := termGroupQuery{DepartmentID: departmentID, ClassNo: profile.ClassNo, Term: term}
	groups, err := r.selectTermGroups(ctx, log, query)
	if err != nil {
		return r.failed(log, role, displayName, "select_term_group", err)
	}
	if len(groups) == 0 {
		return emptySchedule(role, displayName, models.InfoTermGroupNotFound, infoTermGroupNotFound)
	}

	set := newLessonSet()
	for _, group := range groups {
		docs, err := r.store.Query(ctx, models.JoinPath(group.Path, models.CollectionLessons))
		if err != nil {
			return r.failed(log, role, displayName, "query_lessons", err)
		}
		set.add(group.Path, docs...)
	}

	chosen := groups[0]
	banner := &models.ScheduleBanner{
		DepartmentName: department.Name,
		DepartmentCode: department.Code,
		ClassNo:        classNo,
		Term:           termLabel(chosen.Term, term.Term),
		Year:           chosen.Year,
	}
	if banner.Year == 0 {
		banner.Year = term.Year
	}
	result := models.GroupedSchedule{
		Role:        role,
		DisplayName: displayName,
		Grouped:     groupLessons(set.lessons),
		Total:       set.len(),
		Banner:      banner,
	}
	banner.Summary = bannerSummary(result.Total, banner)
	if result.Total == 0 {
		result.InfoCode = models.InfoNoLessons
		result.Info = infoNoStudentLessons
	}
	return result
}

// selectTermGroups runs the cascade. A failing strategy counts as "found
// nothing"; only when every strategy that ran failed is the error returned.
func (r *ScheduleResolver) selectTermGroups(ctx context.Context, log *zap.Logger, q termGroupQuery) ([]models.TermGroup, error) {
	var lastErr error
	attempted, failures := 0, 0
	for _, strategy := range r.cascade {
		groups, err := strategy.Find(ctx, r.store, q)
		if errors.Is(err, errStrategySkipped) {
			continue
		}
		attempted++
		if err != nil {
			failures++
			lastErr = err
			log.Warn("term group strategy failed", zap.String("strategy", strategy.Name), zap.Error(err))
			continue
		}
		if len(groups) > 0 {
			log.Debug("term group selected", zap.String("strategy", strategy.Name), zap.String("path", groups[0].Path), zap.Int("groups", len(groups)))
			return groups, nil
		}
	}
	if attempted > 0 && failures == attempted {
		return nil, lastErr
	}
	return nil, nil
}

func (r *ScheduleResolver) failed(log *zap.Logger, role models.UserRole, displayName, step string, err error) models.GroupedSchedule {
	log.Warn("schedule resolution failed", zap.String("step", step), zap.Error(err))
	return emptySchedule(role, displayName, models.InfoLoadFailed, infoLoadFailed)
}

func (r *ScheduleResolver) observe(result models.GroupedSchedule, elapsed time.Duration) {
	outcome := "ok"
	if result.InfoCode != "" {
		outcome = strings.ToLower(string(result.InfoCode))
	}
	r.metrics.ObserveResolution(strings.ToLower(string(result.Role)), outcome, elapsed)
}

func emptySchedule(role models.UserRole, displayName string, code models.ScheduleInfoCode, info string) models.GroupedSchedule {
	return models.GroupedSchedule{
		Role:        role,
		DisplayName: displayName,
		Grouped:     map[int][]models.Lesson{},
		InfoCode:    code,
		Info:        info,
	}
}

func termLabel(raw, slug string) string {
	if strings.TrimSpace(raw) != "" {
		return strings.TrimSpace(raw)
	}
	return slug
}

func bannerSummary(total int, banner *models.ScheduleBanner) string {
	parts := make([]string, 0, 4)
	switch {
	case banner.DepartmentName != "":
		label := banner.DepartmentName
		if banner.DepartmentCode != "" && banner.DepartmentCode != banner.DepartmentName {
			label = fmt.Sprintf("%s (%s)", banner.DepartmentName, banner.DepartmentCode)
		}
		parts = append(parts, label)
	case banner.InstructorName != "":
		parts = append(parts, banner.InstructorName)
	}
	if banner.ClassNo != "" {
		parts = append(parts, "Class "+banner.ClassNo)
	}
	if banner.Term != "" {
		term := banner.Term
		if banner.Year != 0 {
			term = fmt.Sprintf("%s %d", term, banner.Year)
		}
		parts = append(parts, term)
	}
	parts = append(parts, fmt.Sprintf("%d lessons", total))
	return strings.Join(parts, " • ")
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoklama-api/internal/models"
)

func newTestResolver(store *memoryStore) *ScheduleResolver {
	terms := NewTermSettingsService(store, TermSettingsConfig{}, nil)
	return NewScheduleResolver(store, terms, nil, nil, ScheduleResolverConfig{ParentFanOut: 2})
}

func seedDepartmentAndTerm(store *memoryStore, year int) {
	store.put("departments/CENG", map[string]interface{}{"name": "Bilgisayar Mühendisliği", "code": "CENG"})
	store.put("settings/app", map[string]interface{}{"currentTerm": "Güz", "currentYear": year})
}

func cengStudent() models.StudentProfile {
	return models.StudentProfile{UID: "stu-1", Name: "Elif", DepartmentID: "CENG", ClassNo: 1}
}

func courseCodes(lessons []models.Lesson) []string {
	out := make([]string, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, l.CourseCode)
	}
	return out
}

func TestResolveForStudentDirectLookup(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	store.put("program_terms/CENG-1-guz", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2025})
	store.put("program_terms/CENG-1-guz/lessons/l1", map[string]interface{}{"courseCode": "CENG102", "title": "Veri Yapıları", "day": "Çarşamba", "startTime": "10:00", "room": "B1", "instructor": "Dr. A"})
	store.put("program_terms/CENG-1-guz/lessons/l2", map[string]interface{}{"courseCode": "CENG101", "day": 1, "startTime": "13:30"})
	store.put("program_terms/CENG-1-guz/lessons/l3", map[string]interface{}{"course": "CENG103", "day": "pazartesi", "start": "09:00", "location": "Lab 2"})
	store.put("program_terms/CENG-1-guz/lessons/l4", map[string]interface{}{"courseCode": "MATH", "day": "Funday", "startTime": "08:00"})

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Empty(t, result.InfoCode)
	assert.Empty(t, result.Info)
	assert.Equal(t, models.RoleStudent, result.Role)
	assert.Equal(t, "Elif", result.DisplayName)
	assert.Equal(t, 4, result.Total)
	assert.Len(t, result.Grouped, 8)
	assert.Equal(t, []string{"CENG103", "CENG101"}, courseCodes(result.Grouped[1]))
	assert.Equal(t, []string{"CENG102"}, courseCodes(result.Grouped[3]))
	assert.Equal(t, []string{"MATH"}, courseCodes(result.Grouped[models.UnknownDay]))
	assert.Empty(t, result.Grouped[7])
	assert.Equal(t, []string{"CENG103", "CENG101", "CENG102", "MATH"}, courseCodes(result.Lessons()))

	l3 := result.Grouped[1][0]
	assert.Equal(t, "Lab 2", l3.Room)
	assert.Equal(t, "-", l3.Instructor)
	assert.Equal(t, "CENG103", l3.Title)
	assert.Equal(t, "program_terms/CENG-1-guz", l3.Source)

	require.NotNil(t, result.Banner)
	assert.Equal(t, "Bilgisayar Mühendisliği", result.Banner.DepartmentName)
	assert.Equal(t, "CENG", result.Banner.DepartmentCode)
	assert.Equal(t, "1", result.Banner.ClassNo)
	assert.Equal(t, "guz", result.Banner.Term)
	assert.Equal(t, 2025, result.Banner.Year)
	assert.Contains(t, result.Banner.Summary, "4 lessons")
}

func TestResolveForStudentCascadeFallsBackToLatestYear(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2026)
	store.put("program_terms/CENG-1-2024", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2024})
	store.put("program_terms/CENG-1-2025", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2025})
	store.put("program_terms/CENG-1-2024/lessons/old", map[string]interface{}{"courseCode": "OLD100", "day": 1, "startTime": "09:00"})
	store.put("program_terms/CENG-1-2025/lessons/new", map[string]interface{}{"courseCode": "NEW100", "day": 2, "startTime": "09:00"})

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	require.NotNil(t, result.Banner)
	assert.Equal(t, 2025, result.Banner.Year)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"NEW100"}, courseCodes(result.Lessons()))
	assert.Equal(t, "program_terms/CENG-1-2025", result.Lessons()[0].Source)
	assert.Contains(t, store.gets, "program_terms/CENG-1-guz")
}

func TestFindLatestYearTermGroupTieBreaksOnPath(t *testing.T) {
	store := newMemoryStore()
	store.put("program_terms/b-group", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2025})
	store.put("program_terms/a-group", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2025})
	store.put("program_terms/c-group", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2023})

	groups, err := findLatestYearTermGroup(context.Background(), store, termGroupQuery{DepartmentID: "CENG", ClassNo: 1, Term: models.TermSelector{Term: "guz"}})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "program_terms/a-group", groups[0].Path)
}

func TestResolveForStudentMissingClassNoSkipsStore(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)

	result := newTestResolver(store).ResolveForStudent(context.Background(), models.StudentProfile{UID: "stu-1", DepartmentID: "CENG"})

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, models.InfoMissingAttributes, result.InfoCode)
	assert.NotEmpty(t, result.Info)
	assert.NotNil(t, result.Grouped)
	assert.Nil(t, result.Banner)
	assert.Empty(t, store.gets)
	assert.Empty(t, store.queries)
	assert.Empty(t, store.groups)
}

func TestResolveForStudentEmptyStates(t *testing.T) {
	tests := []struct {
		name string
		seed func(store *memoryStore)
		code models.ScheduleInfoCode
	}{
		{
			name: "department not found",
			seed: func(store *memoryStore) {
				store.put("settings/app", map[string]interface{}{"currentTerm": "guz"})
			},
			code: models.InfoDepartmentNotFound,
		},
		{
			name: "term not configured",
			seed: func(store *memoryStore) {
				store.put("departments/CENG", map[string]interface{}{"name": "CENG"})
			},
			code: models.InfoTermNotConfigured,
		},
		{
			name: "no term group",
			seed: func(store *memoryStore) {
				seedDepartmentAndTerm(store, 2025)
			},
			code: models.InfoTermGroupNotFound,
		},
		{
			name: "term group without lessons",
			seed: func(store *memoryStore) {
				seedDepartmentAndTerm(store, 2025)
				store.put("program_terms/CENG-1-guz", map[string]interface{}{"year": 2025})
			},
			code: models.InfoNoLessons,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemoryStore()
			tc.seed(store)

			result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

			assert.Equal(t, tc.code, result.InfoCode)
			assert.NotEmpty(t, result.Info)
			assert.Equal(t, 0, result.Total)
			assert.NotNil(t, result.Grouped)
		})
	}
}

func TestResolveForStudentSettingsFailureReturnsGenericInfo(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	store.getErr["settings/app"] = errors.New("connection reset")

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Equal(t, models.InfoLoadFailed, result.InfoCode)
	assert.Equal(t, infoLoadFailed, result.Info)
	assert.Equal(t, 0, result.Total)
	assert.NotNil(t, result.Grouped)
	assert.Empty(t, result.Grouped)
	assert.Nil(t, result.Banner)
}

func TestResolveForStudentCascadeSurvivesSingleStepFailure(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	store.getErr["program_terms/CENG-1-guz"] = errors.New("deadline exceeded")
	store.put("program_terms/ceng-first", map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2025})
	store.put("program_terms/ceng-first/lessons/a", map[string]interface{}{"courseCode": "CENG101", "day": 1, "startTime": "09:00"})

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Empty(t, result.InfoCode)
	assert.Equal(t, 1, result.Total)
}

func TestResolveForStudentCascadeTotalFailure(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	store.getErr["program_terms/CENG-1-guz"] = errors.New("unavailable")
	store.queryErr["program_terms"] = errors.New("unavailable")

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Equal(t, models.InfoLoadFailed, result.InfoCode)
	assert.Equal(t, 0, result.Total)
}

func TestResolveForStudentCascadeTotalFailureWithoutYear(t *testing.T) {
	store := newMemoryStore()
	store.put("departments/CENG", map[string]interface{}{"name": "Bilgisayar Mühendisliği", "code": "CENG"})
	store.put("settings/app", map[string]interface{}{"currentTerm": "guz"})
	store.getErr["program_terms/CENG-1-guz"] = errors.New("unavailable")
	store.queryErr["program_terms"] = errors.New("unavailable")

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Equal(t, models.InfoLoadFailed, result.InfoCode)
	assert.Equal(t, infoLoadFailed, result.Info)
}

func TestSelectTermGroupsIgnoresSkippedStrategies(t *testing.T) {
	store := newMemoryStore()
	resolver := newTestResolver(store)
	resolver.cascade = []termGroupStrategy{
		{Name: "skipped", Find: func(context.Context, DocumentReader, termGroupQuery) ([]models.TermGroup, error) {
			return nil, errStrategySkipped
		}},
		{Name: "broken", Find: func(context.Context, DocumentReader, termGroupQuery) ([]models.TermGroup, error) {
			return nil, errors.New("unavailable")
		}},
	}

	groups, err := resolver.selectTermGroups(context.Background(), resolver.logger, termGroupQuery{})
	require.Error(t, err)
	assert.Empty(t, groups)

	resolver.cascade = resolver.cascade[:1]
	groups, err = resolver.selectTermGroups(context.Background(), resolver.logger, termGroupQuery{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestResolveForStudentDepartmentIDWithSlash(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	student := cengStudent()
	student.DepartmentID = "CE/NG"

	result := newTestResolver(store).ResolveForStudent(context.Background(), student)

	assert.Equal(t, models.InfoDepartmentNotFound, result.InfoCode)
}

func TestResolveForStudentDirectDocumentAnyYear(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	store.put("program_terms/CENG-1-guz", map[string]interface{}{"year": 2024})
	store.put("program_terms/CENG-1-guz/lessons/a", map[string]interface{}{"courseCode": "CENG101", "day": "Monday", "startTime": "09:00"})

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Empty(t, result.InfoCode)
	assert.Equal(t, 1, result.Total)
	require.NotNil(t, result.Banner)
	assert.Equal(t, 2024, result.Banner.Year)
}

func TestResolveForStudentDeduplicatesAcrossGroups(t *testing.T) {
	store := newMemoryStore()
	seedDepartmentAndTerm(store, 2025)
	group := map[string]interface{}{"departmentId": "CENG", "classNo": 1, "term": "guz", "year": 2025}
	store.put("program_terms/g1", group)
	store.put("program_terms/g2", group)
	store.put("program_terms/g1/lessons/a", map[string]interface{}{"courseCode": "CENG101", "title": "Intro", "day": 1, "startTime": "09:00", "room": "A", "instructor": "X"})
	store.put("program_terms/g2/lessons/a", map[string]interface{}{"courseCode": "CENG101", "title": "Intro (copy)", "day": "Pazartesi", "startTime": "09:00", "room": "A", "instructor": "X"})
	store.put("program_terms/g2/lessons/b", map[string]interface{}{"courseCode": "CENG105", "day": 2, "startTime": "09:00"})

	result := newTestResolver(store).ResolveForStudent(context.Background(), cengStudent())

	assert.Equal(t, 2, result.Total)
	first := result.Grouped[1][0]
	assert.Equal(t, "Intro", first.Title)
	assert.Equal(t, "program_terms/g1", first.Source)
}

func seedAcademic(store *memoryStore) {
	store.put("settings/app", map[string]interface{}{"currentTerm": "guz", "currentYear": "2025"})
	store.put("academics/T1", map[string]interface{}{"fullName": "Dr. Ayşe Kaya"})
	store.put("program_terms/current", map[string]interface{}{"term": "GÜZ", "year": 2025})
	store.put("program_terms/past", map[string]interface{}{"term": "guz", "year": 2024})
}

func TestResolveForAcademicCrossCollection(t *testing.T) {
	store := newMemoryStore()
	seedAcademic(store)
	store.put("program_terms/current/lessons/a", map[string]interface{}{"instructorId": "T1", "courseCode": "C2", "day": 2, "startTime": "10:00"})
	store.put("program_terms/current/lessons/b", map[string]interface{}{"instructorId": "T1", "courseCode": "C1", "day": "Pazartesi", "startTime": "14:00"})
	store.put("program_terms/past/lessons/c", map[string]interface{}{"instructorId": "T1", "courseCode": "C0", "day": 1, "startTime": "08:00"})
	store.put("program_terms/current/lessons/d", map[string]interface{}{"instructorId": "T2", "courseCode": "OTHER", "day": 1, "startTime": "08:00"})

	result := newTestResolver(store).ResolveForAcademic(context.Background(), "T1")

	assert.Empty(t, result.InfoCode)
	assert.Equal(t, models.RoleAcademic, result.Role)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []string{"C1", "C2"}, courseCodes(result.Lessons()))
	assert.Equal(t, "Dr. Ayşe Kaya", result.DisplayName)
	require.NotNil(t, result.Banner)
	assert.Equal(t, "Dr. Ayşe Kaya", result.Banner.InstructorName)
	assert.Equal(t, 2025, result.Banner.Year)
	assert.Equal(t, []string{models.CollectionLessons}, store.groups)
}

func TestResolveForAcademicDropsLessonsWithoutParent(t *testing.T) {
	store := newMemoryStore()
	seedAcademic(store)
	store.put("program_terms/ghost/lessons/b", map[string]interface{}{"instructorId": "T1", "courseCode": "C2", "day": 1})
	store.put("lessons/orphan", map[string]interface{}{"instructorId": "T1", "courseCode": "C3", "day": 1})

	result := newTestResolver(store).ResolveForAcademic(context.Background(), "T1")

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, models.InfoNoLessons, result.InfoCode)
	assert.Equal(t, infoNoAcademicForTerm, result.Info)
}

func TestResolveForAcademicParentLookupFailure(t *testing.T) {
	store := newMemoryStore()
	seedAcademic(store)
	store.getErr["program_terms/current"] = errors.New("unavailable")
	store.put("program_terms/current/lessons/a", map[string]interface{}{"instructorId": "T1", "courseCode": "C1", "day": 1})
	store.put("program_terms/ghost/lessons/b", map[string]interface{}{"instructorId": "T1", "courseCode": "C2", "day": 1})

	result := newTestResolver(store).ResolveForAcademic(context.Background(), "T1")

	assert.Equal(t, models.InfoLoadFailed, result.InfoCode)
	assert.Equal(t, infoLoadFailed, result.Info)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Grouped)
}

func TestResolveForAcademicWithoutTermFilterKeepsAllParents(t *testing.T) {
	store := newMemoryStore()
	store.put("program_terms/current", map[string]interface{}{"term": "guz", "year": 2025})
	store.put("program_terms/past", map[string]interface{}{"term": "bahar", "year": 2020})
	store.put("program_terms/current/lessons/a", map[string]interface{}{"instructorId": "T1", "courseCode": "C1", "day": 1})
	store.put("program_terms/past/lessons/b", map[string]interface{}{"instructorId": "T1", "courseCode": "C2", "day": 2})

	result := newTestResolver(store).ResolveForAcademic(context.Background(), "T1")

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "Academic", result.DisplayName)
}

func TestResolveForAcademicNoLessons(t *testing.T) {
	store := newMemoryStore()
	seedAcademic(store)

	result := newTestResolver(store).ResolveForAcademic(context.Background(), "T1")

	assert.Equal(t, models.InfoNoLessons, result.InfoCode)
	assert.Equal(t, infoNoAcademicLessons, result.Info)
	assert.Len(t, result.Grouped, 7)
}

func TestResolveForAcademicFailures(t *testing.T) {
	t.Run("lesson search fails", func(t *testing.T) {
		store := newMemoryStore()
		seedAcademic(store)
		store.groupErr = errors.New("index missing")

		result := newTestResolver(store).ResolveForAcademic(context.Background(), "T1")
		assert.Equal(t, models.InfoLoadFailed, result.InfoCode)
		assert.Empty(t, result.Grouped)
	})

	t.Run("missing instructor id", func(t *testing.T) {
		store := newMemoryStore()

		result := newTestResolver(store).ResolveForAcademic(context.Background(), "  ")
		assert.Equal(t, models.InfoMissingAttributes, result.InfoCode)
		assert.Empty(t, store.gets)
		assert.Empty(t, store.groups)
	})
}

func TestResolveDispatchesOnRole(t *testing.T) {
	store := newMemoryStore()
	resolver := newTestResolver(store)

	student := resolver.Resolve(context.Background(), models.RoleContext{UserID: "stu-1", Role: models.RoleStudent}, nil)
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.Equal(t, models.InfoMissingAttributes, student.InfoCode)

	academic := resolver.Resolve(context.Background(), models.RoleContext{UserID: "T1", Role: models.RoleAcademic}, nil)
	assert.Equal(t, models.RoleAcademic, academic.Role)
	assert.Equal(t, []string{models.CollectionLessons}, store.groups)
}

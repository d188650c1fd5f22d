package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

const (
	placeholderTitle = "Lesson"
	placeholderText  = "-"
)

// lessonFromDocument applies field aliases and display defaults.
func lessonFromDocument(doc models.Document, source string) models.Lesson {
	code := doc.String("courseCode", "course")
	title := doc.String("title", "courseName")
	if title == "" {
		title = code
	}
	if title == "" {
		title = placeholderTitle
	}
	return models.Lesson{
		ID:           doc.Path,
		Source:       source,
		CourseCode:   orPlaceholder(code),
		Title:        title,
		Section:      doc.String("section"),
		Day:          normalize.Day(doc.Value("day")),
		StartTime:    doc.String("startTime", "start"),
		EndTime:      doc.String("endTime", "end"),
		Room:         orPlaceholder(doc.String("room", "location")),
		Instructor:   orPlaceholder(doc.String("instructor")),
		InstructorID: doc.String("instructorId"),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholderText
	}
	return s
}

// lessonKey identifies logically identical lessons across sources. It is built
// from the raw document so display placeholders never collide two lessons.
func lessonKey(doc models.Document) string {
	day := ""
	if d := normalize.Day(doc.Value("day")); d != models.UnknownDay {
		day = models.Stringify(d)
	} else {
		day = normalize.Fold(doc.String("day"))
	}
	parts := []string{
		doc.String("courseCode", "course"),
		day,
		doc.String("startTime", "start"),
		doc.String("room", "location"),
		doc.String("instructor"),
	}
	if strings.Join(parts, "") == "" {
		return "path:" + doc.Path
	}
	return strings.Join(parts, "|")
}

// lessonSet merges lessons from several collections, keeping the first
// occurrence of each key.
type lessonSet struct {
	seen    map[string]struct{}
	lessons []models.Lesson
}

func newLessonSet() *lessonSet {
	return &lessonSet{seen: make(map[string]struct{})}
}

func (s *lessonSet) add(source string, docs ...models.Document) {
	for _, doc := range docs {
		key := lessonKey(doc)
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.lessons = append(s.lessons, lessonFromDocument(doc, source))
	}
}

func (s *lessonSet) len() int {
	return len(s.lessons)
}

// sortLessons orders by day then start time. Equal keys keep their merge order.
func sortLessons(lessons []models.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].Day != lessons[j].Day {
			return lessons[i].Day < lessons[j].Day
		}
		return normalize.Seconds(lessons[i].StartTime) < normalize.Seconds(lessons[j].StartTime)
	})
}

// groupLessons sorts and buckets lessons. Buckets 1-7 are always present so
// clients can render empty days; bucket 0 only when it has lessons.
func groupLessons(lessons []models.Lesson) map[int][]models.Lesson {
	sorted := make([]models.Lesson, len(lessons))
	copy(sorted, lessons)
	sortLessons(sorted)

	grouped := make(map[int][]models.Lesson, 8)
	for day := 1; day <= 7; day++ {
		grouped[day] = []models.Lesson{}
	}
	for _, lesson := range sorted {
		day := lesson.Day
		if day < 1 || day > 7 {
			day = models.UnknownDay
		}
		grouped[day] = append(grouped[day], lesson)
	}
	return grouped
}

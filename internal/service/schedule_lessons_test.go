package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

func lessonDoc(path string, data map[string]interface{}) models.Document {
	return models.Document{Path: path, Data: data}
}

func TestGroupLessonsOrdersByDayThenStart(t *testing.T) {
	days := []interface{}{"Cuma", 3, "salı", "SUNDAY", 1, "Perşembe", 2, "cumartesi"}
	starts := []string{"16:00", "08:30", "12:15:30", "09:00", "", "07:45", "12:15", "10:00"}

	set := newLessonSet()
	for i := 0; i < len(days)*3; i++ {
		set.add("program_terms/x", lessonDoc(fmt.Sprintf("program_terms/x/lessons/%02d", i), map[string]interface{}{
			"courseCode": fmt.Sprintf("C%02d", i),
			"day":        days[i%len(days)],
			"startTime":  starts[(i*5)%len(starts)],
		}))
	}
	grouped := groupLessons(set.lessons)
	flat := models.GroupedSchedule{Grouped: grouped, Total: set.len()}.Lessons()
	require.Len(t, flat, set.len())

	for i := 1; i < len(flat); i++ {
		prev, cur := flat[i-1], flat[i]
		if prev.Day == cur.Day {
			assert.LessOrEqual(t, normalize.Seconds(prev.StartTime), normalize.Seconds(cur.StartTime))
		} else {
			assert.Less(t, prev.Day, cur.Day)
		}
	}
	for day, lessons := range grouped {
		for _, l := range lessons {
			assert.Equal(t, day, l.Day)
		}
	}
}

func TestLessonSetDeduplicationIsIdempotent(t *testing.T) {
	docs := []models.Document{
		lessonDoc("program_terms/a/lessons/1", map[string]interface{}{"courseCode": "C1", "day": 1, "startTime": "09:00", "room": "A", "instructor": "X"}),
		lessonDoc("program_terms/a/lessons/2", map[string]interface{}{"courseCode": "C2", "day": "Salı", "startTime": "09:00"}),
		lessonDoc("program_terms/a/lessons/3", map[string]interface{}{"courseCode": "C3", "day": "someday"}),
		lessonDoc("program_terms/a/lessons/4", map[string]interface{}{}),
	}
	overlap := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		overlap = append(overlap, lessonDoc("program_terms/b/lessons/"+d.ID(), d.Data))
	}

	once := newLessonSet()
	once.add("program_terms/a", docs...)

	twice := newLessonSet()
	twice.add("program_terms/a", docs...)
	twice.add("program_terms/b", overlap...)

	// empty documents fall back to their path, so the copy of 4 is kept
	assert.Equal(t, once.len()+1, twice.len())
	assert.Equal(t, once.lessons, twice.lessons[:once.len()])

	again := newLessonSet()
	again.add("program_terms/a", docs...)
	again.add("program_terms/a", docs...)
	assert.Equal(t, once.lessons, again.lessons)
}

func TestLessonKey(t *testing.T) {
	canonical := lessonDoc("p/a/lessons/1", map[string]interface{}{"courseCode": "C1", "day": "Pazartesi", "startTime": "09:00"})
	numeric := lessonDoc("p/b/lessons/1", map[string]interface{}{"course": "C1", "day": 1, "start": "09:00"})
	assert.Equal(t, lessonKey(canonical), lessonKey(numeric))

	unknownA := lessonDoc("p/a/lessons/2", map[string]interface{}{"courseCode": "C1", "day": "Someday"})
	unknownB := lessonDoc("p/a/lessons/3", map[string]interface{}{"courseCode": "C1", "day": "Otherday"})
	assert.NotEqual(t, lessonKey(unknownA), lessonKey(unknownB))

	empty := lessonDoc("p/a/lessons/4", map[string]interface{}{"title": "No key fields"})
	assert.Equal(t, "path:p/a/lessons/4", lessonKey(empty))
}

func TestLessonFromDocumentDefaults(t *testing.T) {
	lesson := lessonFromDocument(lessonDoc("p/a/lessons/1", map[string]interface{}{"courseName": "Fizik", "day": 9}), "p/a")

	assert.Equal(t, "p/a/lessons/1", lesson.ID)
	assert.Equal(t, "Fizik", lesson.Title)
	assert.Equal(t, "-", lesson.CourseCode)
	assert.Equal(t, "-", lesson.Room)
	assert.Equal(t, "-", lesson.Instructor)
	assert.Equal(t, models.UnknownDay, lesson.Day)

	bare := lessonFromDocument(lessonDoc("p/a/lessons/2", nil), "p/a")
	assert.Equal(t, placeholderTitle, bare.Title)
}

func TestGroupLessonsBuckets(t *testing.T) {
	grouped := groupLessons(nil)
	assert.Len(t, grouped, 7)
	_, hasUnknown := grouped[models.UnknownDay]
	assert.False(t, hasUnknown)

	grouped = groupLessons([]models.Lesson{{CourseCode: "X", Day: 0}, {CourseCode: "Y", Day: 5}})
	assert.Len(t, grouped, 8)
	assert.Len(t, grouped[models.UnknownDay], 1)
	assert.Len(t, grouped[5], 1)
}

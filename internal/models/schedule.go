package models

// UnknownDay is the bucket for lessons whose day could not be canonicalized.
const UnknownDay = 0

// Lesson is one weekly class meeting as returned to clients, with display
// defaults already applied.
type Lesson struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	CourseCode   string `json:"courseCode"`
	Title        string `json:"title"`
	Section      string `json:"section,omitempty"`
	Day          int    `json:"day"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime,omitempty"`
	Room         string `json:"room"`
	Instructor   string `json:"instructor"`
	InstructorID string `json:"instructorId,omitempty"`
}

// ScheduleInfoCode is the machine-readable companion of GroupedSchedule.Info.
type ScheduleInfoCode string

const (
	InfoMissingAttributes  ScheduleInfoCode = "MISSING_ATTRIBUTES"
	InfoDepartmentNotFound ScheduleInfoCode = "DEPARTMENT_NOT_FOUND"
	InfoTermNotConfigured  ScheduleInfoCode = "TERM_NOT_CONFIGURED"
	InfoTermGroupNotFound  ScheduleInfoCode = "TERM_GROUP_NOT_FOUND"
	InfoNoLessons          ScheduleInfoCode = "NO_LESSONS"
	InfoLoadFailed         ScheduleInfoCode = "LOAD_FAILED"
)

// ScheduleBanner summarises which term group produced a schedule.
type ScheduleBanner struct {
	DepartmentName string `json:"departmentName,omitempty"`
	DepartmentCode string `json:"departmentCode,omitempty"`
	ClassNo        string `json:"classNo,omitempty"`
	InstructorName string `json:"instructorName,omitempty"`
	Term           string `json:"term,omitempty"`
	Year           int    `json:"year,omitempty"`
	Summary        string `json:"summary"`
}

// GroupedSchedule is the day-grouped view. Buckets 1-7 are Monday-Sunday and
// bucket 0 holds lessons with an unknown day. Either Info or Banner is set.
type GroupedSchedule struct {
	Role        UserRole         `json:"role"`
	DisplayName string           `json:"displayName,omitempty"`
	Grouped     map[int][]Lesson `json:"grouped"`
	Total       int              `json:"total"`
	Info        string           `json:"info,omitempty"`
	InfoCode    ScheduleInfoCode `json:"infoCode,omitempty"`
	Banner      *ScheduleBanner  `json:"banner,omitempty"`
}

// Lessons flattens the buckets in display order: days 1-7 then unknown.
func (g GroupedSchedule) Lessons() []Lesson {
	out := make([]Lesson, 0, g.Total)
	for day := 1; day <= 7; day++ {
		out = append(out, g.Grouped[day]...)
	}
	return append(out, g.Grouped[UnknownDay]...)
}

// RoleContext identifies the viewer a schedule is resolved for.
type RoleContext struct {
	UserID string   `json:"userId"`
	Role   UserRole `json:"role"`
}

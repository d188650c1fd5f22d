package models

// Term-group storage layout: program_terms/{id}/lessons/{lessonId}.
const (
	CollectionProgramTerms = "program_terms"
	CollectionLessons      = "lessons"
)

// TermGroup is one (department, class, term, year) scheduling unit owning a
// lessons sub-collection.
type TermGroup struct {
	ID           string      `json:"id"`
	Path         string      `json:"path"`
	DepartmentID string      `json:"departmentId"`
	ClassNo      interface{} `json:"classNo"`
	Term         string      `json:"term"`
	Year         int         `json:"year,omitempty"`
}

// TermSelector identifies the active academic term. An empty Term or zero Year
// means that constraint is not configured.
type TermSelector struct {
	Term    string `json:"term"`
	RawTerm string `json:"rawTerm,omitempty"`
	Year    int    `json:"year,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Configured reports whether any term constraint is set.
func (t TermSelector) Configured() bool {
	return t.Term != "" || t.Year != 0
}

package export

// Section is one titled block of rows, e.g. one weekday.
type Section struct {
	Title string
	Rows  [][]string
}

// Timetable is the tabular export content shared by the CSV and PDF renderers.
type Timetable struct {
	Title    string
	Subtitle string
	Headers  []string
	Sections []Section
}

// RowCount returns the number of data rows across sections.
func (t Timetable) RowCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Rows)
	}
	return n
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders a timetable as CSV with the section title as the first column.
type CSVExporter struct {
	SectionHeader string
}

// NewCSVExporter builds a CSV exporter whose first column is named sectionHeader.
func NewCSVExporter(sectionHeader string) *CSVExporter {
	return &CSVExporter{SectionHeader: sectionHeader}
}

// Render produces CSV encoded bytes for the timetable.
func (e *CSVExporter) Render(t Timetable) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(append([]string{e.SectionHeader}, t.Headers...)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, section := range t.Sections {
		for _, row := range section.Rows {
			record := make([]string, 0, len(t.Headers)+1)
			record = append(record, section.Title)
			for i := range t.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				record = append(record, cell)
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

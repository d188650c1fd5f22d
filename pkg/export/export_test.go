package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimetable() Timetable {
	return Timetable{
		Title:    "Ders Programı",
		Subtitle: "Bilgisayar Mühendisliği (CENG) • 1. sınıf • guz 2025",
		Headers:  []string{"Time", "Course", "Room"},
		Sections: []Section{
			{Title: "Pazartesi", Rows: [][]string{{"08:30 - 10:15", "CENG101 Programlama", "B-101"}}},
			{Title: "Salı"},
			{Title: "Çarşamba", Rows: [][]string{{"13:00", "MATH101"}}},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter("Day").Render(sampleTimetable())
	require.NoError(t, err)
	expected := "Day,Time,Course,Room\n" +
		"Pazartesi,08:30 - 10:15,CENG101 Programlama,B-101\n" +
		"Çarşamba,13:00,MATH101,\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter("Day").Render(Timetable{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleTimetable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestTimetableRowCount(t *testing.T) {
	assert.Equal(t, 2, sampleTimetable().RowCount())
}

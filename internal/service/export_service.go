package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/export"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRequest selects the rendered format.
type ExportRequest struct {
	Format string `form:"format" validate:"required,oneof=csv pdf"`
}

// ExportFile is a rendered schedule ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type timetableRenderer interface {
	Render(t export.Timetable) ([]byte, error)
}

// ExportService renders grouped schedules as CSV or PDF timetables.
type ExportService struct {
	csv       timetableRenderer
	pdf       timetableRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(csv, pdf timetableRenderer, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter("Day")
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, validator: validate, logger: logger, now: time.Now}
}

// Render converts schedule into the requested format.
func (s *ExportService) Render(schedule models.GroupedSchedule, req ExportRequest) (*ExportFile, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	table := BuildTimetable(schedule)
	var (
		body        []byte
		err         error
		contentType string
	)
	switch req.Format {
	case ExportFormatCSV:
		body, err = s.csv.Render(table)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		body, err = s.pdf.Render(table)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule")
	}

	filename := fmt.Sprintf("schedule-%s-%s.%s", strings.ToLower(string(schedule.Role)), s.now().UTC().Format("20060102"), req.Format)
	s.logger.Debug("schedule exported", zap.String("format", req.Format), zap.Int("rows", table.RowCount()), zap.Int("bytes", len(body)))
	return &ExportFile{Filename: filename, ContentType: contentType, Body: body}, nil
}

// BuildTimetable lays a schedule out as one section per non-empty day.
func BuildTimetable(schedule models.GroupedSchedule) export.Timetable {
	table := export.Timetable{
		Title:   "Weekly Schedule",
		Headers: []string{"Start", "End", "Code", "Course", "Section", "Room", "Instructor"},
	}
	if schedule.DisplayName != "" {
		table.Title = "Weekly Schedule - " + schedule.DisplayName
	}
	switch {
	case schedule.Banner != nil:
		table.Subtitle = schedule.Banner.Summary
	default:
		table.Subtitle = schedule.Info
	}

	days := []int{1, 2, 3, 4, 5, 6, 7, models.UnknownDay}
	for _, day := range days {
		lessons := schedule.Grouped[day]
		if len(lessons) == 0 {
			continue
		}
		section := export.Section{Title: normalize.DayName(day), Rows: make([][]string, 0, len(lessons))}
		for _, l := range lessons {
			section.Rows = append(section.Rows, []string{l.StartTime, l.EndTime, l.CourseCode, l.Title, l.Section, l.Room, l.Instructor})
		}
		table.Sections = append(table.Sections, section)
	}
	return table
}

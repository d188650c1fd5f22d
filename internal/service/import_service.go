package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

// ImportKind names a CSV dataset accepted by ImportService.
type ImportKind string

const (
	ImportDepartments ImportKind = "departments"
	ImportTermGroups  ImportKind = "program_terms"
	ImportLessons     ImportKind = "lessons"
)

// ImportSummary reports what an import wrote.
type ImportSummary struct {
	Kind    ImportKind `json:"kind"`
	Written int        `json:"written"`
	Skipped int        `json:"skipped"`
}

// ImportService loads seed data from header-driven CSV files into the store.
type ImportService struct {
	store  DocumentStore
	logger *zap.Logger
	newID  func() string
	dryRun bool
}

// NewImportService constructs an ImportService. In dry-run mode rows are
// validated but not written.
func NewImportService(store DocumentStore, logger *zap.Logger, dryRun bool) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{store: store, logger: logger, newID: uuid.NewString, dryRun: dryRun}
}

// Import reads r as CSV of the given kind.
//
//	departments:   code,name
//	program_terms: id?,departmentId,classNo,term,year
//	lessons:       termId,id?,courseCode,title,day,startTime,endTime,room,instructor,instructorId,section
func (s *ImportService) Import(ctx context.Context, kind ImportKind, r io.Reader) (*ImportSummary, error) {
	var build func(row map[string]string) (string, map[string]interface{}, error)
	switch kind {
	case ImportDepartments:
		build = s.departmentRow
	case ImportTermGroups:
		build = s.termGroupRow
	case ImportLessons:
		build = s.lessonRow
	default:
		return nil, fmt.Errorf("unknown import kind %q", kind)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", kind, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	summary := &ImportSummary{Kind: kind}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read %s line %d: %w", kind, line, err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			}
		}
		path, data, err := build(row)
		if err != nil {
			summary.Skipped++
			s.logger.Warn("import row skipped", zap.String("kind", string(kind)), zap.Int("line", line), zap.Error(err))
			continue
		}
		if !s.dryRun {
			if err := s.store.Set(ctx, path, data, true); err != nil {
				return summary, fmt.Errorf("write %s: %w", path, err)
			}
		}
		summary.Written++
	}
	s.logger.Info("import finished", zap.String("kind", string(kind)), zap.Int("written", summary.Written), zap.Int("skipped", summary.Skipped), zap.Bool("dry_run", s.dryRun))
	return summary, nil
}

func (s *ImportService) departmentRow(row map[string]string) (string, map[string]interface{}, error) {
	code := row["code"]
	if code == "" || strings.Contains(code, "/") {
		return "", nil, fmt.Errorf("invalid department code %q", code)
	}
	name := row["name"]
	if name == "" {
		name = code
	}
	return models.JoinPath(models.CollectionDepartments, code), map[string]interface{}{"code": code, "name": name}, nil
}

func (s *ImportService) termGroupRow(row map[string]string) (string, map[string]interface{}, error) {
	dept, classNo, term := row["departmentId"], row["classNo"], normalize.TermSlug(row["term"])
	if dept == "" || classNo == "" || term == "" {
		return "", nil, errors.New("departmentId, classNo and term are required")
	}
	q := termGroupQuery{DepartmentID: dept, ClassNo: classNo, Term: models.TermSelector{Term: term}}
	id := row["id"]
	if id == "" {
		id = q.DirectKey()
	}
	if strings.Contains(id, "/") {
		return "", nil, fmt.Errorf("invalid term group id %q", id)
	}
	data := map[string]interface{}{
		"departmentId": dept,
		"classNo":      classNoValue(classNo),
		"term":         term,
	}
	if year := row["year"]; year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			return "", nil, fmt.Errorf("invalid year %q", year)
		}
		data["year"] = n
	}
	return models.JoinPath(models.CollectionProgramTerms, id), data, nil
}

func (s *ImportService) lessonRow(row map[string]string) (string, map[string]interface{}, error) {
	termID := row["termId"]
	if termID == "" || strings.Contains(termID, "/") {
		return "", nil, fmt.Errorf("invalid termId %q", termID)
	}
	id := row["id"]
	if id == "" {
		id = s.newID()
	}
	data := make(map[string]interface{})
	for _, field := range []string{"courseCode", "title", "startTime", "endTime", "room", "instructor", "instructorId", "section"} {
		if v := row[field]; v != "" {
			data[field] = v
		}
	}
	if day := row["day"]; day != "" {
		if n, err := strconv.Atoi(day); err == nil {
			data["day"] = n
		} else {
			data["day"] = day
		}
	}
	if len(data) == 0 {
		return "", nil, errors.New("empty lesson row")
	}
	return models.JoinPath(models.CollectionProgramTerms, termID, models.CollectionLessons, id), data, nil
}

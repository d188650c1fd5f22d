package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/normalize"
)

// SaveStudentRequest is the payload for registering or updating a student profile.
type SaveStudentRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	StudentNo    string `json:"studentNo" validate:"omitempty,max=32"`
	DepartmentID string `json:"departmentId" validate:"required,max=64"`
	ClassNo      string `json:"classNo" validate:"required,max=16"`
}

// SaveAcademicRequest is the payload for registering or updating an academic profile.
type SaveAcademicRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	Title        string `json:"title" validate:"omitempty,max=64"`
	DepartmentID string `json:"departmentId" validate:"omitempty,max=64"`
}

// ProfileService reads and writes student/academic profile documents.
type ProfileService struct {
	store     DocumentStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService constructs a ProfileService.
func NewProfileService(store DocumentStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{store: store, validator: validate, logger: logger, now: time.Now}
}

// Student loads students/{uid}.
func (s *ProfileService) Student(ctx context.Context, uid string) (*models.StudentProfile, error) {
	doc, err := s.load(ctx, models.CollectionStudents, uid, "student profile")
	if err != nil {
		return nil, err
	}
	return studentFromDocument(doc), nil
}

// Academic loads academics/{uid}.
func (s *ProfileService) Academic(ctx context.Context, uid string) (*models.AcademicProfile, error) {
	doc, err := s.load(ctx, models.CollectionAcademics, uid, "academic profile")
	if err != nil {
		return nil, err
	}
	return academicFromDocument(doc), nil
}

// Department loads departments/{id}.
func (s *ProfileService) Department(ctx context.Context, id string) (*models.Department, error) {
	doc, err := s.load(ctx, models.CollectionDepartments, id, "department")
	if err != nil {
		return nil, err
	}
	return departmentFromDocument(doc), nil
}

// FetchRole reports which profile collection holds uid; students win when both do.
func (s *ProfileService) FetchRole(ctx context.Context, uid string) (models.UserRole, error) {
	candidates := []struct {
		collection string
		role       models.UserRole
	}{
		{models.CollectionStudents, models.RoleStudent},
		{models.CollectionAcademics, models.RoleAcademic},
	}
	for _, c := range candidates {
		_, err := s.load(ctx, c.collection, uid, string(c.role))
		if err == nil {
			return c.role, nil
		}
		if !errors.Is(err, appErrors.ErrNotFound) {
			return "", err
		}
	}
	return "", appErrors.ErrUnknownRole
}

// SaveStudent merges the student profile at students/{uid}.
func (s *ProfileService) SaveStudent(ctx context.Context, uid string, req SaveStudentRequest) (*models.StudentProfile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalize.Email(req.Email)
	req.StudentNo = strings.TrimSpace(req.StudentNo)
	req.DepartmentID = strings.TrimSpace(req.DepartmentID)
	req.ClassNo = strings.TrimSpace(req.ClassNo)
	if err := s.validate(uid, req); err != nil {
		return nil, err
	}
	if _, err := s.Department(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
		}
		return nil, err
	}

	data := map[string]interface{}{
		"uid":          uid,
		"role":         "student",
		"name":         req.Name,
		"email":        req.Email,
		"studentNo":    req.StudentNo,
		"departmentId": req.DepartmentID,
		"classNo":      classNoValue(req.ClassNo),
	}
	path, err := s.save(ctx, models.CollectionStudents, uid, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("student profile saved", zap.String("path", path), zap.String("department_id", req.DepartmentID))
	return s.Student(ctx, uid)
}

// SaveAcademic merges the academic profile at academics/{uid}.
func (s *ProfileService) SaveAcademic(ctx context.Context, uid string, req SaveAcademicRequest) (*models.AcademicProfile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalize.Email(req.Email)
	req.Title = strings.TrimSpace(req.Title)
	req.DepartmentID = strings.TrimSpace(req.DepartmentID)
	if err := s.validate(uid, req); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"uid":   uid,
		"role":  "academic",
		"name":  req.Name,
		"email": req.Email,
		"title": req.Title,
	}
	if req.DepartmentID != "" {
		data["departmentId"] = req.DepartmentID
	}
	path, err := s.save(ctx, models.CollectionAcademics, uid, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("academic profile saved", zap.String("path", path))
	return s.Academic(ctx, uid)
}

func (s *ProfileService) validate(uid string, req interface{}) error {
	if strings.TrimSpace(uid) == "" || strings.Contains(uid, "/") {
		return appErrors.Clone(appErrors.ErrValidation, "invalid user id")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return nil
}

func (s *ProfileService) load(ctx context.Context, collection, id, label string) (*models.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return nil, appErrors.Clone(appErrors.ErrNotFound, label+" not found")
	}
	doc, err := s.store.Get(ctx, models.JoinPath(collection, id))
	if errors.Is(err, models.ErrDocumentNotFound) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, label+" not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load "+label)
	}
	return doc, nil
}

// save merges data, stamping createdAt only on first write.
func (s *ProfileService) save(ctx context.Context, collection, uid string, data map[string]interface{}) (string, error) {
	path := models.JoinPath(collection, uid)
	now := s.now().UTC()
	_, err := s.store.Get(ctx, path)
	switch {
	case errors.Is(err, models.ErrDocumentNotFound):
		data["createdAt"] = now
	case err != nil:
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load profile")
	}
	data["updatedAt"] = now
	if err := s.store.Set(ctx, path, data, true); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to save profile")
	}
	return path, nil
}

// classNoValue stores numeric classes as numbers so term-group queries match.
func classNoValue(raw string) interface{} {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func studentFromDocument(doc *models.Document) *models.StudentProfile {
	profile := &models.StudentProfile{
		UID:          doc.ID(),
		Name:         doc.String("name", "fullName"),
		Email:        doc.String("email"),
		StudentNo:    doc.String("studentNo"),
		DepartmentID: doc.String("departmentId", "department"),
		ClassNo:      doc.Value("classNo", "class"),
		CreatedAt:    timeValue(doc.Value("createdAt")),
	}
	if s, ok := profile.ClassNo.(string); ok {
		profile.ClassNo = strings.TrimSpace(s)
	}
	return profile
}

func academicFromDocument(doc *models.Document) *models.AcademicProfile {
	return &models.AcademicProfile{
		UID:          doc.ID(),
		Name:         doc.String("name", "fullName"),
		Email:        doc.String("email"),
		Title:        doc.String("title"),
		DepartmentID: doc.String("departmentId", "department"),
		CreatedAt:    timeValue(doc.Value("createdAt")),
	}
}

func departmentFromDocument(doc *models.Document) *models.Department {
	dept := &models.Department{
		ID:   doc.ID(),
		Name: doc.String("name"),
		Code: doc.String("code"),
	}
	if dept.Name == "" {
		dept.Name = dept.ID
	}
	if dept.Code == "" {
		dept.Code = dept.ID
	}
	return dept
}

// timeValue accepts Firestore timestamps (time.Time) and JSONB strings.
func timeValue(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoklama-api/internal/middleware"
	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/internal/service"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/response"
)

type scheduleProvider interface {
	ForUser(ctx context.Context, userID string, tokenRole models.UserRole) (*models.GroupedSchedule, bool, error)
	Resolve(ctx context.Context, rc models.RoleContext) (*models.GroupedSchedule, bool, error)
}

type scheduleExporter interface {
	Render(schedule models.GroupedSchedule, req service.ExportRequest) (*service.ExportFile, error)
}

// ScheduleHandler serves resolved weekly schedules.
type ScheduleHandler struct {
	schedules scheduleProvider
	exports   scheduleExporter
}

// NewScheduleHandler constructs handler. A nil exporter disables exports.
func NewScheduleHandler(schedules scheduleProvider, exports scheduleExporter) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

// Me godoc
// @Summary Weekly schedule of the caller
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/me [get]
func (h *ScheduleHandler) Me(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	schedule, hit, err := h.schedules.ForUser(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, schedule, middleware.ResponseMeta(c))
}

// Export godoc
// @Summary Download the caller's schedule
// @Tags Schedule
// @Produce text/csv,application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /schedule/me/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export query"))
		return
	}
	schedule, _, err := h.schedules.ForUser(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Render(*schedule, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Student godoc
// @Summary Weekly schedule of a student
// @Tags Schedule
// @Produce json
// @Param id path string true "Student UID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule [get]
func (h *ScheduleHandler) Student(c *gin.Context) {
	h.resolve(c, models.RoleStudent)
}

// Academic godoc
// @Summary Weekly schedule of an academic
// @Tags Schedule
// @Produce json
// @Param id path string true "Academic UID"
// @Success 200 {object} response.Envelope
// @Router /academics/{id}/schedule [get]
func (h *ScheduleHandler) Academic(c *gin.Context) {
	h.resolve(c, models.RoleAcademic)
}

func (h *ScheduleHandler) resolve(c *gin.Context, role models.UserRole) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return
	}
	schedule, hit, err := h.schedules.Resolve(c.Request.Context(), models.RoleContext{UserID: id, Role: role})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, schedule, middleware.ResponseMeta(c))
}

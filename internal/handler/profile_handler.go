package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/internal/service"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/response"
)

type profileService interface {
	FetchRole(ctx context.Context, uid string) (models.UserRole, error)
	SaveStudent(ctx context.Context, uid string, req service.SaveStudentRequest) (*models.StudentProfile, error)
	SaveAcademic(ctx context.Context, uid string, req service.SaveAcademicRequest) (*models.AcademicProfile, error)
}

type scheduleInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// ProfileHandler exposes role detection and profile registration.
type ProfileHandler struct {
	profiles  profileService
	schedules scheduleInvalidator
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles profileService, schedules scheduleInvalidator) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, schedules: schedules}
}

// Role godoc
// @Summary Detect the caller's profile role
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/role [get]
func (h *ProfileHandler) Role(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	role, err := h.profiles.FetchRole(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"uid": claims.UserID, "role": role})
}

// SaveStudent godoc
// @Summary Register or update a student profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student UID"
// @Param payload body service.SaveStudentRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Router /profiles/students/{id} [put]
func (h *ProfileHandler) SaveStudent(c *gin.Context) {
	var req service.SaveStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	profile, err := h.profiles.SaveStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.JSON(c, http.StatusOK, profile)
}

// SaveAcademic godoc
// @Summary Register or update an academic profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Academic UID"
// @Param payload body service.SaveAcademicRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Router /profiles/academics/{id} [put]
func (h *ProfileHandler) SaveAcademic(c *gin.Context) {
	var req service.SaveAcademicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	profile, err := h.profiles.SaveAcademic(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.JSON(c, http.StatusOK, profile)
}

func (h *ProfileHandler) invalidate(c *gin.Context) {
	if h.schedules != nil {
		h.schedules.Invalidate(c.Request.Context(), c.Param("id"))
	}
}

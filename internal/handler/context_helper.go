package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoklama-api/internal/middleware"
	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/response"
)

// requireClaims writes 401 and returns nil when the request is unauthenticated.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := middleware.CurrentUser(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return claims
}

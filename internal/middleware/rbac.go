package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/response"
)

// Self grants access when the :id route parameter is the caller's own id.
const Self = "SELF"

// RBAC enforces role-based access control for routes. Pass Self to also allow
// callers acting on their own resource.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// AdminOrSelf allows administrators and the owner of :id.
func AdminOrSelf() gin.HandlerFunc {
	return RBAC(string(models.RoleAdmin), Self)
}

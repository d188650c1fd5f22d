package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoklama-api/internal/models"
	"github.com/noah-isme/yoklama-api/internal/service"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
	"github.com/noah-isme/yoklama-api/pkg/response"
)

// ContextUserKey is the gin context key storing verified claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a bearer token accepted by verifier.
func JWT(verifier service.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentUser returns the claims stored by JWT, or nil.
func CurrentUser(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/educasem/educasem-api/internal/models"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/response"
)

// RequireRole enforces the role hierarchy: any role ranking at or above the
// required role passes. Requests without verified claims get 401, requests
// with an insufficient role get 403.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !claims.Role.AtLeast(required) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSelfOrRole passes when the :id route parameter matches the caller's
// own user ID, or when the caller's role ranks at or above the required role.
func RequireSelfOrRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
			c.Next()
			return
		}

		if !claims.Role.AtLeast(required) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

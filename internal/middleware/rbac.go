package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/response"
)

// RequirePermission checks the caller's role against the privilege table.
func RequirePermission(p model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !claims.Role.Can(p) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}

		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/istun/mezunlar-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// TokenValidator validates access tokens. Implemented by service.AuthService.
type TokenValidator interface {
	ValidateAccessToken(tokenStr string) (*service.Claims, error)
}

// RequireMemberJWT validates an access token from the Authorization header.
// Any authenticated account passes.
func RequireMemberJWT(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := auth.ValidateAccessToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireAdminJWT validates an access token from the Authorization header
// and requires an admin role claim.
func RequireAdminJWT(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		requireAdmin(c, auth, tokenStr)
	}
}

// RequireAdminWSAuth validates an admin access token from the query param ?token=...
// Used for WebSocket upgrade requests, which cannot carry headers from browsers.
func RequireAdminWSAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		requireAdmin(c, auth, tokenStr)
	}
}

func requireAdmin(c *gin.Context, auth TokenValidator, tokenStr string) {
	claims, err := auth.ValidateAccessToken(tokenStr)
	if err != nil {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	if !claims.Role.IsAdmin() {
		response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
		return
	}

	c.Set(ContextKeyClaims, claims)
	c.Next()
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), nil
		}
	}
	return "", fmt.Errorf("bearer authorization header required")
}

package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// PrivateCache lets the browser, but no shared cache, keep the response for maxAge.
// Uploaded documents have random immutable names and carry personal data.
func PrivateCache(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("private, max-age=%d, immutable", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

// NoStore forbids caching. Used on routes that return tokens or personal data.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

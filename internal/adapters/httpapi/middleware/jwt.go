package middleware

import (
	"net/http"
	"strings"

	userapp "xpilot/internal/core/user/service"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware توکن Bearer را بررسی کرده و userID را در context می‌گذارد
func JWTAuthMiddleware(key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "kind": "unauthenticated", "error": "missing bearer token"})
			return
		}

		userID, err := userapp.ParseToken(strings.TrimPrefix(header, "Bearer "), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "kind": "unauthenticated", "error": "invalid token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"taskbuddy-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware
const (
	ContextUserID  = "user_id"
	ContextProfile = "profile"
)

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		// Store user info in context for use in handlers
		c.Set(ContextUserID, claims.UserID)
		c.Set("username", claims.Username)
		c.Set(ContextProfile, claims.Profile())

		c.Next()
	}
}

// CurrentProfile returns the profile stored by JWTAuthMiddleware.
func CurrentProfile(c *gin.Context) (auth.Profile, bool) {
	v, ok := c.Get(ContextProfile)
	if !ok {
		return auth.Profile{}, false
	}
	p, ok := v.(auth.Profile)
	return p, ok
}

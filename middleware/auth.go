package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roomloop-backend/utils"
)

// Auth validates the bearer token and stores the caller identity in the
// request context under "user_id" and "username".
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		userID, username, err := utils.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("username", username)
		c.Next()
	}
}

// extractToken prefers the Authorization header; the ws handshake passes the
// token as a query parameter because browsers cannot set headers there.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// UserID reads the authenticated user's ID set by Auth.
func UserID(c *gin.Context) uint {
	id, _ := c.Get("user_id")
	userID, _ := id.(uint)
	return userID
}

// Username reads the authenticated user's name set by Auth.
func Username(c *gin.Context) string {
	name, _ := c.Get("username")
	username, _ := name.(string)
	return username
}

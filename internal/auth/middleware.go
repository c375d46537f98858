package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenHeader is the request header carrying the bearer token
const TokenHeader = "x-auth-token"

// userIDKey is the gin context key holding the authenticated user's ID
const userIDKey = "user_id"

// AuthMiddleware resolves the x-auth-token header to a user ID. Requests
// without a valid token never reach the handlers behind it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID set by AuthMiddleware
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

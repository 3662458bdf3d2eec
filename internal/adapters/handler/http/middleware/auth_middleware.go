package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	ContextUserIDKey    = "userID"
	ContextTokenKey     = "token"
)

// AuthMiddleware resolves the bearer token to a user id. A request without an
// Authorization header continues as a guest; a header that is present but
// invalid is rejected.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			c.Set(ContextUserIDKey, domain.GuestUserID)
			c.Next()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 || fields[0] != authorizationType {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := fields[1]

		userID, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextTokenKey, tokenString)

		c.Next()
	}
}

// GetUserID returns the resolved user id; domain.GuestUserID for guests.
func GetUserID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok
}

// GetToken returns the raw bearer token, empty for guests.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

// api/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-nlsql/internal/auth"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userId"

// AuthMiddleware creates a gin middleware for checking JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(auth.ErrUnauthorized)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			_ = c.Error(auth.ErrTokenMalformed)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header format must be Bearer {token}"})
			return
		}

		userID, err := auth.ValidateJWT(strings.TrimSpace(parts[1]), jwtSecret)
		if err != nil {
			customLog.Printf("AuthMiddleware: Token validation failed: %v", err)
			errMsg := "Invalid token"
			if errors.Is(err, auth.ErrTokenMalformed) || errors.Is(err, auth.ErrTokenExpired) {
				errMsg = err.Error()
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

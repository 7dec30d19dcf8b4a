package httpapi

import (
	"net/http"
	"strings"

	"github.com/avolkovs/accountd/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const accountIDKey = "accountID"

// authMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the token's account id in the request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization header format"})
			c.Abort()
			return
		}

		accountID, err := auth.GetAccountIDFromToken(parts[1], s.jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

// GetAccountID returns the authenticated account id stored by authMiddleware.
func GetAccountID(c *gin.Context) (string, bool) {
	v, exists := c.Get(accountIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

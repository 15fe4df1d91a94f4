package middleware

import (
	"errors"
	"net/http"
	"strings"

	"taskmanager/internal/domain"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth verifies the bearer token and stores the user id in the gin context
// under "user_id". Missing or invalid tokens are rejected with 401 before any
// handler logic runs.
func Auth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization required")
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "authorization header must be a bearer token")
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				abortUnauthorized(c, "session expired, please log in again")
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	AuthFailures.WithLabelValues(c.FullPath()).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
	})
}

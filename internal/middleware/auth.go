package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hoshizora/task-sharing-api/internal/constants"
	apierrors "github.com/hoshizora/task-sharing-api/internal/errors"
	"github.com/hoshizora/task-sharing-api/internal/identity"
)

const bearerPrefix = "Bearer "

// RequireAuth verifies the bearer token and stores the authenticated
// identity in the request context. Handlers never see unauthenticated calls.
func RequireAuth(provider *identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		id, err := provider.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, id.UserID)
		c.Set(constants.ContextKeyUserEmail, id.Email)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUserEmail retrieves the current user's email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(constants.ContextKeyUserEmail)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
)

// RequireAuth rejects requests whose session carries no user. The user ID is
// copied into the gin context so handlers and the request logger can read it.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID, ok := toUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID stored by RequireAuth
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(v)
}

// toUserID accepts the integer shapes a session codec may hand back
func toUserID(v interface{}) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id != 0
	case uint:
		return uint64(id), id != 0
	case int64:
		return uint64(id), id > 0
	case int:
		return uint64(id), id > 0
	default:
		return 0, false
	}
}

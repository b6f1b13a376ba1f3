package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
)

// RequireIDParam parses the :id path parameter and stores it in the context.
// Existence checks are left to the services so every route reports not-found
// the same way.
func RequireIDParam(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+resource+" ID")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyResourceID, id)
		c.Next()
	}
}

// GetResourceID retrieves the ID stored by RequireIDParam
func GetResourceID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyResourceID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/middleware"
)

// Accepted date layouts, most specific first
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// fieldViolation is one failed binding rule, reported in the error details
type fieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// bindJSON decodes the request body into req. On failure it writes a 400 whose
// details list the violated binding rules, and reports false.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}

	violations := make([]fieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, fieldViolation{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", violations)
	return false
}

// resourceID reads the ID parsed by middleware.RequireIDParam
func resourceID(c *gin.Context, resource string) (uint64, bool) {
	id, ok := middleware.GetResourceID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid "+resource+" ID")
		return 0, false
	}
	return id, true
}

// requiredQueryID parses a mandatory numeric query parameter
func requiredQueryID(c *gin.Context, key string) (uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		apierrors.BadRequest(c, key+" is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key)
		return 0, false
	}
	return id, true
}

// optionalQueryID parses a numeric query parameter that may be absent
func optionalQueryID(c *gin.Context, key string) (*uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &id, true
}

// parseDate accepts RFC 3339 timestamps and plain dates. A nil input yields nil.
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", field)
}

package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/constants"
)

// PaginationParams selects one page of a list query. A zero Limit means no paging.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// NewPaginationParams clamps page and limit to the allowed bounds and derives the offset
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams reads page and limit (or page_size) from the query string.
// Malformed values fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	rawLimit := c.Query("limit")
	if rawLimit == "" {
		rawLimit = c.Query("page_size")
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		limit = constants.DefaultPageSize
	}

	return NewPaginationParams(page, limit)
}

// TotalPages returns how many pages of size limit hold total rows
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

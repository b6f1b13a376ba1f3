package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/sprint-tracker-api/internal/constants"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{"defaults", "", PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{"explicit", "page=3&limit=10", PaginationParams{Page: 3, Limit: 10, Offset: 20}},
		{"page_size alias", "page=2&page_size=5", PaginationParams{Page: 2, Limit: 5, Offset: 5}},
		{"limit too large", "limit=1000", PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{"garbage", "page=x&limit=y", PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{"negative page", "page=-4&limit=10", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			assert.Equal(t, tt.want, GetPaginationParams(c))
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))
}

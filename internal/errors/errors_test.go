package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
)

func TestRespondWithServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", services.ErrSprintNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", services.ErrTaskNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"invalid argument", services.ErrInvalidPrefix, http.StatusBadRequest, ErrCodeInvalidInput},
		{"invalid state", services.ErrSprintClosed, http.StatusUnprocessableEntity, ErrCodeInvalidOperation},
		{"conflict", services.ErrEpicHasTasks, http.StatusConflict, ErrCodeConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)

			RespondWithServiceError(c, tt.err)

			require.Equal(t, tt.wantCode, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Code)
		})
	}
}

func TestRespondWithServiceError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)

	RespondWithServiceError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))

	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

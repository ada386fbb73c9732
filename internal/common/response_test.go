package common

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
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", Validation("Invalid slug"), http.StatusBadRequest, "BAD_REQUEST", "Invalid slug"},
		{"not found", NotFound("Draft not found"), http.StatusNotFound, "NOT_FOUND", "Draft not found"},
		{"post not found wrapped", fmt.Errorf("read: %w", ErrPostNotFound), http.StatusNotFound, "NOT_FOUND", "Not found"},
		{"conflict", Conflict("Post already exists"), http.StatusConflict, "CONFLICT", "Post already exists"},
		{"unauthorized", Unauthorized("Unauthorized"), http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"},
		{"misconfigured", Misconfigured("Server not configured: ADMIN_TOKEN is missing"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Server not configured: ADMIN_TOKEN is missing"},
		{"storage", Storage("Failed to write post", errors.New("disk full")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Failed to write post"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("save: %w", Storage("Failed to write post", cause))

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Failed to write post: timeout", errors.Unwrap(err).Error())
}

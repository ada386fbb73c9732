package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairusuo/blog-backend/internal/common"
)

func adminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminToken(secret))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAdminToken_Header(t *testing.T) {
	r := adminRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AdminTokenHeader, "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminToken_Bearer(t *testing.T) {
	r := adminRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminToken_Rejected(t *testing.T) {
	r := adminRouter("s3cret")

	for _, token := range []string{"", "wrong", "s3cret "} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if token != "" {
			req.Header.Set(AdminTokenHeader, token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, "token %q", token)
		var body common.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Unauthorized", body.Error.Message)
	}
}

func TestAdminToken_Misconfigured(t *testing.T) {
	r := adminRouter("")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AdminTokenHeader, "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ADMIN_TOKEN is missing")
}

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
)

// AdminTokenHeader carries the shared admin secret
const AdminTokenHeader = "X-Admin-Token"

// AdminToken guards the admin API with a shared secret read from
// X-Admin-Token or an Authorization bearer token.
func AdminToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			common.AbortWithError(c, http.StatusInternalServerError, "Server not configured: ADMIN_TOKEN is missing")
			return
		}

		token := c.GetHeader(AdminTokenHeader)
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			common.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Next()
	}
}

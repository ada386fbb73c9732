package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/middleware"
	"github.com/pairusuo/blog-backend/pkg/i18n"
)

// parseLocale validates raw and writes a 400 when it is not a known locale.
// An empty value yields the default locale.
func parseLocale(c *gin.Context, raw string) (i18n.Locale, bool) {
	locale, ok := i18n.ParseLocale(raw)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, msgInvalidLocale)
		return "", false
	}
	return locale, true
}

// readerLocale prefers the explicit query value and falls back to the
// locale negotiated from Accept-Language
func readerLocale(c *gin.Context, raw string) (i18n.Locale, bool) {
	if strings.TrimSpace(raw) == "" {
		return middleware.GetLocale(c), true
	}
	return parseLocale(c, raw)
}

// requireSlug validates an addressing slug and writes a 400 on failure
func requireSlug(c *gin.Context, raw string) (string, bool) {
	slug := strings.Trim(strings.TrimSpace(raw), "/")
	if slug == "" {
		common.ErrorResponse(c, http.StatusBadRequest, msgMissingSlug)
		return "", false
	}
	if !domain.ValidateSlug(slug) {
		common.ErrorResponse(c, http.StatusBadRequest, msgInvalidSlug)
		return "", false
	}
	return slug, true
}

// bindJSON binds the request body and writes a 400 on failure
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, bindMessage(err))
		return false
	}
	return true
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/pkg/i18n"
)

const (
	localeKey    = "locale"
	localeCookie = "locale"
)

// I18n resolves the reader's locale and stores it in the gin context.
// Order: ?locale= query, then the locale cookie set by the site's language
// switcher, then Accept-Language. Unknown values are skipped here; handlers
// that take an explicit locale reject them.
func I18n() gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := negotiateLocale(c)
		c.Set(localeKey, locale)
		c.Header("Content-Language", string(locale))
		c.Writer.Header().Add("Vary", "Accept-Language")
		c.Next()
	}
}

func negotiateLocale(c *gin.Context) i18n.Locale {
	if raw := c.Query("locale"); raw != "" {
		if l, ok := i18n.ParseLocale(raw); ok {
			return l
		}
	}
	if raw, err := c.Cookie(localeCookie); err == nil && raw != "" {
		if l, ok := i18n.ParseLocale(raw); ok {
			return l
		}
	}
	return i18n.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
}

// GetLocale returns the locale set by I18n, or the default locale
func GetLocale(c *gin.Context) i18n.Locale {
	if v, exists := c.Get(localeKey); exists {
		if locale, ok := v.(i18n.Locale); ok {
			return locale
		}
	}
	return i18n.DefaultLocale
}

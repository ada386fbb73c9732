package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/domain"
)

const (
	auditActionKey = "audit_action"
	auditLocaleKey = "audit_locale"
	auditSlugKey   = "audit_slug"
)

// AuditRecorder persists audit entries (implemented by service.AuditService)
type AuditRecorder interface {
	Record(entry *domain.AuditLog)
}

// SetAuditTarget names the action and post a handler is working on
func SetAuditTarget(c *gin.Context, action, locale, slug string) {
	c.Set(auditActionKey, action)
	c.Set(auditLocaleKey, locale)
	c.Set(auditSlugKey, slug)
}

// Audit records every state-changing request once the handler has run
func Audit(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action := c.GetString(auditActionKey)
		if action == "" {
			action = "rejected"
		}
		recorder.Record(&domain.AuditLog{
			Action:    action,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Locale:    c.GetString(auditLocaleKey),
			Slug:      c.GetString(auditSlugKey),
			Status:    c.Writer.Status(),
			ClientIP:  c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
			RequestID: GetRequestID(c),
		})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

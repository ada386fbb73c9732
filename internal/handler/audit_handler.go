package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/service"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
)

// AuditHandler lists recorded admin writes
type AuditHandler struct {
	service service.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /api/admin/audit?action=publish&page=1&pageSize=20
func (h *AuditHandler) List(c *gin.Context) {
	page, pageSize := ginutil.Page(c, 20)

	logs, total, err := h.service.List(c.Request.Context(), c.Query("action"), page, pageSize)
	if err != nil {
		common.HandleError(c, common.Storage("Failed to list audit logs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
		"logs":     logs,
	})
}

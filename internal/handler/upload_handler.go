package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/middleware"
	"github.com/pairusuo/blog-backend/internal/service"
)

// ActionUpload names image uploads in the audit log
const ActionUpload = "upload"

// UploadHandler handles editor image uploads
type UploadHandler struct {
	service service.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service service.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload godoc
// @Summary      Upload an image
// @Description  Stores the image in object storage, falling back to local disk.
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     AdminToken
// @Param        file    formData  file    true   "Image file"
// @Param        locale  formData  string  false  "zh or en"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  common.ErrorBody
// @Failure      401     {object}  common.ErrorBody
// @Router       /admin/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	locale, ok := parseLocale(c, c.PostForm("locale"))
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "No file")
		return
	}

	res, err := h.service.Upload(c.Request.Context(), file, string(locale))
	if err != nil {
		common.HandleError(c, err)
		return
	}
	middleware.SetAuditTarget(c, ActionUpload, string(locale), res.Key)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"path":    res.Path,
		"url":     res.URL,
		"key":     res.Key,
		"storage": res.Storage,
		"locale":  res.Locale,
	})
}

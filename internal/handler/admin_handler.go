package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/middleware"
	"github.com/pairusuo/blog-backend/internal/service"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
)

// Default page sizes of the admin listings
const (
	defaultPostsPageSize  = 10
	defaultDraftsPageSize = 50
)

// AdminHandler handles the post and draft endpoints of the admin API
type AdminHandler struct {
	service service.PostService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service service.PostService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Publish godoc
// @Summary      Create or publish a post
// @Description  Saves a new post, or overwrites an existing draft. A bare slug gets a yyyy/mm/ prefix.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      domain.CreatePostRequest  true  "Post to save"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  common.ErrorBody
// @Failure      401      {object}  common.ErrorBody
// @Failure      409      {object}  common.ErrorBody
// @Router       /admin/publish [post]
func (h *AdminHandler) Publish(c *gin.Context) {
	var req domain.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	locale, ok := parseLocale(c, req.Locale)
	if !ok {
		return
	}

	res, err := h.service.Create(c.Request.Context(), locale, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	action := service.ActionCreate
	if !res.Draft {
		action = service.ActionPublish
	}
	middleware.SetAuditTarget(c, action, string(locale), res.Slug)

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"path":  res.Path,
		"url":   res.URL,
		"slug":  res.Slug,
		"draft": res.Draft,
	})
}

// GetDrafts godoc
// @Summary      List drafts or read one draft
// @Description  With a slug it returns that draft, otherwise one page of the draft listing.
// @Tags         admin
// @Produce      json
// @Security     AdminToken
// @Param        locale    query     string  false  "zh or en"  default(zh)
// @Param        slug      query     string  false  "Draft slug"
// @Param        page      query     int     false  "Page number"  default(1)
// @Param        pageSize  query     int     false  "Page size"  default(50)
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  common.ErrorBody
// @Failure      404       {object}  common.ErrorBody
// @Router       /admin/drafts [get]
func (h *AdminHandler) GetDrafts(c *gin.Context) {
	locale, ok := parseLocale(c, c.Query("locale"))
	if !ok {
		return
	}

	if raw := c.Query("slug"); raw != "" {
		slug, ok := requireSlug(c, raw)
		if !ok {
			return
		}
		draft, err := h.service.GetDraft(c.Request.Context(), locale, slug)
		if err != nil {
			common.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "draft": draft})
		return
	}

	page, pageSize := ginutil.Page(c, defaultDraftsPageSize)
	drafts, total, err := h.service.ListDrafts(c.Request.Context(), locale, page, pageSize)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"drafts":   drafts,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// UpdateDraft godoc
// @Summary      Update a draft
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      domain.UpdateDraftRequest  true  "Fields to change"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  common.ErrorBody
// @Failure      404      {object}  common.ErrorBody
// @Router       /admin/drafts [put]
func (h *AdminHandler) UpdateDraft(c *gin.Context) {
	var req domain.UpdateDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	locale, ok := parseLocale(c, req.Locale)
	if !ok {
		return
	}
	middleware.SetAuditTarget(c, service.ActionUpdateDraft, string(locale), req.Slug)

	res, err := h.service.UpdateDraft(c.Request.Context(), locale, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "path": res.Path, "slug": res.Slug})
}

// DraftAction godoc
// @Summary      Publish a draft
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      domain.DraftActionRequest  true  "Action (publish)"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  common.ErrorBody
// @Failure      404      {object}  common.ErrorBody
// @Router       /admin/drafts [post]
func (h *AdminHandler) DraftAction(c *gin.Context) {
	var req domain.DraftActionRequest
	if !bindJSON(c, &req) {
		return
	}
	locale, ok := parseLocale(c, req.Locale)
	if !ok {
		return
	}
	middleware.SetAuditTarget(c, service.ActionPublish, string(locale), req.Slug)

	res, err := h.service.Publish(c.Request.Context(), locale, req.Slug)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "path": res.Path, "url": res.URL, "slug": res.Slug})
}

// DeleteDraft godoc
// @Summary      Delete a draft
// @Tags         admin
// @Produce      json
// @Security     AdminToken
// @Param        locale  query     string  false  "zh or en"  default(zh)
// @Param        slug    query     string  true   "Draft slug"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  common.ErrorBody
// @Failure      404     {object}  common.ErrorBody
// @Router       /admin/drafts [delete]
func (h *AdminHandler) DeleteDraft(c *gin.Context) {
	locale, ok := parseLocale(c, c.Query("locale"))
	if !ok {
		return
	}
	slug, ok := requireSlug(c, c.Query("slug"))
	if !ok {
		return
	}
	middleware.SetAuditTarget(c, service.ActionDeleteDraft, string(locale), slug)

	res, err := h.service.DeleteDraft(c.Request.Context(), locale, slug)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "path": res.Path, "slug": res.Slug})
}

// ListPosts godoc
// @Summary      List published posts
// @Tags         admin
// @Produce      json
// @Security     AdminToken
// @Param        locale    query     string  false  "zh or en"  default(zh)
// @Param        page      query     int     false  "Page number"  default(1)
// @Param        pageSize  query     int     false  "Page size, at most 50"  default(10)
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  common.ErrorBody
// @Router       /admin/posts [get]
func (h *AdminHandler) ListPosts(c *gin.Context) {
	locale, ok := parseLocale(c, c.Query("locale"))
	if !ok {
		return
	}
	page, pageSize := ginutil.Page(c, defaultPostsPageSize)

	posts, total, err := h.service.ListPublished(c.Request.Context(), locale, page, pageSize)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
		"posts":    posts,
	})
}

// DeletePost godoc
// @Summary      Delete a published post
// @Tags         admin
// @Produce      json
// @Security     AdminToken
// @Param        locale  query     string  false  "zh or en"  default(zh)
// @Param        slug    query     string  true   "Post slug"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  common.ErrorBody
// @Failure      404     {object}  common.ErrorBody
// @Router       /admin/posts [delete]
func (h *AdminHandler) DeletePost(c *gin.Context) {
	locale, ok := parseLocale(c, c.Query("locale"))
	if !ok {
		return
	}
	slug, ok := requireSlug(c, c.Query("slug"))
	if !ok {
		return
	}
	middleware.SetAuditTarget(c, service.ActionDeletePublished, string(locale), slug)

	res, err := h.service.DeletePublished(c.Request.Context(), locale, slug)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "path": res.Path, "slug": res.Slug})
}

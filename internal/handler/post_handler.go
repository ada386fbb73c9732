package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/service"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
)

// PostHandler serves published posts to readers
type PostHandler struct {
	service service.PublicService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service service.PublicService) *PostHandler {
	return &PostHandler{service: service}
}

// ListPosts godoc
// @Summary      List published posts
// @Tags         posts
// @Produce      json
// @Param        locale    query     string  false  "zh or en; defaults from Accept-Language"
// @Param        page      query     int     false  "Page number"  default(1)
// @Param        pageSize  query     int     false  "Page size"  default(10)
// @Success      200       {object}  domain.PostPage
// @Failure      400       {object}  common.ErrorBody
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	locale, ok := readerLocale(c, c.Query("locale"))
	if !ok {
		return
	}
	page, pageSize := ginutil.Page(c, defaultPostsPageSize)

	result, err := h.service.ListPosts(c.Request.Context(), locale, page, pageSize)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPost godoc
// @Summary      Read a published post
// @Tags         posts
// @Produce      json
// @Param        locale  path      string  true  "zh or en"
// @Param        slug    path      string  true  "Post slug, may contain /"
// @Success      200     {object}  domain.PostDetail
// @Failure      400     {object}  common.ErrorBody
// @Failure      404     {object}  common.ErrorBody
// @Router       /posts/{locale}/{slug} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	locale, ok := parseLocale(c, c.Param("locale"))
	if !ok {
		return
	}
	slug, ok := requireSlug(c, c.Param("slug"))
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), locale, slug)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

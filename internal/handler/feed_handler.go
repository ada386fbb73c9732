package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/service"
)

const feedCacheControl = "s-maxage=300, stale-while-revalidate=300"

// FeedHandler serves the RSS feed, sitemap and robots.txt
type FeedHandler struct {
	service service.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(service service.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// RSS godoc
// @Summary  RSS feed of the newest posts
// @Tags     feeds
// @Produce  xml
// @Success  200  {string}  string
// @Router   /rss.xml [get]
func (h *FeedHandler) RSS(c *gin.Context) {
	rss, err := h.service.RSS(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", feedCacheControl)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// Sitemap godoc
// @Summary  Sitemap of static pages and published posts
// @Tags     feeds
// @Produce  xml
// @Success  200  {string}  string
// @Router   /sitemap.xml [get]
func (h *FeedHandler) Sitemap(c *gin.Context) {
	body, err := h.service.Sitemap(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", feedCacheControl)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Robots handles GET /robots.txt
func (h *FeedHandler) Robots(c *gin.Context) {
	c.Header("Cache-Control", feedCacheControl)
	c.String(http.StatusOK, h.service.Robots())
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/service"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
)

// SearchHandler handles full-text search over published posts
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search godoc
// @Summary      Search published posts
// @Tags         search
// @Produce      json
// @Param        q         query     string  true   "Keywords"
// @Param        locale    query     string  false  "zh or en"
// @Param        page      query     int     false  "Page number"  default(1)
// @Param        pageSize  query     int     false  "Page size"  default(10)
// @Success      200       {object}  domain.SearchResult
// @Failure      400       {object}  common.ErrorBody
// @Router       /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	locale, ok := readerLocale(c, c.Query("locale"))
	if !ok {
		return
	}
	page, pageSize := ginutil.Page(c, defaultPostsPageSize)

	result, err := h.searchService.Search(c.Request.Context(), locale, c.Query("q"), page, pageSize)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

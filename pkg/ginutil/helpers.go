package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxPageSize caps every paginated listing
const MaxPageSize = 50

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// Page reads page and pageSize. page below 1 becomes 1, pageSize is clamped to [1, MaxPageSize].
func Page(c *gin.Context, defaultSize int) (page, pageSize int) {
	page = QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = ClampPageSize(QueryInt(c, "pageSize", defaultSize))
	return page, pageSize
}

// ClampPageSize bounds n to [1, MaxPageSize]
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Paginate returns the window of items for a 1-based page
func Paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

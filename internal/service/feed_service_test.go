package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeed(t *testing.T) FeedService {
	t.Helper()
	public, _, _ := seededPublic(t)
	svc := NewFeedService(public, SiteInfo{URL: "https://blog.example.com/", Title: "Example", Author: "pairusuo"}, cst)
	svc.(*feedService).now = func() time.Time { return time.Date(2025, 8, 4, 0, 0, 0, 0, cst) }
	return svc
}

func TestRSS(t *testing.T) {
	svc := newFeed(t)

	rss, err := svc.RSS(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rss, "<title>Example</title>")
	assert.Contains(t, rss, "https://blog.example.com/en/blog/2025/08/live")
	assert.Contains(t, rss, "个人博客")
	assert.NotContains(t, rss, "WIP")
	assert.Less(t, strings.Index(rss, "2025/08/live"), strings.Index(rss, "2025/08/older"))
}

func TestSitemap(t *testing.T) {
	svc := newFeed(t)

	out, err := svc.Sitemap(context.Background())
	require.NoError(t, err)
	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, xml, "<loc>https://blog.example.com/en/about</loc>")
	assert.Contains(t, xml, "<loc>https://blog.example.com/en/blog/2025/08/older</loc>")
	assert.Contains(t, xml, "<lastmod>2025-08-02T09:00:00+08:00</lastmod>")
	assert.NotContains(t, xml, "wip")
	assert.Equal(t, len(staticPages)+2, strings.Count(xml, "<url>"))
}

func TestRobots(t *testing.T) {
	svc := newFeed(t)

	robots := svc.Robots()
	assert.Contains(t, robots, "User-Agent: *\nAllow: /\n")
	assert.Contains(t, robots, "Disallow: /api/admin/\n")
	assert.Contains(t, robots, "Disallow: /zh/admin/\n")
	assert.Contains(t, robots, "Sitemap: https://blog.example.com/sitemap.xml\n")
}

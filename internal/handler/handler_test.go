package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairusuo/blog-backend/internal/middleware"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/internal/service"
	"github.com/pairusuo/blog-backend/pkg/cache"
	"github.com/pairusuo/blog-backend/pkg/storage"
)

var cst = time.FixedZone("CST", 8*60*60)

type testServer struct {
	router *gin.Engine
	store  *storage.MemoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	store := storage.NewMemory(nil)
	repo := repository.NewPostRepository(store, cst)
	mem := cache.NewMemoryStore()
	posts := service.NewPostService(repo, mem, nil, cst, time.Minute)
	public := service.NewPublicService(repo, mem, time.Minute)
	feeds := service.NewFeedService(public, service.SiteInfo{URL: "https://blog.example.com", Title: "Blog"}, cst)
	local, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	uploads := service.NewUploadService(nil, local, 1<<20)

	admin := NewAdminHandler(posts)
	upload := NewUploadHandler(uploads)
	reader := NewPostHandler(public)
	feed := NewFeedHandler(feeds)

	r := gin.New()
	r.Use(middleware.I18n())
	r.POST("/api/admin/publish", admin.Publish)
	r.GET("/api/admin/drafts", admin.GetDrafts)
	r.PUT("/api/admin/drafts", admin.UpdateDraft)
	r.POST("/api/admin/drafts", admin.DraftAction)
	r.DELETE("/api/admin/drafts", admin.DeleteDraft)
	r.GET("/api/admin/posts", admin.ListPosts)
	r.DELETE("/api/admin/posts", admin.DeletePost)
	r.POST("/api/admin/upload", upload.Upload)
	r.GET("/api/posts", reader.ListPosts)
	r.GET("/api/posts/:locale/*slug", reader.GetPost)
	r.GET("/rss.xml", feed.RSS)
	r.GET("/robots.txt", feed.Robots)

	return &testServer{router: r, store: store}
}

func (s *testServer) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func errorMessage(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func TestPublish_DraftThenLive(t *testing.T) {
	s := newTestServer(t)

	w, out := s.do(t, http.MethodPost, "/api/admin/publish", gin.H{
		"locale": "en", "title": "Hello", "slug": "2025/08/hello-world", "content": "Body", "draft": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "posts/en/2025/08/hello-world.mdx", out["path"])
	assert.Nil(t, out["url"])
	assert.Equal(t, true, out["draft"])

	w, out = s.do(t, http.MethodGet, "/api/admin/drafts?locale=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, out["total"])
	assert.EqualValues(t, 50, out["pageSize"])

	w, out = s.do(t, http.MethodPost, "/api/admin/drafts", gin.H{"locale": "en", "slug": "2025/08/hello-world", "action": "publish"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/en/blog/2025/08/hello-world", out["url"])

	w, out = s.do(t, http.MethodGet, "/api/admin/posts?locale=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, out["total"])
	assert.EqualValues(t, 10, out["pageSize"])
	posts := out["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "2025/08/hello-world", posts[0].(map[string]any)["slug"])

	w, _ = s.do(t, http.MethodPost, "/api/admin/publish", gin.H{
		"locale": "en", "title": "Again", "slug": "2025/08/hello-world", "content": "x",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, out = s.do(t, http.MethodGet, "/api/posts/en/2025/08/hello-world", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello", out["title"])
	assert.Contains(t, out["html"], "<p>Body</p>")
}

func TestPublish_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
		msg  string
	}{
		{"invalid json", "{not json", msgInvalidBody},
		{"invalid locale", gin.H{"locale": "fr", "title": "t", "slug": "s", "content": "c"}, msgInvalidLocale},
		{"missing fields", gin.H{"locale": "en", "slug": "s"}, "Missing required fields: title, slug, content"},
		{"traversal", gin.H{"title": "t", "slug": "../../etc", "content": "c"}, "Invalid slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := s.do(t, http.MethodPost, "/api/admin/publish", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, errorMessage(out))
		})
	}
	assert.Equal(t, 0, s.store.Len())
}

func TestDrafts_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		msg    string
	}{
		{"put missing slug", http.MethodPut, "/api/admin/drafts", gin.H{"locale": "en"}, msgMissingSlug},
		{"put invalid slug", http.MethodPut, "/api/admin/drafts", gin.H{"slug": "Bad Slug"}, msgInvalidSlug},
		{"put invalid locale", http.MethodPut, "/api/admin/drafts", gin.H{"locale": "de", "slug": "a"}, msgInvalidLocale},
		{"post invalid action", http.MethodPost, "/api/admin/drafts", gin.H{"slug": "a", "action": "archive"}, msgInvalidAction},
		{"delete missing slug", http.MethodDelete, "/api/admin/drafts?locale=en", nil, msgMissingSlug},
		{"get invalid locale", http.MethodGet, "/api/admin/drafts?locale=jp", nil, msgInvalidLocale},
		{"get invalid slug", http.MethodGet, "/api/admin/drafts?slug=a/../b", nil, msgInvalidSlug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := s.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, errorMessage(out))
		})
	}
}

func TestDrafts_WrongState(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/admin/publish", gin.H{"title": "Live", "slug": "2025/08/live", "content": "x"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/admin/publish", gin.H{"title": "WIP", "slug": "2025/08/wip", "content": "x", "draft": true})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/admin/drafts?slug=2025/08/live", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out := s.do(t, http.MethodDelete, "/api/admin/posts?slug=2025/08/wip", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete draft via posts endpoint", errorMessage(out))

	w, _ = s.do(t, http.MethodPost, "/api/admin/drafts", gin.H{"slug": "2025/08/live", "action": "publish"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/posts/zh/2025/08/wip", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 2, s.store.Len())

	w, out = s.do(t, http.MethodDelete, "/api/admin/posts?locale=zh&slug=2025/08/live", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts/zh/2025/08/live.mdx", out["path"])
	assert.Equal(t, 1, s.store.Len())
}

func TestDrafts_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/admin/publish", gin.H{
		"locale": "zh", "title": "草稿", "slug": "2025/08/notes", "summary": "摘要", "content": "正文", "draft": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, out := s.do(t, http.MethodPut, "/api/admin/drafts", gin.H{"slug": "2025/08/notes", "content": "新正文"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "posts/zh/2025/08/notes.mdx", out["path"])

	w, out = s.do(t, http.MethodGet, "/api/admin/drafts?slug=2025/08/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	draft := out["draft"].(map[string]any)
	assert.Equal(t, "新正文", draft["content"])
	assert.Equal(t, "摘要", draft["summary"])
	assert.Equal(t, "草稿", draft["title"])
}

func TestPublicList_UsesAcceptLanguage(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/admin/publish", gin.H{"locale": "en", "title": "E", "slug": "2025/08/e", "content": "x"})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Accept-Language", "en-GB")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)

	w, out := s.do(t, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["total"])
}

func TestFeeds(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/rss.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, feedCacheControl, w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/rss+xml")

	w, _ = s.do(t, http.MethodGet, "/robots.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /api/admin/")
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("locale", "en"))
	part, err := mw.CreateFormFile("file", "pic.gif")
	require.NoError(t, err)
	_, err = part.Write([]byte("GIF89a\x01\x00\x01\x00"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "local", out["storage"])
	assert.Equal(t, "en", out["locale"])
	assert.True(t, strings.HasPrefix(out["url"].(string), "/uploads/"))
	assert.True(t, strings.HasSuffix(out["url"].(string), ".gif"))

	req = httptest.NewRequest(http.MethodPost, "/api/admin/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

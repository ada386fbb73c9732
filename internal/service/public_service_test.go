package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/pkg/cache"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	"github.com/pairusuo/blog-backend/pkg/storage"
)

func mdx(header, body string) string {
	return "---\n" + header + "---\n\n" + body + "\n"
}

func seededPublic(t *testing.T) (PublicService, *storage.MemoryStorage, *cache.MemoryStore) {
	t.Helper()
	store := storage.NewMemory(map[string]string{
		"posts/en/2025/08/live.mdx": mdx(
			"title: \"Live\"\nsummary: \"first\"\npublishedAt: \"2025-08-02 09:00:00\"\ndraft: false\n",
			"# Heading\n\nSome *text*."),
		"posts/en/2025/08/older.mdx": mdx(
			"title: \"Older\"\npublishedAt: \"2025-07-01 09:00:00\"\n",
			"old"),
		"posts/en/2025/08/wip.mdx": mdx(
			"title: \"WIP\"\npublishedAt: \"2025-08-03 09:00:00\"\ndraft: true\n",
			"secret"),
	})
	mem := cache.NewMemoryStore()
	repo := repository.NewPostRepository(store, cst)
	return NewPublicService(repo, mem, time.Minute), store, mem
}

func TestPublicListPosts(t *testing.T) {
	svc, _, _ := seededPublic(t)

	page, err := svc.ListPosts(context.Background(), i18n.LocaleEn, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "2025/08/live", page.Posts[0].Slug)
	assert.Equal(t, "2025/08/older", page.Posts[1].Slug)

	page, err = svc.ListPosts(context.Background(), i18n.LocaleEn, 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "2025/08/older", page.Posts[0].Slug)

	page, err = svc.ListPosts(context.Background(), i18n.LocaleZh, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Posts)
}

func TestPublicGetPost(t *testing.T) {
	svc, _, mem := seededPublic(t)
	ctx := context.Background()

	detail, err := svc.GetPost(ctx, i18n.LocaleEn, "2025/08/live")
	require.NoError(t, err)
	assert.Equal(t, "Live", detail.Title)
	assert.Contains(t, detail.HTML, "<em>text</em>")
	assert.Contains(t, detail.HTML, `id="heading"`)
	assert.Equal(t, "/en/blog/2025/08/live", detail.URL)
	assert.Equal(t, 1, mem.Len())

	_, err = svc.GetPost(ctx, i18n.LocaleEn, "2025/08/wip")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Post not found", common.MessageOf(err))

	_, err = svc.GetPost(ctx, i18n.LocaleEn, "2025/08/none")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPublicGetPost_ServedFromCacheUntilInvalidated(t *testing.T) {
	svc, store, mem := seededPublic(t)
	ctx := context.Background()

	_, err := svc.GetPost(ctx, i18n.LocaleEn, "2025/08/live")
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "posts/en/2025/08/live.mdx",
		[]byte(mdx("title: \"Renamed\"\npublishedAt: \"2025-08-02 09:00:00\"\n", "x"))))

	detail, err := svc.GetPost(ctx, i18n.LocaleEn, "2025/08/live")
	require.NoError(t, err)
	assert.Equal(t, "Live", detail.Title)

	require.NoError(t, invalidatePost(ctx, mem, i18n.LocaleEn, "2025/08/live"))

	detail, err = svc.GetPost(ctx, i18n.LocaleEn, "2025/08/live")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", detail.Title)
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |\n\nText[^1]\n\n[^1]: note\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "footnote")
}

package service

import (
	"context"
	"time"

	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/pkg/cache"
	"github.com/pairusuo/blog-backend/pkg/i18n"
)

// PostTag is the cache tag of a single post
func PostTag(locale i18n.Locale, slug string) string {
	return "post-" + string(locale) + "-" + slug
}

// ListTag is the cache tag of a locale's listing
func ListTag(locale i18n.Locale) string {
	return "posts-" + string(locale)
}

func listKey(locale i18n.Locale) string {
	return "posts:list:" + string(locale)
}

func detailKey(locale i18n.Locale, slug string) string {
	return "posts:detail:" + string(locale) + ":" + slug
}

// publishedList is the cached read of ListAllMeta
func publishedList(ctx context.Context, store cache.Store, repo repository.PostRepository, locale i18n.Locale, ttl time.Duration) ([]*domain.PostMeta, error) {
	return cache.Fetch(ctx, store, listKey(locale), ttl, []string{ListTag(locale)},
		func(ctx context.Context) ([]*domain.PostMeta, error) {
			return repo.ListAllMeta(ctx, locale)
		})
}

// invalidatePost drops every cached read that may include the post
func invalidatePost(ctx context.Context, store cache.Store, locale i18n.Locale, slug string) error {
	return cache.Invalidate(ctx, store, PostTag(locale, slug), ListTag(locale))
}

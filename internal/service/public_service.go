package service

import (
	"context"
	"errors"
	"time"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/pkg/cache"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
	"github.com/pairusuo/blog-backend/pkg/i18n"
)

// PublicService serves the read-only views of published posts
type PublicService interface {
	ListPosts(ctx context.Context, locale i18n.Locale, page, pageSize int) (*domain.PostPage, error)
	GetPost(ctx context.Context, locale i18n.Locale, slug string) (*domain.PostDetail, error)
	AllPublished(ctx context.Context, locale i18n.Locale) ([]*domain.PostMeta, error)
}

type publicService struct {
	repo  repository.PostRepository
	cache cache.Store
	ttl   time.Duration
}

// NewPublicService creates a PublicService reading through store
func NewPublicService(repo repository.PostRepository, store cache.Store, ttl time.Duration) PublicService {
	return &publicService{repo: repo, cache: store, ttl: ttl}
}

func (s *publicService) AllPublished(ctx context.Context, locale i18n.Locale) ([]*domain.PostMeta, error) {
	metas, err := publishedList(ctx, s.cache, s.repo, locale, s.ttl)
	if err != nil {
		return nil, common.Storage("Failed to list posts", err)
	}
	return metas, nil
}

func (s *publicService) ListPosts(ctx context.Context, locale i18n.Locale, page, pageSize int) (*domain.PostPage, error) {
	metas, err := s.AllPublished(ctx, locale)
	if err != nil {
		return nil, err
	}
	return &domain.PostPage{
		Posts:    ginutil.Paginate(metas, page, pageSize),
		Total:    len(metas),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetPost returns a published post with rendered HTML. Drafts are reported as missing.
func (s *publicService) GetPost(ctx context.Context, locale i18n.Locale, slug string) (*domain.PostDetail, error) {
	tags := []string{PostTag(locale, slug), ListTag(locale)}
	detail, err := cache.Fetch(ctx, s.cache, detailKey(locale, slug), s.ttl, tags,
		func(ctx context.Context) (*domain.PostDetail, error) {
			p, err := s.repo.ReadFull(ctx, locale, slug)
			if err != nil {
				return nil, err
			}
			if p.Draft {
				return nil, common.ErrPostNotFound
			}
			html, err := RenderMarkdown(p.Content)
			if err != nil {
				return nil, err
			}
			return &domain.PostDetail{
				PostMeta: p.PostMeta,
				Content:  p.Content,
				HTML:     html,
				URL:      domain.PublicURL(locale, slug),
			}, nil
		})
	if err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			return nil, common.NotFound("Post not found")
		}
		return nil, common.Storage("Failed to read post", err)
	}
	return detail, nil
}

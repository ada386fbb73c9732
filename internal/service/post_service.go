package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/pkg/cache"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/pairusuo/blog-backend/pkg/timeutil"
)

// Transition names recorded in metrics and audit logs
const (
	ActionCreate          = "create"
	ActionPublish         = "publish"
	ActionUpdateDraft     = "draft_update"
	ActionDeleteDraft     = "draft_delete"
	ActionDeletePublished = "post_delete"
)

// PostService drives the draft/publish lifecycle of posts
type PostService interface {
	Create(ctx context.Context, locale i18n.Locale, req *domain.CreatePostRequest) (*domain.WriteResult, error)
	UpdateDraft(ctx context.Context, locale i18n.Locale, req *domain.UpdateDraftRequest) (*domain.WriteResult, error)
	Publish(ctx context.Context, locale i18n.Locale, slug string) (*domain.WriteResult, error)
	DeleteDraft(ctx context.Context, locale i18n.Locale, slug string) (*domain.WriteResult, error)
	DeletePublished(ctx context.Context, locale i18n.Locale, slug string) (*domain.WriteResult, error)
	GetDraft(ctx context.Context, locale i18n.Locale, slug string) (*domain.DraftDetail, error)
	ListDrafts(ctx context.Context, locale i18n.Locale, page, pageSize int) ([]*domain.DraftSummary, int, error)
	ListPublished(ctx context.Context, locale i18n.Locale, page, pageSize int) ([]domain.PostSummary, int, error)
}

type postService struct {
	repo    repository.PostRepository
	cache   cache.Store
	indexer Indexer
	loc     *time.Location
	ttl     time.Duration
	now     func() time.Time
}

// NewPostService creates a PostService. cache and indexer may be nil.
func NewPostService(repo repository.PostRepository, store cache.Store, indexer Indexer, loc *time.Location, ttl time.Duration) PostService {
	if loc == nil {
		loc = time.UTC
	}
	return &postService{
		repo:    repo,
		cache:   store,
		indexer: indexer,
		loc:     loc,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *postService) stamp() (time.Time, string) {
	now := s.now().In(s.loc)
	return now, timeutil.Format(now, s.loc)
}

// Create writes a new post, or updates an existing draft in place.
// Creating over a published post is a conflict.
func (s *postService) Create(ctx context.Context, locale i18n.Locale, req *domain.CreatePostRequest) (*domain.WriteResult, error) {
	if strings.Contains(req.Slug, "..") {
		return nil, common.Validation("Invalid slug")
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	slug, slugErr := domain.SanitizeSlug(req.Slug)
	if title == "" || content == "" || slugErr != nil {
		return nil, common.Validation("Missing required fields: title, slug, content")
	}

	now, nowStr := s.stamp()
	slug = domain.WithMonthPrefix(slug, now)

	existing, err := s.repo.ReadFull(ctx, locale, slug)
	switch {
	case errors.Is(err, common.ErrPostNotFound):
		existing = nil
	case err != nil:
		return nil, common.Storage("Failed to write file", err)
	}

	var post *domain.Post
	if existing == nil {
		post = &domain.Post{
			PostMeta: domain.PostMeta{
				Title:       title,
				Slug:        slug,
				Summary:     strings.TrimSpace(req.Summary),
				Tags:        req.Tags,
				Cover:       strings.TrimSpace(req.Cover),
				Lang:        locale,
				CreatedAt:   nowStr,
				PublishedAt: nowStr,
				UpdatedAt:   nowStr,
				Draft:       req.Draft,
			},
			Content: content,
		}
	} else {
		if !existing.Draft {
			return nil, common.Conflict("Post already exists with the same slug")
		}
		post = existing
		post.Title = title
		if summary := strings.TrimSpace(req.Summary); summary != "" {
			post.Summary = summary
		}
		if req.Tags != nil {
			post.Tags = req.Tags
		}
		if cover := strings.TrimSpace(req.Cover); cover != "" {
			post.Cover = cover
		}
		post.Content = content
		if post.CreatedAt == "" {
			post.CreatedAt = firstNonEmpty(post.PublishedAt, nowStr)
		}
		post.Draft = req.Draft
		post.UpdatedAt = nowStr
		if !req.Draft || post.PublishedAt == "" {
			post.PublishedAt = nowStr
		}
	}

	if err := s.repo.Save(ctx, post); err != nil {
		return nil, common.Storage("Failed to write file", err)
	}

	action := ActionCreate
	if !post.Draft {
		action = ActionPublish
	}
	s.afterWrite(ctx, post, action)

	return s.result(post), nil
}

// UpdateDraft merges the non-nil fields of req into an existing draft
func (s *postService) UpdateDraft(ctx context.Context, locale i18n.Locale, req *domain.UpdateDraftRequest) (*domain.WriteResult, error) {
	post, err := s.loadDraft(ctx, locale, req.Slug, "Draft not found", common.Validation("Not a draft"))
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if post.Title == "" {
		post.Title = post.Slug
	}
	if req.Summary != nil {
		post.Summary = strings.TrimSpace(*req.Summary)
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.Cover != nil {
		post.Cover = strings.TrimSpace(*req.Cover)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	_, nowStr := s.stamp()
	post.Draft = true
	post.UpdatedAt = nowStr
	if post.PublishedAt == "" {
		post.PublishedAt = nowStr
	}
	if post.CreatedAt == "" {
		post.CreatedAt = post.PublishedAt
	}

	if err := s.repo.Save(ctx, post); err != nil {
		return nil, common.Storage("Failed to update draft", err)
	}
	s.afterWrite(ctx, post, ActionUpdateDraft)

	return s.result(post), nil
}

// Publish moves a draft live; publishedAt becomes the go-live time
func (s *postService) Publish(ctx context.Context, locale i18n.Locale, slug string) (*domain.WriteResult, error) {
	post, err := s.loadDraft(ctx, locale, slug, "Failed to publish draft: not found",
		common.NotFound("Already published; no draft found"))
	if err != nil {
		return nil, err
	}

	_, nowStr := s.stamp()
	post.Draft = false
	post.PublishedAt = nowStr
	post.UpdatedAt = nowStr
	if post.CreatedAt == "" {
		post.CreatedAt = nowStr
	}

	if err := s.repo.Save(ctx, post); err != nil {
		return nil, common.Storage("Failed to publish draft", err)
	}
	s.afterWrite(ctx, post, ActionPublish)

	return s.result(post), nil
}

// DeleteDraft hard-deletes a draft; published posts are refused
func (s *postService) DeleteDraft(ctx context.Context, locale i18n.Locale, slug string) (*domain.WriteResult, error) {
	post, err := s.loadDraft(ctx, locale, slug, "Draft not found", common.Validation("Not a draft"))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, locale, slug); err != nil {
		return nil, common.Storage("Failed to delete draft", err)
	}
	s.afterDelete(ctx, locale, slug, ActionDeleteDraft)

	return &domain.WriteResult{Path: post.Key(), Slug: slug, Draft: true}, nil
}

// DeletePublished hard-deletes a published post; drafts are refused
func (s *postService) DeletePublished(ctx context.Context, locale i18n.Locale, slug string) (*domain.WriteResult, error) {
	post, err := s.repo.ReadFull(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			return nil, common.NotFound("Post not found")
		}
		return nil, common.Storage("Failed to delete post", err)
	}
	if post.Draft {
		return nil, common.Validation("Cannot delete draft via posts endpoint")
	}

	if err := s.repo.Delete(ctx, locale, slug); err != nil {
		return nil, common.Storage("Failed to delete post", err)
	}
	s.afterDelete(ctx, locale, slug, ActionDeletePublished)

	return &domain.WriteResult{Path: post.Key(), Slug: slug}, nil
}

// GetDraft returns one draft with its body
func (s *postService) GetDraft(ctx context.Context, locale i18n.Locale, slug string) (*domain.DraftDetail, error) {
	post, err := s.loadDraft(ctx, locale, slug, "Failed to read draft: not found", common.NotFound("Not a draft"))
	if err != nil {
		return nil, err
	}
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.DraftDetail{
		Slug:        post.Slug,
		Title:       post.Title,
		Summary:     post.Summary,
		Tags:        tags,
		Cover:       post.Cover,
		Content:     post.Content,
		CreatedAt:   post.CreatedAt,
		PublishedAt: post.PublishedAt,
		UpdatedAt:   post.UpdatedAt,
	}, nil
}

// ListDrafts returns one page of drafts and the total count
func (s *postService) ListDrafts(ctx context.Context, locale i18n.Locale, page, pageSize int) ([]*domain.DraftSummary, int, error) {
	drafts, err := s.repo.ListDrafts(ctx, locale)
	if err != nil {
		return nil, 0, common.Storage("Failed to list drafts", err)
	}
	return ginutil.Paginate(drafts, page, pageSize), len(drafts), nil
}

// ListPublished returns one page of published posts and the total count
func (s *postService) ListPublished(ctx context.Context, locale i18n.Locale, page, pageSize int) ([]domain.PostSummary, int, error) {
	metas, err := publishedList(ctx, s.cache, s.repo, locale, s.ttl)
	if err != nil {
		return nil, 0, common.Storage("Failed to list posts", err)
	}

	window := ginutil.Paginate(metas, page, pageSize)
	out := make([]domain.PostSummary, 0, len(window))
	for _, m := range window {
		out = append(out, m.Summarize())
	}
	return out, len(metas), nil
}

// loadDraft reads a post that must be a draft. A missing post yields a
// NotFound error with missingMsg; a published post yields notDraft.
func (s *postService) loadDraft(ctx context.Context, locale i18n.Locale, slug, missingMsg string, notDraft error) (*domain.Post, error) {
	post, err := s.repo.ReadFull(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			return nil, common.NotFound(missingMsg)
		}
		return nil, common.Storage("Failed to read draft", err)
	}
	if !post.Draft {
		return nil, notDraft
	}
	return post, nil
}

func (s *postService) result(post *domain.Post) *domain.WriteResult {
	res := &domain.WriteResult{Path: post.Key(), Slug: post.Slug, Draft: post.Draft}
	if !post.Draft {
		url := domain.PublicURL(post.Lang, post.Slug)
		res.URL = &url
	}
	return res
}

func (s *postService) afterWrite(ctx context.Context, post *domain.Post, action string) {
	log := s.logger(post.Lang, post.Slug)
	s.invalidate(ctx, post.Lang, post.Slug, log)

	if s.indexer != nil {
		var err error
		if post.Draft {
			err = s.indexer.RemovePost(ctx, post.Lang, post.Slug)
		} else {
			err = s.indexer.IndexPost(ctx, post)
		}
		if err != nil {
			log.Warn().Err(err).Msg("search index update failed")
		}
	}

	postTransitionsTotal.WithLabelValues(action, string(post.Lang)).Inc()
	log.Info().Str("action", action).Bool("draft", post.Draft).Msg("post saved")
}

func (s *postService) afterDelete(ctx context.Context, locale i18n.Locale, slug, action string) {
	log := s.logger(locale, slug)
	s.invalidate(ctx, locale, slug, log)

	if s.indexer != nil {
		if err := s.indexer.RemovePost(ctx, locale, slug); err != nil {
			log.Warn().Err(err).Msg("search index removal failed")
		}
	}

	postTransitionsTotal.WithLabelValues(action, string(locale)).Inc()
	log.Info().Str("action", action).Msg("post deleted")
}

func (s *postService) invalidate(ctx context.Context, locale i18n.Locale, slug string, log zerolog.Logger) {
	if err := invalidatePost(ctx, s.cache, locale, slug); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func (s *postService) logger(locale i18n.Locale, slug string) zerolog.Logger {
	return pkglogger.WithPost(string(locale), slug)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

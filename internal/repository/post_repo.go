package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/pairusuo/blog-backend/pkg/storage"
	"github.com/pairusuo/blog-backend/pkg/timeutil"
)

// listConcurrency bounds parallel object reads during a listing
const listConcurrency = 8

// PostRepository maps posts to storage objects
type PostRepository interface {
	KeyFor(locale i18n.Locale, slug string) string
	ReadMeta(ctx context.Context, locale i18n.Locale, slug string) (*domain.PostMeta, error)
	ReadFull(ctx context.Context, locale i18n.Locale, slug string) (*domain.Post, error)
	ListAllMeta(ctx context.Context, locale i18n.Locale) ([]*domain.PostMeta, error)
	ListDrafts(ctx context.Context, locale i18n.Locale) ([]*domain.DraftSummary, error)
	Save(ctx context.Context, post *domain.Post) error
	Exists(ctx context.Context, locale i18n.Locale, slug string) (bool, error)
	Delete(ctx context.Context, locale i18n.Locale, slug string) error
}

type postRepository struct {
	store storage.Storage
	loc   *time.Location
}

// NewPostRepository creates a repository over store; timestamps are read in loc
func NewPostRepository(store storage.Storage, loc *time.Location) PostRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &postRepository{store: store, loc: loc}
}

func (r *postRepository) KeyFor(locale i18n.Locale, slug string) string {
	return domain.PostKey(locale, slug)
}

func (r *postRepository) ReadMeta(ctx context.Context, locale i18n.Locale, slug string) (*domain.PostMeta, error) {
	p, err := r.ReadFull(ctx, locale, slug)
	if err != nil {
		return nil, err
	}
	return &p.PostMeta, nil
}

// ReadFull returns common.ErrPostNotFound when the object does not exist
func (r *postRepository) ReadFull(ctx context.Context, locale i18n.Locale, slug string) (*domain.Post, error) {
	key := r.KeyFor(locale, slug)
	raw, ok, err := r.store.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil, common.ErrPostNotFound
	}

	p, err := decodePost(locale, slug, raw, r.loc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return p, nil
}

// ListAllMeta returns published posts, newest first
func (r *postRepository) ListAllMeta(ctx context.Context, locale i18n.Locale) ([]*domain.PostMeta, error) {
	posts, err := r.readAll(ctx, locale)
	if err != nil {
		return nil, err
	}

	metas := make([]*domain.PostMeta, 0, len(posts))
	for _, p := range posts {
		if !p.Draft {
			metas = append(metas, &p.PostMeta)
		}
	}
	r.sortMetas(metas)
	return metas, nil
}

// ListDrafts returns drafts, last updated first
func (r *postRepository) ListDrafts(ctx context.Context, locale i18n.Locale) ([]*domain.DraftSummary, error) {
	posts, err := r.readAll(ctx, locale)
	if err != nil {
		return nil, err
	}

	metas := make([]*domain.PostMeta, 0, len(posts))
	for _, p := range posts {
		if p.Draft {
			metas = append(metas, &p.PostMeta)
		}
	}
	r.sortMetas(metas)

	drafts := make([]*domain.DraftSummary, 0, len(metas))
	for _, m := range metas {
		drafts = append(drafts, &domain.DraftSummary{
			Title:       m.Title,
			Slug:        m.Slug,
			Path:        r.KeyFor(locale, m.Slug),
			PublishedAt: m.PublishedAt,
			UpdatedAt:   m.UpdatedAt,
		})
	}
	return drafts, nil
}

func (r *postRepository) Save(ctx context.Context, post *domain.Post) error {
	data, err := encodePost(post)
	if err != nil {
		return fmt.Errorf("encode %s: %w", post.Key(), err)
	}
	if err := r.store.Write(ctx, post.Key(), data); err != nil {
		return fmt.Errorf("write %s: %w", post.Key(), err)
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, locale i18n.Locale, slug string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.KeyFor(locale, slug))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.KeyFor(locale, slug), err)
	}
	return ok, nil
}

func (r *postRepository) Delete(ctx context.Context, locale i18n.Locale, slug string) error {
	if err := r.store.Delete(ctx, r.KeyFor(locale, slug)); err != nil {
		return fmt.Errorf("delete %s: %w", r.KeyFor(locale, slug), err)
	}
	return nil
}

// readAll reads every post object of a locale. Objects that fail to read or
// parse are logged and skipped; only the key listing itself can fail.
func (r *postRepository) readAll(ctx context.Context, locale i18n.Locale) ([]*domain.Post, error) {
	keys, err := r.store.List(ctx, domain.KeyPrefix(locale))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", domain.KeyPrefix(locale), err)
	}

	log := pkglogger.GetLogger()
	results := make([]*domain.Post, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, key := range keys {
		i, key := i, key
		slug, ok := domain.SlugFromKey(locale, key)
		if !ok {
			continue
		}
		g.Go(func() error {
			raw, found, err := r.store.Read(gctx, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("skipping unreadable post")
				return nil
			}
			if !found {
				return nil
			}
			p, err := decodePost(locale, slug, raw, r.loc)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("skipping unparseable post")
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := results[:0]
	for _, p := range results {
		if p != nil {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// EffectiveTime is updatedAt when parseable, else publishedAt, else Epoch
func EffectiveTime(m *domain.PostMeta, loc *time.Location) time.Time {
	if t := timeutil.Parse(m.UpdatedAt, loc); !timeutil.IsEpoch(t) {
		return t
	}
	return timeutil.Parse(m.PublishedAt, loc)
}

func (r *postRepository) sortMetas(metas []*domain.PostMeta) {
	sort.SliceStable(metas, func(i, j int) bool {
		a, b := metas[i], metas[j]
		ta, tb := EffectiveTime(a, r.loc), EffectiveTime(b, r.loc)
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		pa, pb := timeutil.Parse(a.PublishedAt, r.loc), timeutil.Parse(b.PublishedAt, r.loc)
		if !pa.Equal(pb) {
			return pa.After(pb)
		}
		return a.Slug < b.Slug
	})
}

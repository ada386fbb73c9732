package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/pkg/cache"
	es "github.com/pairusuo/blog-backend/pkg/elasticsearch"
	"github.com/pairusuo/blog-backend/pkg/ginutil"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
)

// Search engines reported in results
const (
	EngineElasticsearch = "elasticsearch"
	EngineListing       = "listing"
)

// Indexer keeps a search index in step with published posts
type Indexer interface {
	IndexPost(ctx context.Context, post *domain.Post) error
	RemovePost(ctx context.Context, locale i18n.Locale, slug string) error
}

// SearchService answers public search queries
type SearchService interface {
	Indexer
	Search(ctx context.Context, locale i18n.Locale, query string, page, pageSize int) (*domain.SearchResult, error)
	Reindex(ctx context.Context, locale i18n.Locale) (int, error)
}

// PostDocument is a post as stored in Elasticsearch
type PostDocument struct {
	Locale      string   `json:"locale"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"published_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func documentID(locale i18n.Locale, slug string) string {
	return string(locale) + ":" + slug
}

func newDocument(p *domain.Post) PostDocument {
	return PostDocument{
		Locale:      string(p.Lang),
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Content:     p.Content,
		Tags:        p.Tags,
		PublishedAt: p.PublishedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

var postMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"locale":       map[string]any{"type": "keyword"},
			"slug":         map[string]any{"type": "keyword"},
			"title":        map[string]any{"type": "text", "analyzer": "standard"},
			"summary":      map[string]any{"type": "text", "analyzer": "standard"},
			"content":      map[string]any{"type": "text", "analyzer": "standard"},
			"tags":         map[string]any{"type": "keyword"},
			"published_at": map[string]any{"type": "date", "format": "yyyy-MM-dd HH:mm:ss||yyyy-MM-dd||strict_date_optional_time"},
			"updated_at":   map[string]any{"type": "date", "format": "yyyy-MM-dd HH:mm:ss||yyyy-MM-dd||strict_date_optional_time"},
		},
	},
}

type elasticSearchService struct {
	client *es.Client
	repo   repository.PostRepository
}

// NewElasticSearchService creates a search service backed by Elasticsearch
func NewElasticSearchService(ctx context.Context, client *es.Client, repo repository.PostRepository) SearchService {
	if err := client.EnsureIndex(ctx, postMapping); err != nil {
		pkglogger.GetLogger().Error().Err(err).Str("index", client.Index()).Msg("failed to create search index")
	}
	return &elasticSearchService{client: client, repo: repo}
}

func (s *elasticSearchService) IndexPost(ctx context.Context, post *domain.Post) error {
	return s.client.IndexDocument(ctx, documentID(post.Lang, post.Slug), newDocument(post))
}

func (s *elasticSearchService) RemovePost(ctx context.Context, locale i18n.Locale, slug string) error {
	return s.client.DeleteDocument(ctx, documentID(locale, slug))
}

func (s *elasticSearchService) Search(ctx context.Context, locale i18n.Locale, query string, page, pageSize int) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.Validation("Missing query")
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{{
					"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"title^3", "summary^2", "tags^2", "content"},
						"type":   "best_fields",
					},
				}},
				"filter": []map[string]any{{
					"term": map[string]any{"locale": string(locale)},
				}},
			},
		},
		"highlight": map[string]any{
			"fields": map[string]any{
				"title":   map[string]any{"number_of_fragments": 0},
				"content": map[string]any{"fragment_size": 150, "number_of_fragments": 3},
			},
			"pre_tags":  []string{"<mark>"},
			"post_tags": []string{"</mark>"},
		},
		"sort": []any{
			"_score",
			map[string]any{"published_at": map[string]any{"order": "desc"}},
		},
	}

	res, err := s.client.Search(ctx, body, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, common.Storage("Search failed", err)
	}

	out := &domain.SearchResult{
		Query:    query,
		Hits:     make([]*domain.SearchHit, 0, len(res.Hits)),
		Total:    int(res.Total),
		Page:     page,
		PageSize: pageSize,
		Engine:   EngineElasticsearch,
	}
	for _, h := range res.Hits {
		var doc PostDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			continue
		}
		hit := &domain.SearchHit{
			Title:       doc.Title,
			Slug:        doc.Slug,
			Summary:     doc.Summary,
			Tags:        doc.Tags,
			URL:         domain.PublicURL(locale, doc.Slug),
			PublishedAt: doc.PublishedAt,
		}
		hit.Highlights = append(hit.Highlights, h.Highlight["title"]...)
		hit.Highlights = append(hit.Highlights, h.Highlight["content"]...)
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// Reindex rebuilds the documents of one locale from the repository
func (s *elasticSearchService) Reindex(ctx context.Context, locale i18n.Locale) (int, error) {
	metas, err := s.repo.ListAllMeta(ctx, locale)
	if err != nil {
		return 0, err
	}

	docs := make(map[string]any, len(metas))
	for _, m := range metas {
		p, err := s.repo.ReadFull(ctx, locale, m.Slug)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("slug", m.Slug).Msg("reindex: skipping post")
			continue
		}
		docs[documentID(locale, m.Slug)] = newDocument(p)
	}

	if err := s.client.BulkIndex(ctx, docs); err != nil {
		return 0, fmt.Errorf("bulk index %s: %w", locale, err)
	}

	pkglogger.GetLogger().Info().
		Str("locale", string(locale)).
		Int("count", len(docs)).
		Msg("bulk indexed posts")
	return len(docs), nil
}

// listingSearchService matches queries against the cached published listing.
// Used when no Elasticsearch cluster is configured.
type listingSearchService struct {
	repo  repository.PostRepository
	store cache.Store
	ttl   time.Duration
}

// NewListingSearchService creates the fallback search service
func NewListingSearchService(repo repository.PostRepository, store cache.Store, ttl time.Duration) SearchService {
	return &listingSearchService{repo: repo, store: store, ttl: ttl}
}

func (s *listingSearchService) IndexPost(context.Context, *domain.Post) error { return nil }

func (s *listingSearchService) RemovePost(context.Context, i18n.Locale, string) error { return nil }

func (s *listingSearchService) Reindex(context.Context, i18n.Locale) (int, error) { return 0, nil }

func (s *listingSearchService) Search(ctx context.Context, locale i18n.Locale, query string, page, pageSize int) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.Validation("Missing query")
	}

	metas, err := publishedList(ctx, s.store, s.repo, locale, s.ttl)
	if err != nil {
		return nil, common.Storage("Failed to list posts", err)
	}

	terms := strings.Fields(strings.ToLower(query))
	var hits []*domain.SearchHit
	for _, m := range metas {
		if !matchesAll(m, terms) {
			continue
		}
		hits = append(hits, &domain.SearchHit{
			Title:       m.Title,
			Slug:        m.Slug,
			Summary:     m.Summary,
			Tags:        m.Tags,
			URL:         domain.PublicURL(locale, m.Slug),
			PublishedAt: m.PublishedAt,
		})
	}

	return &domain.SearchResult{
		Query:    query,
		Hits:     ginutil.Paginate(hits, page, pageSize),
		Total:    len(hits),
		Page:     page,
		PageSize: pageSize,
		Engine:   EngineListing,
	}, nil
}

func matchesAll(m *domain.PostMeta, terms []string) bool {
	haystack := strings.ToLower(m.Title + "\n" + m.Summary + "\n" + strings.Join(m.Tags, "\n") + "\n" + m.Slug)
	for _, t := range terms {
		if !strings.Contains(haystack, t) {
			return false
		}
	}
	return true
}

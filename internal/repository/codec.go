package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/pkg/frontmatter"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	"github.com/pairusuo/blog-backend/pkg/timeutil"
)

// header keys modelled by domain.Post, in write order
var knownKeys = []string{"title", "summary", "tags", "cover", "createdAt", "publishedAt", "updatedAt", "draft"}

func isKnownKey(k string) bool {
	for _, known := range knownKeys {
		if k == known {
			return true
		}
	}
	return false
}

// decodePost parses a stored object. Missing optional fields get defaults.
func decodePost(locale i18n.Locale, slug string, raw []byte, loc *time.Location) (*domain.Post, error) {
	fields, body, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, err
	}

	p := &domain.Post{
		PostMeta: domain.PostMeta{
			Slug:        slug,
			Lang:        locale,
			Title:       stringField(fields["title"]),
			Summary:     stringField(fields["summary"]),
			Tags:        tagsField(fields["tags"]),
			Cover:       stringField(fields["cover"]),
			CreatedAt:   timeutil.Stringify(fields["createdAt"], loc),
			PublishedAt: timeutil.Stringify(fields["publishedAt"], loc),
			UpdatedAt:   timeutil.Stringify(fields["updatedAt"], loc),
			Draft:       domain.ParseDraftFlag(fields["draft"]),
		},
		Content: body,
	}
	if p.Title == "" {
		p.Title = slug
	}

	p.ReadingMinutes = domain.ReadingMinutes(body)
	p.ReadingTime = i18n.Default().T(locale, "post.reading_time", p.ReadingMinutes)

	for k, v := range fields {
		if isKnownKey(k) {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p, nil
}

// encodePost renders p as front matter plus body
func encodePost(p *domain.Post) ([]byte, error) {
	h := frontmatter.NewHeader()
	h.String("title", p.Title)
	if p.Summary != "" {
		h.String("summary", p.Summary)
	}
	if len(p.Tags) > 0 {
		h.Strings("tags", p.Tags)
	}
	if p.Cover != "" {
		h.String("cover", p.Cover)
	}
	if p.CreatedAt != "" {
		h.Quoted("createdAt", p.CreatedAt)
	}
	h.Quoted("publishedAt", p.PublishedAt)
	h.Quoted("updatedAt", p.UpdatedAt)
	h.Bool("draft", p.Draft)

	if err := h.Extra(p.Extra); err != nil {
		return nil, err
	}
	return h.Render(p.Content)
}

func stringField(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(tv)
	default:
		return strings.TrimSpace(fmt.Sprint(tv))
	}
}

func tagsField(v any) []string {
	switch tv := v.(type) {
	case []any:
		tags := make([]string, 0, len(tv))
		for _, t := range tv {
			if s := stringField(t); s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		var tags []string
		for _, t := range strings.Split(tv, ",") {
			if s := strings.TrimSpace(t); s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	}
	return nil
}

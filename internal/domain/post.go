package domain

import (
	"fmt"
	"strings"

	"github.com/pairusuo/blog-backend/pkg/i18n"
)

// ContentExt is the extension of every stored post object
const ContentExt = ".mdx"

// KeyPrefix returns the storage prefix holding one locale's posts
func KeyPrefix(locale i18n.Locale) string {
	return "posts/" + string(locale) + "/"
}

// PostKey maps (locale, slug) to its storage key
func PostKey(locale i18n.Locale, slug string) string {
	return KeyPrefix(locale) + slug + ContentExt
}

// SlugFromKey reverses PostKey; ok is false for keys outside the locale or without the extension
func SlugFromKey(locale i18n.Locale, key string) (string, bool) {
	prefix := KeyPrefix(locale)
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, ContentExt) {
		return "", false
	}
	slug := strings.TrimSuffix(strings.TrimPrefix(key, prefix), ContentExt)
	if slug == "" {
		return "", false
	}
	return slug, true
}

// PublicURL is the site path of a published post
func PublicURL(locale i18n.Locale, slug string) string {
	if locale == i18n.LocaleEn {
		return "/en/blog/" + slug
	}
	return "/blog/" + slug
}

// PostMeta is the header-derived view of a post
type PostMeta struct {
	Title          string      `json:"title"`
	Slug           string      `json:"slug"`
	Summary        string      `json:"summary"`
	Tags           []string    `json:"tags"`
	Lang           i18n.Locale `json:"lang"`
	Cover          string      `json:"cover,omitempty"`
	CreatedAt      string      `json:"createdAt,omitempty"`
	PublishedAt    string      `json:"publishedAt"`
	UpdatedAt      string      `json:"updatedAt"`
	ReadingMinutes int         `json:"readingMinutes"`
	ReadingTime    string      `json:"readingTime"`
	Draft          bool        `json:"draft"`
}

// Post is a full post: header, body and any header keys this service does not model
type Post struct {
	PostMeta
	Content string         `json:"content"`
	Extra   map[string]any `json:"-"`
}

// Key returns the storage key of p
func (p *Post) Key() string {
	return PostKey(p.Lang, p.Slug)
}

func (p *Post) String() string {
	return fmt.Sprintf("%s:%s", p.Lang, p.Slug)
}

// DraftSummary is one row of the drafts listing
type DraftSummary struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Path        string `json:"path"`
	PublishedAt string `json:"publishedAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// DraftDetail is a single draft with its body
type DraftDetail struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Cover       string   `json:"cover,omitempty"`
	Content     string   `json:"content"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	PublishedAt string   `json:"publishedAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// PostSummary is one row of the admin published listing
type PostSummary struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Path        string `json:"path"`
	PublishedAt string `json:"publishedAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Summarize builds the admin listing row for m
func (m PostMeta) Summarize() PostSummary {
	return PostSummary{
		Title:       m.Title,
		Slug:        m.Slug,
		Path:        PostKey(m.Lang, m.Slug),
		PublishedAt: m.PublishedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreatePostRequest is the body of POST /api/admin/publish
type CreatePostRequest struct {
	Locale  string   `json:"locale" binding:"omitempty,locale"`
	Title   string   `json:"title"`
	Slug    string   `json:"slug"`
	Summary string   `json:"summary"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Cover   string   `json:"cover"`
	Draft   bool     `json:"draft"`
}

// UpdateDraftRequest is the body of PUT /api/admin/drafts. Nil fields keep the stored value.
type UpdateDraftRequest struct {
	Locale  string    `json:"locale" binding:"omitempty,locale"`
	Slug    string    `json:"slug" binding:"required,slugpath"`
	Title   *string   `json:"title"`
	Summary *string   `json:"summary"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
	Cover   *string   `json:"cover"`
}

// DraftActionRequest is the body of POST /api/admin/drafts
type DraftActionRequest struct {
	Locale string `json:"locale" binding:"omitempty,locale"`
	Slug   string `json:"slug" binding:"required,slugpath"`
	Action string `json:"action" binding:"required,oneof=publish"`
}

// WriteResult describes a successful write
type WriteResult struct {
	Path  string  `json:"path"`
	URL   *string `json:"url"`
	Slug  string  `json:"slug"`
	Draft bool    `json:"draft"`
}

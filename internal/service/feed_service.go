package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/pairusuo/blog-backend/pkg/timeutil"
)

// FeedLimit is the number of items in the RSS feed
const FeedLimit = 50

// SiteInfo identifies the public site in feeds
type SiteInfo struct {
	URL         string
	Title       string
	Description string
	Author      string
}

// FeedService renders the RSS feed, sitemap and robots policy
type FeedService interface {
	RSS(ctx context.Context) (string, error)
	Sitemap(ctx context.Context) ([]byte, error)
	Robots() string
}

type feedService struct {
	public PublicService
	site   SiteInfo
	loc    *time.Location
	now    func() time.Time
}

// NewFeedService creates a FeedService over the public read path
func NewFeedService(public PublicService, site SiteInfo, loc *time.Location) FeedService {
	if loc == nil {
		loc = time.UTC
	}
	site.URL = strings.TrimRight(site.URL, "/")
	return &feedService{public: public, site: site, loc: loc, now: time.Now}
}

type localizedMeta struct {
	*domain.PostMeta
	published time.Time
}

func (s *feedService) allPosts(ctx context.Context) ([]localizedMeta, error) {
	var all []localizedMeta
	for _, locale := range i18n.Locales {
		metas, err := s.public.AllPublished(ctx, locale)
		if err != nil {
			return nil, err
		}
		for _, m := range metas {
			all = append(all, localizedMeta{PostMeta: m, published: timeutil.Parse(m.PublishedAt, s.loc)})
		}
	}
	return all, nil
}

// RSS returns an RSS 2.0 document of the newest posts across locales
func (s *feedService) RSS(ctx context.Context) (string, error) {
	all, err := s.allPosts(ctx)
	if err != nil {
		return "", err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].published.After(all[j].published)
	})
	if len(all) > FeedLimit {
		all = all[:FeedLimit]
	}

	feed := &feeds.Feed{
		Title:       s.site.Title,
		Link:        &feeds.Link{Href: s.site.URL},
		Description: firstNonEmpty(s.site.Description, i18n.Default().T(i18n.DefaultLocale, "feed.description")),
		Created:     s.now(),
	}
	if s.site.Author != "" {
		feed.Author = &feeds.Author{Name: s.site.Author}
	}

	for _, p := range all {
		link := s.site.URL + domain.PublicURL(p.Lang, p.Slug)
		item := &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: p.Summary,
			Created:     p.published,
		}
		if updated := timeutil.Parse(p.UpdatedAt, s.loc); !timeutil.IsEpoch(updated) {
			item.Updated = updated
		}
		if detail, err := s.public.GetPost(ctx, p.Lang, p.Slug); err == nil {
			item.Content = detail.HTML
		} else {
			pkglogger.GetLogger().Warn().Err(err).Str("slug", p.Slug).Msg("rss: item without content")
		}
		feed.Items = append(feed.Items, item)
	}

	return feed.ToRss()
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

var staticPages = []sitemapURL{
	{Loc: "/", ChangeFreq: "daily", Priority: 1},
	{Loc: "/en", ChangeFreq: "daily", Priority: 0.9},
	{Loc: "/blog", ChangeFreq: "daily", Priority: 0.8},
	{Loc: "/en/blog", ChangeFreq: "daily", Priority: 0.8},
	{Loc: "/about", ChangeFreq: "monthly", Priority: 0.6},
	{Loc: "/en/about", ChangeFreq: "monthly", Priority: 0.6},
	{Loc: "/links", ChangeFreq: "monthly", Priority: 0.5},
	{Loc: "/en/links", ChangeFreq: "monthly", Priority: 0.5},
}

// Sitemap lists the static pages and every published post
func (s *feedService) Sitemap(ctx context.Context) ([]byte, error) {
	all, err := s.allPosts(ctx)
	if err != nil {
		return nil, err
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range staticPages {
		page.Loc = s.site.URL + page.Loc
		set.URLs = append(set.URLs, page)
	}
	for _, p := range all {
		u := sitemapURL{
			Loc:        s.site.URL + domain.PublicURL(p.Lang, p.Slug),
			ChangeFreq: "weekly",
			Priority:   0.7,
		}
		if t := timeutil.Parse(firstNonEmpty(p.UpdatedAt, p.PublishedAt), s.loc); !timeutil.IsEpoch(t) {
			u.LastMod = t.Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots allows everything except the admin surfaces
func (s *feedService) Robots() string {
	var b strings.Builder
	b.WriteString("User-Agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/api/admin/", "/*/admin/", "/en/admin/", "/zh/admin/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\n")
	b.WriteString("Host: " + s.site.URL + "\n")
	b.WriteString("Sitemap: " + s.site.URL + "/sitemap.xml\n")
	return b.String()
}

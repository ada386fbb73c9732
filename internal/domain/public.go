package domain

// PostPage is a page of published posts for public readers
type PostPage struct {
	Posts    []*PostMeta `json:"posts"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// PostDetail is a published post with its body rendered to HTML
type PostDetail struct {
	PostMeta
	Content string `json:"content"`
	HTML    string `json:"html"`
	URL     string `json:"url"`
}

// SearchHit is one search result
type SearchHit struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	Highlights  []string `json:"highlights,omitempty"`
}

// SearchResult is a page of search hits
type SearchResult struct {
	Query    string       `json:"query"`
	Hits     []*SearchHit `json:"hits"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Engine   string       `json:"engine"`
}

// UploadResult describes a stored upload
type UploadResult struct {
	Path    string `json:"path"`
	URL     string `json:"url"`
	Key     string `json:"key"`
	Storage string `json:"storage"`
	Locale  string `json:"locale"`
}

package domain

import "time"

type PostStatus string

const (
	StatusPublish PostStatus = "publish"
	StatusDraft   PostStatus = "draft"
	StatusPending PostStatus = "pending"
	StatusPrivate PostStatus = "private"
	StatusTrash   PostStatus = "trash"
)

// Post is one content item on one site. Content holds the stored HTML body;
// plain-text derivations (excerpt fallback, word count) are computed at read
// time, not persisted.
type Post struct {
	ID          int64      `json:"id"`
	SiteID      int64      `json:"site_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	Type        string     `json:"type"`
	Status      PostStatus `json:"status"`
	URL         string     `json:"url"`
	Author      string     `json:"author"`
	FeaturedURL string     `json:"featured_url,omitempty"`
	PublishedAt time.Time  `json:"published_at"`

	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Term is one taxonomy term on one site.
type Term struct {
	ID       int64  `json:"id"`
	SiteID   int64  `json:"site_id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// PostTypeInfo describes one registered content type on a site, with its
// published-item count.
type PostTypeInfo struct {
	Name          string `json:"name"`
	Label         string `json:"label"`
	SingularLabel string `json:"singular_label"`
	Hierarchical  bool   `json:"hierarchical"`
	Public        bool   `json:"public"`
	Count         int64  `json:"count"`
}

// TaxonomyInfo describes one taxonomy on a site. TermCounts maps term name to
// the number of objects attached to it; terms with zero attachments are not
// included.
type TaxonomyInfo struct {
	Name          string           `json:"name"`
	Label         string           `json:"label"`
	SingularLabel string           `json:"singular_label"`
	Hierarchical  bool             `json:"hierarchical"`
	Public        bool             `json:"public"`
	PostTypes     []string         `json:"post_types"`
	TermCounts    map[string]int64 `json:"term_counts"`
}

package domain

import "context"

// SearchQuery is one per-site search. Limit caps the relevance-ordered match
// list; zero means the platform default.
type SearchQuery struct {
	Text      string
	PostTypes []string
	Limit     int
}

// Platform is the multisite surface the tool layer is built on: site
// enumeration, URL resolution, and per-site content queries. Every per-site
// operation takes the site ID explicitly; implementations hold no notion of
// an active site.
type Platform interface {
	// Sites returns all sites in site-ID order, the network enumeration
	// order every cross-site sweep follows.
	Sites(ctx context.Context) ([]Site, error)
	SiteByID(ctx context.Context, id int64) (Site, error)
	MainSite(ctx context.Context) (Site, error)
	SiteCount(ctx context.Context) (int, error)

	// ResolveSite maps a host and path onto the site that serves them.
	// The bool result is false when no site matches.
	ResolveSite(ctx context.Context, host, path string) (Site, bool, error)

	// SearchPosts runs one relevance-ordered search against one site.
	// Only published posts are searched.
	SearchPosts(ctx context.Context, siteID int64, q SearchQuery) ([]Post, error)

	// PostByURL resolves a full URL to a post on the given site. The bool
	// result is false when the URL maps to nothing.
	PostByURL(ctx context.Context, siteID int64, rawURL string) (Post, bool, error)

	PostTypes(ctx context.Context, siteID int64) ([]PostTypeInfo, error)
	Taxonomies(ctx context.Context, siteID int64) ([]TaxonomyInfo, error)

	// PostMeta returns the custom-field map for one post. Values are lists;
	// single-valued fields are collapsed by callers, not here.
	PostMeta(ctx context.Context, siteID, postID int64) (map[string][]string, error)
}

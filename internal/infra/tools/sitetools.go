package tools

import (
	"context"

	"go.uber.org/zap"

	"netpress/internal/domain"
)

// SiteProvider is the baseline tool set: search and read scoped to one
// request-scoped site. It stands in for what a single-site install ships on
// its own; the network provider overrides its tools by name when network
// mode is on.
type SiteProvider struct {
	platform domain.Platform
	siteID   int64
	search   *SearchSettings
	logger   *zap.Logger
}

func NewSiteProvider(platform domain.Platform, siteID int64, search *SearchSettings, logger *zap.Logger) *SiteProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if siteID <= 0 {
		siteID = domain.DefaultCurrentSiteID
	}
	if search == nil {
		search = NewSearchSettings(domain.SearchConfig{})
	}
	return &SiteProvider{
		platform: platform,
		siteID:   siteID,
		search:   search,
		logger:   logger.Named("sitetools"),
	}
}

// Registration returns the provider's descriptor set at the baseline
// priority.
func (p *SiteProvider) Registration() domain.Registration {
	return domain.Registration{
		Provider: "sitetools",
		Priority: domain.PriorityBaseline,
		Tools: []domain.ToolDescriptor{
			{
				Name:        "search_posts",
				Description: "Search published content on this site.",
				Params: []domain.ParamSpec{
					{Name: "query", Type: domain.ParamString, Required: true, Description: "Free-text search query."},
					{Name: "post_types", Type: domain.ParamArray, Items: domain.ParamString, Description: "Content types to search. Defaults to the configured types."},
					{Name: "per_site_limit", Type: domain.ParamInteger, Description: "Maximum results to return. Defaults to the configured limit."},
				},
				ReadOnly: true,
				Handler:  p.searchPosts,
			},
			{
				Name:        "read_post",
				Description: "Read a single post on this site by its URL.",
				Params: []domain.ParamSpec{
					{Name: "url", Type: domain.ParamString, Required: true, Description: "Full URL of the post."},
					{Name: "include_custom_fields", Type: domain.ParamBoolean, Description: "Include non-internal custom fields."},
				},
				ReadOnly: true,
				Handler:  p.readPost,
			},
		},
	}
}

func (p *SiteProvider) searchPosts(ctx context.Context, params domain.Params) domain.ToolResult {
	const tool = "search_posts"

	query, fail, ok := domain.RequireString(tool, params, "query")
	if !ok {
		return fail
	}

	site, err := p.platform.SiteByID(ctx, p.siteID)
	if err != nil {
		return domain.FailErr(tool, err)
	}
	limit, types := p.search.resolve(params)
	posts, err := p.platform.SearchPosts(ctx, site.ID, domain.SearchQuery{
		Text:      query,
		PostTypes: types,
		Limit:     limit,
	})
	if err != nil {
		return domain.FailErr(tool, err)
	}

	results := make([]map[string]any, 0, len(posts))
	for _, post := range posts {
		results = append(results, searchHit(post, site))
	}
	return domain.OK(tool, map[string]any{
		"query":         query,
		"total_results": len(results),
		"results":       results,
	})
}

func (p *SiteProvider) readPost(ctx context.Context, params domain.Params) domain.ToolResult {
	const tool = "read_post"

	rawURL, fail, ok := domain.RequireString(tool, params, "url")
	if !ok {
		return fail
	}

	site, err := p.platform.SiteByID(ctx, p.siteID)
	if err != nil {
		return domain.FailErr(tool, err)
	}
	post, found, err := p.platform.PostByURL(ctx, site.ID, rawURL)
	if err != nil {
		return domain.FailErr(tool, err)
	}
	if !found {
		return domain.Failf(tool, "no post found at %s", rawURL)
	}

	payload := postPayload(post, site)
	if params.Bool("include_custom_fields") {
		meta, err := p.platform.PostMeta(ctx, site.ID, post.ID)
		if err != nil {
			return domain.FailErr(tool, err)
		}
		payload["custom_fields"] = customFields(meta)
	}
	return domain.OK(tool, payload)
}

package tools

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"netpress/internal/domain"
)

// NetworkProvider is the network-wide tool set: cross-site search, URL-based
// reads that resolve their own site, and site listing. Registered above the
// baseline so its search_posts and read_post take over by name.
type NetworkProvider struct {
	platform domain.Platform
	current  int64
	search   *SearchSettings
	logger   *zap.Logger
}

func NewNetworkProvider(platform domain.Platform, currentSiteID int64, search *SearchSettings, logger *zap.Logger) *NetworkProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currentSiteID <= 0 {
		currentSiteID = domain.DefaultCurrentSiteID
	}
	if search == nil {
		search = NewSearchSettings(domain.SearchConfig{})
	}
	return &NetworkProvider{
		platform: platform,
		current:  currentSiteID,
		search:   search,
		logger:   logger.Named("nettools"),
	}
}

// Registration returns the provider's descriptor set at the network
// priority.
func (p *NetworkProvider) Registration() domain.Registration {
	return domain.Registration{
		Provider: "nettools",
		Priority: domain.PriorityNetwork,
		Tools: []domain.ToolDescriptor{
			{
				Name:        "search_posts",
				Description: "Search published content across every eligible site in the network.",
				Params: []domain.ParamSpec{
					{Name: "query", Type: domain.ParamString, Required: true, Description: "Free-text search query."},
					{Name: "post_types", Type: domain.ParamArray, Items: domain.ParamString, Description: "Content types to search. Defaults to the configured types."},
					{Name: "site_ids", Type: domain.ParamArray, Items: domain.ParamInteger, Description: "Restrict the search to these site IDs. Defaults to every eligible site."},
					{Name: "per_site_limit", Type: domain.ParamInteger, Description: "Maximum results per site. Defaults to the configured limit."},
					{Name: "job_id", Type: domain.ParamString, Required: true, Description: "Correlation identifier for this invocation."},
				},
				ReadOnly: true,
				Handler:  p.searchPosts,
			},
			{
				Name:        "read_post",
				Description: "Read a single post anywhere in the network by its URL.",
				Params: []domain.ParamSpec{
					{Name: "url", Type: domain.ParamString, Required: true, Description: "Full URL of the post."},
					{Name: "job_id", Type: domain.ParamString, Required: true, Description: "Correlation identifier for this invocation."},
					{Name: "include_custom_fields", Type: domain.ParamBoolean, Description: "Include non-internal custom fields."},
				},
				ReadOnly: true,
				Handler:  p.readPost,
			},
			{
				Name:        "list_sites",
				Description: "List every site in the network with its eligibility.",
				ReadOnly:    true,
				Handler:     p.listSites,
			},
		},
	}
}

func (p *NetworkProvider) searchPosts(ctx context.Context, params domain.Params) domain.ToolResult {
	const tool = "search_posts"

	query, fail, ok := domain.RequireString(tool, params, "query")
	if !ok {
		return fail
	}
	jobID, fail, ok := domain.RequireString(tool, params, "job_id")
	if !ok {
		return fail
	}

	sites, err := p.platform.Sites(ctx)
	if err != nil {
		return domain.FailErr(tool, err)
	}
	limit, types := p.search.resolve(params)
	wanted := params.Int64Slice("site_ids")

	searched := 0
	results := make([]map[string]any, 0)
	for _, site := range sites {
		if !site.Eligible() || !siteWanted(wanted, site.ID) {
			continue
		}
		searched++
		posts, err := p.platform.SearchPosts(ctx, site.ID, domain.SearchQuery{
			Text:      query,
			PostTypes: types,
			Limit:     limit,
		})
		if err != nil {
			// One site's failure costs its hits, not the sweep.
			p.logger.Warn("site search failed",
				zap.Int64("site_id", site.ID),
				zap.String("job_id", jobID),
				zap.Error(err))
			continue
		}
		for _, post := range posts {
			results = append(results, searchHit(post, site))
		}
	}

	p.logger.Debug("network search complete",
		zap.String("job_id", jobID),
		zap.Int("sites_searched", searched),
		zap.Int("total_results", len(results)))
	return domain.OK(tool, map[string]any{
		"query":          query,
		"total_results":  len(results),
		"sites_searched": searched,
		"results":        results,
	})
}

// siteWanted reports whether a site passes the site_ids filter. An empty
// filter admits everything.
func siteWanted(ids []int64, id int64) bool {
	if len(ids) == 0 {
		return true
	}
	for _, want := range ids {
		if want == id {
			return true
		}
	}
	return false
}

func (p *NetworkProvider) readPost(ctx context.Context, params domain.Params) domain.ToolResult {
	const tool = "read_post"

	rawURL, fail, ok := domain.RequireString(tool, params, "url")
	if !ok {
		return fail
	}
	jobID, fail, ok := domain.RequireString(tool, params, "job_id")
	if !ok {
		return fail
	}

	site, err := p.resolvePostSite(ctx, rawURL, jobID)
	if err != nil {
		return domain.FailErr(tool, err)
	}

	post, found, err := p.platform.PostByURL(ctx, site.ID, rawURL)
	if errors.Is(err, domain.ErrPostTrashed) {
		return domain.Failf(tool, "post at %s is trashed", rawURL)
	}
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

// resolvePostSite maps a post URL onto a site: host+path resolution first,
// then a longest-prefix scan over all site URLs, then the request-scoped
// site as the final fallback.
func (p *NetworkProvider) resolvePostSite(ctx context.Context, rawURL, jobID string) (domain.Site, error) {
	host, path := domain.SplitURL(rawURL)
	site, ok, err := p.platform.ResolveSite(ctx, host, path)
	if err != nil {
		return domain.Site{}, err
	}
	if ok {
		return site, nil
	}

	if site, ok = p.scanSitePrefixes(ctx, host+path, jobID); ok {
		return site, nil
	}

	p.logger.Debug("post url did not resolve, using request site",
		zap.String("url", rawURL),
		zap.String("job_id", jobID))
	return p.platform.SiteByID(ctx, p.current)
}

func (p *NetworkProvider) scanSitePrefixes(ctx context.Context, normalized, jobID string) (domain.Site, bool) {
	sites, err := p.platform.Sites(ctx)
	if err != nil {
		p.logger.Warn("site scan failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		return domain.Site{}, false
	}

	var best domain.Site
	bestLen := -1
	for _, site := range sites {
		prefix := site.Host() + site.PathPrefix()
		if prefix == "" || !strings.HasPrefix(normalized, prefix) {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = site, len(prefix)
		}
	}
	return best, bestLen >= 0
}

func (p *NetworkProvider) listSites(ctx context.Context, _ domain.Params) domain.ToolResult {
	const tool = "list_sites"

	sites, err := p.platform.Sites(ctx)
	if err != nil {
		return domain.FailErr(tool, err)
	}

	entries := make([]map[string]any, 0, len(sites))
	for _, site := range sites {
		entries = append(entries, map[string]any{
			"id":       site.ID,
			"name":     site.Name,
			"url":      site.URL,
			"main":     site.Main,
			"eligible": site.Eligible(),
		})
	}
	return domain.OK(tool, map[string]any{
		"total_sites": len(entries),
		"sites":       entries,
	})
}

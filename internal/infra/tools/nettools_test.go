package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

func networkFixture() (*fakePlatform, *NetworkProvider) {
	platform := newFakePlatform(
		domain.Site{ID: 1, Name: "Main", URL: "https://example.com", Public: true, Main: true},
		domain.Site{ID: 2, Name: "Blog", URL: "https://example.com/blog", Public: true},
		domain.Site{ID: 3, Name: "Archive", URL: "https://old.example.com", Public: true, Archived: true},
	)
	return platform, NewNetworkProvider(platform, 1, nil, zap.NewNop())
}

func callTool(t *testing.T, reg domain.Registration, name string, params domain.Params) domain.ToolResult {
	t.Helper()
	for _, tool := range reg.Tools {
		if tool.Name == name {
			return tool.Handler(context.Background(), params)
		}
	}
	t.Fatalf("tool %s not registered", name)
	return domain.ToolResult{}
}

func TestNetworkProvider_SearchAggregatesInSiteOrder(t *testing.T) {
	platform, provider := networkFixture()
	platform.addPost(domain.Post{SiteID: 2, Title: "Coffee notes", URL: "https://example.com/blog/coffee-notes", Author: "Ana"})
	platform.addPost(domain.Post{SiteID: 1, Title: "Coffee on the main site", URL: "https://example.com/coffee", Author: "Bo"})
	platform.addPost(domain.Post{SiteID: 3, Title: "Archived coffee", URL: "https://old.example.com/coffee"})

	result := callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-1",
	})
	require.True(t, result.Success, result.Error)
	require.Equal(t, "search_posts", result.ToolName)
	require.Equal(t, "coffee", result.Data["query"])
	require.Equal(t, 2, result.Data["sites_searched"])
	require.Equal(t, 2, result.Data["total_results"])

	results := result.Data["results"].([]map[string]any)
	require.Len(t, results, 2)
	// Site enumeration order, not relevance order across sites.
	require.Equal(t, int64(1), results[0]["site_id"])
	require.Equal(t, "Coffee on the main site", results[0]["title"])
	require.Equal(t, int64(2), results[1]["site_id"])
	require.Equal(t, "Blog", results[1]["site_name"])
	require.Equal(t, "https://example.com/blog", results[1]["site_url"])
	require.Equal(t, "2024-03-10", results[1]["date"])
}

func TestNetworkProvider_SearchRequiresQueryAndJobID(t *testing.T) {
	_, provider := networkFixture()

	result := callTool(t, provider.Registration(), "search_posts", domain.Params{"job_id": "job-1"})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "query")
	require.Equal(t, "search_posts", result.ToolName)

	result = callTool(t, provider.Registration(), "search_posts", domain.Params{"query": "coffee"})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "job_id")

	result = callTool(t, provider.Registration(), "search_posts", domain.Params{"query": "   ", "job_id": "job-1"})
	require.False(t, result.Success)
}

func TestNetworkProvider_SearchSurvivesFailingSite(t *testing.T) {
	platform, provider := networkFixture()
	platform.addPost(domain.Post{SiteID: 1, Title: "Coffee", URL: "https://example.com/coffee"})
	platform.failSearch[2] = errors.New("index offline")

	result := callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-2",
	})
	require.True(t, result.Success)
	// The failing site still counts as searched; it just contributes nothing.
	require.Equal(t, 2, result.Data["sites_searched"])
	require.Equal(t, 1, result.Data["total_results"])
}

func TestNetworkProvider_SearchPassesCapAndDefaultTypes(t *testing.T) {
	platform, provider := networkFixture()

	result := callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-3",
	})
	require.True(t, result.Success)
	require.Len(t, platform.searchCalls, 2)
	for _, call := range platform.searchCalls {
		require.Equal(t, []string{"post", "page"}, call.query.PostTypes)
		require.Equal(t, domain.DefaultSearchPerSiteLimit, call.query.Limit)
	}

	platform.searchCalls = nil
	result = callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-3", "post_types": []any{"recipe"},
	})
	require.True(t, result.Success)
	require.Equal(t, []string{"recipe"}, platform.searchCalls[0].query.PostTypes)
}

func TestNetworkProvider_SearchHonorsSiteFilterAndCap(t *testing.T) {
	platform, provider := networkFixture()
	platform.addPost(domain.Post{SiteID: 1, Title: "Coffee one", URL: "https://example.com/coffee-one"})
	platform.addPost(domain.Post{SiteID: 2, Title: "Coffee two", URL: "https://example.com/blog/coffee-two"})
	platform.addPost(domain.Post{SiteID: 2, Title: "Coffee three", URL: "https://example.com/blog/coffee-three"})

	result := callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-10",
		"site_ids":       []any{float64(2)},
		"per_site_limit": float64(1),
	})
	require.True(t, result.Success, result.Error)
	require.Equal(t, 1, result.Data["sites_searched"])
	require.Equal(t, 1, result.Data["total_results"])

	results := result.Data["results"].([]map[string]any)
	require.Equal(t, int64(2), results[0]["site_id"])
	require.Equal(t, "Coffee two", results[0]["title"])
}

func TestNetworkProvider_SearchUsesConfiguredDefaults(t *testing.T) {
	platform, _ := networkFixture()
	settings := NewSearchSettings(domain.SearchConfig{PerSiteLimit: 2, DefaultPostTypes: []string{"recipe"}})
	provider := NewNetworkProvider(platform, 1, settings, zap.NewNop())

	result := callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-11",
	})
	require.True(t, result.Success)
	require.Equal(t, []string{"recipe"}, platform.searchCalls[0].query.PostTypes)
	require.Equal(t, 2, platform.searchCalls[0].query.Limit)

	// A reload swaps the defaults for subsequent calls through the same
	// provider.
	settings.Apply(domain.SearchConfig{PerSiteLimit: 7})
	platform.searchCalls = nil
	result = callTool(t, provider.Registration(), "search_posts", domain.Params{
		"query": "coffee", "job_id": "job-11",
	})
	require.True(t, result.Success)
	require.Equal(t, 7, platform.searchCalls[0].query.Limit)
	require.Equal(t, []string{"post", "page"}, platform.searchCalls[0].query.PostTypes)
}

func TestNetworkProvider_ReadPostResolvesOwningSite(t *testing.T) {
	platform, provider := networkFixture()
	platform.addPost(domain.Post{
		SiteID:  2,
		Title:   "Brew log",
		Content: "<p>Fresh beans &amp; filtered water.</p>",
		URL:     "https://example.com/blog/brew-log",
		Author:  "Ana",
	})

	result := callTool(t, provider.Registration(), "read_post", domain.Params{
		"url": "https://example.com/blog/brew-log", "job_id": "job-4",
	})
	require.True(t, result.Success, result.Error)
	require.Equal(t, int64(2), result.Data["site_id"])
	require.Equal(t, "Brew log", result.Data["title"])
	require.Equal(t, "Fresh beans & filtered water.", result.Data["plain_text"])
	require.Equal(t, "Fresh beans & filtered water.", result.Data["excerpt"])
	require.Equal(t, 5, result.Data["word_count"])
	require.Equal(t, "publish", result.Data["status"])
	require.Equal(t, "https://example.com/blog/brew-log", result.Data["permalink"])
	require.NotContains(t, result.Data, "custom_fields")
	require.NotContains(t, result.Data, "featured_image")
}

func TestNetworkProvider_ReadPostPrefixScanFallback(t *testing.T) {
	platform, provider := networkFixture()
	platform.noResolve = true
	platform.addPost(domain.Post{SiteID: 2, Title: "Brew log", URL: "https://example.com/blog/brew-log"})

	result := callTool(t, provider.Registration(), "read_post", domain.Params{
		"url": "https://example.com/blog/brew-log", "job_id": "job-5",
	})
	require.True(t, result.Success, result.Error)
	// The scan picks the most specific site URL, not the main site.
	require.Equal(t, int64(2), result.Data["site_id"])
}

func TestNetworkProvider_ReadPostFallsBackToRequestSite(t *testing.T) {
	platform, provider := networkFixture()
	platform.addPost(domain.Post{SiteID: 1, Title: "Mirrored", URL: "https://cdn.elsewhere.org/mirrored"})

	result := callTool(t, provider.Registration(), "read_post", domain.Params{
		"url": "https://cdn.elsewhere.org/mirrored", "job_id": "job-6",
	})
	require.True(t, result.Success, result.Error)
	require.Equal(t, int64(1), result.Data["site_id"])
}

func TestNetworkProvider_ReadPostMissingAndTrashed(t *testing.T) {
	platform, provider := networkFixture()
	platform.addPost(domain.Post{
		SiteID: 2, Title: "Gone", URL: "https://example.com/blog/gone", Status: domain.StatusTrash,
	})

	result := callTool(t, provider.Registration(), "read_post", domain.Params{
		"url": "https://example.com/blog/nothing-here", "job_id": "job-7",
	})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "no post found")

	result = callTool(t, provider.Registration(), "read_post", domain.Params{
		"url": "https://example.com/blog/gone", "job_id": "job-7",
	})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "trashed")
	require.Equal(t, "read_post", result.ToolName)
}

func TestNetworkProvider_ReadPostCustomFields(t *testing.T) {
	platform, provider := networkFixture()
	post := platform.addPost(domain.Post{SiteID: 1, Title: "Annotated", URL: "https://example.com/annotated"})
	platform.meta[post.ID] = map[string][]string{
		"_edit_lock": {"abc"},
		"subtitle":   {"A closer look"},
		"sources":    {"one", "two"},
	}

	result := callTool(t, provider.Registration(), "read_post", domain.Params{
		"url": "https://example.com/annotated", "job_id": "job-8", "include_custom_fields": true,
	})
	require.True(t, result.Success, result.Error)

	fields := result.Data["custom_fields"].(map[string]any)
	require.Equal(t, "A closer look", fields["subtitle"])
	require.Equal(t, []string{"one", "two"}, fields["sources"])
	require.NotContains(t, fields, "_edit_lock")
}

func TestNetworkProvider_ListSites(t *testing.T) {
	_, provider := networkFixture()

	result := callTool(t, provider.Registration(), "list_sites", domain.Params{})
	require.True(t, result.Success)
	require.Equal(t, 3, result.Data["total_sites"])

	sites := result.Data["sites"].([]map[string]any)
	require.Equal(t, int64(1), sites[0]["id"])
	require.Equal(t, true, sites[0]["main"])
	require.Equal(t, true, sites[0]["eligible"])
	require.Equal(t, false, sites[2]["eligible"])
}

func TestProviders_NetworkOverridesBaselineByName(t *testing.T) {
	platform, netProvider := networkFixture()
	siteProvider := NewSiteProvider(platform, 1, nil, zap.NewNop())

	registry := domain.NewRegistry()
	registry.Register(netProvider.Registration())
	registry.Register(siteProvider.Registration())

	snapshot := registry.Snapshot()
	names := make([]string, 0, len(snapshot.Tools))
	for _, tool := range snapshot.Tools {
		names = append(names, tool.Name)
	}
	require.Equal(t, []string{"list_sites", "read_post", "search_posts"}, names)

	// The surviving search_posts is the network version: its result carries
	// the cross-site fields.
	effective, ok := registry.Lookup("search_posts")
	require.True(t, ok)
	result := effective.Handler(context.Background(), domain.Params{"query": "coffee", "job_id": "job-9"})
	require.True(t, result.Success)
	require.Contains(t, result.Data, "sites_searched")
}

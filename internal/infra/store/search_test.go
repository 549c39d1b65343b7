package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netpress/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 12, 0, 0, 0, time.UTC)
}

func seedSearchSite(t *testing.T, s *Store) domain.Site {
	t.Helper()
	site := mustCreateSite(t, s, "Main", "https://example.com")

	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Coffee brewing guide", Content: "<p>How to brew coffee at home.</p>",
		Excerpt: "Coffee brewing basics.", URL: "https://example.com/coffee-guide", PublishedAt: day(1),
	})
	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Morning routines", Content: "<p>Coffee coffee coffee. Nothing but coffee.</p>",
		URL: "https://example.com/morning", PublishedAt: day(2),
	})
	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Tea ceremonies", Content: "<p>No mention of the other drink.</p>",
		URL: "https://example.com/tea", PublishedAt: day(3),
	})
	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Coffee shop draft", Content: "<p>Unpublished coffee notes.</p>",
		URL: "https://example.com/draft", Status: domain.StatusDraft, PublishedAt: day(4),
	})
	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Coffee page", Content: "<p>A page about coffee.</p>", Type: "page",
		URL: "https://example.com/coffee-page", PublishedAt: day(5),
	})
	return site
}

func TestSearchPosts_TitleOutweighsContent(t *testing.T) {
	s := newTestStore(t)
	site := seedSearchSite(t, s)

	hits, err := s.SearchPosts(context.Background(), site.ID, domain.SearchQuery{
		Text:      "coffee",
		PostTypes: []string{"post", "page"},
	})
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Guide scores 3+2+1 via title, excerpt, and content. Page and routines
	// both score 4; the newer page wins the tie.
	require.Equal(t, "Coffee brewing guide", hits[0].Title)
	require.Equal(t, "Coffee page", hits[1].Title)
	require.Equal(t, "Morning routines", hits[2].Title)
}

func TestSearchPosts_StatusAndTypeFilters(t *testing.T) {
	s := newTestStore(t)
	site := seedSearchSite(t, s)
	ctx := context.Background()

	hits, err := s.SearchPosts(ctx, site.ID, domain.SearchQuery{Text: "coffee", PostTypes: []string{"post"}})
	require.NoError(t, err)
	for _, hit := range hits {
		require.Equal(t, "post", hit.Type)
		require.Equal(t, domain.StatusPublish, hit.Status)
	}
	require.Len(t, hits, 2)
}

func TestSearchPosts_TieBreaksByDateThenID(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")

	older := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Gardening", Content: "<p>tomato</p>",
		URL: "https://example.com/a", PublishedAt: day(1),
	})
	newer := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Allotments", Content: "<p>tomato</p>",
		URL: "https://example.com/b", PublishedAt: day(9),
	})

	hits, err := s.SearchPosts(context.Background(), site.ID, domain.SearchQuery{Text: "tomato"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, newer.ID, hits[0].ID)
	require.Equal(t, older.ID, hits[1].ID)
}

func TestSearchPosts_LimitCapsResults(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")

	for i := 0; i < 8; i++ {
		mustCreatePost(t, s, domain.Post{
			SiteID: site.ID, Title: "Widget update", Content: "<p>widget news</p>",
			URL: "https://example.com/widget-" + string(rune('a'+i)), PublishedAt: day(i + 1),
		})
	}

	hits, err := s.SearchPosts(context.Background(), site.ID, domain.SearchQuery{Text: "widget"})
	require.NoError(t, err)
	require.Len(t, hits, domain.DefaultSearchPerSiteLimit)

	hits, err = s.SearchPosts(context.Background(), site.ID, domain.SearchQuery{Text: "widget", Limit: 2})
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestSearchPosts_LikeWildcardsAreLiteral(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")

	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Discount 50% off", Content: "<p>sale</p>",
		URL: "https://example.com/sale", PublishedAt: day(1),
	})
	mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Plain title", Content: "<p>nothing here</p>",
		URL: "https://example.com/plain", PublishedAt: day(2),
	})

	hits, err := s.SearchPosts(context.Background(), site.ID, domain.SearchQuery{Text: "50% off"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "Discount 50% off", hits[0].Title)

	_, err = s.SearchPosts(context.Background(), site.ID, domain.SearchQuery{Text: "   "})
	require.Error(t, err)
}

func TestPostByURL_NormalizedLookup(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")
	ctx := context.Background()

	created := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Hello", URL: "https://example.com/hello-world/",
	})

	post, ok, err := s.PostByURL(ctx, site.ID, "http://EXAMPLE.com/hello-world")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created.ID, post.ID)

	_, ok, err = s.PostByURL(ctx, site.ID, "https://example.com/absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPostByURL_TrashedIsAnError(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")
	ctx := context.Background()

	post := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Doomed", URL: "https://example.com/doomed",
	})
	post.Status = domain.StatusTrash
	_, err := s.UpdatePost(ctx, post)
	require.NoError(t, err)

	_, ok, err := s.PostByURL(ctx, site.ID, "https://example.com/doomed")
	require.False(t, ok)
	require.ErrorIs(t, err, domain.ErrPostTrashed)
}

func TestPostTypes_CountsPublishedOnly(t *testing.T) {
	s := newTestStore(t)
	site := seedSearchSite(t, s)

	types, err := s.PostTypes(context.Background(), site.ID)
	require.NoError(t, err)

	byName := make(map[string]domain.PostTypeInfo, len(types))
	for _, pt := range types {
		byName[pt.Name] = pt
	}
	require.Equal(t, int64(3), byName["post"].Count)
	require.Equal(t, int64(1), byName["page"].Count)
	require.Equal(t, int64(0), byName["attachment"].Count)
}

func TestTaxonomies_TermUsageCoversPublishedAttachments(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")
	ctx := context.Background()

	published := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Live", URL: "https://example.com/live",
	})
	draft := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID, Title: "Hidden", URL: "https://example.com/hidden", Status: domain.StatusDraft,
	})

	news, err := s.CreateTerm(ctx, domain.Term{SiteID: site.ID, Taxonomy: "category", Name: "News"})
	require.NoError(t, err)
	_, err = s.CreateTerm(ctx, domain.Term{SiteID: site.ID, Taxonomy: "category", Name: "Unused"})
	require.NoError(t, err)
	draftOnly, err := s.CreateTerm(ctx, domain.Term{SiteID: site.ID, Taxonomy: "category", Name: "DraftOnly"})
	require.NoError(t, err)

	require.NoError(t, s.SetPostTerms(ctx, site.ID, published.ID, []int64{news.ID}))
	require.NoError(t, s.SetPostTerms(ctx, site.ID, draft.ID, []int64{draftOnly.ID}))

	taxes, err := s.Taxonomies(ctx, site.ID)
	require.NoError(t, err)

	var category domain.TaxonomyInfo
	for _, tax := range taxes {
		if tax.Name == "category" {
			category = tax
		}
	}
	require.Equal(t, map[string]int64{"News": 1}, category.TermCounts)
	require.Equal(t, []string{"post"}, category.PostTypes)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "content.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreateSite(t *testing.T, s *Store, name, url string) domain.Site {
	t.Helper()
	site, err := s.CreateSite(context.Background(), domain.Site{Name: name, URL: url, Public: true})
	require.NoError(t, err)
	return site
}

func mustCreatePost(t *testing.T, s *Store, post domain.Post) domain.Post {
	t.Helper()
	created, err := s.CreatePost(context.Background(), post)
	require.NoError(t, err)
	return created
}

func TestCreateSite_FirstBecomesMainAndDefaultsSeeded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustCreateSite(t, s, "Main", "https://example.com")
	second := mustCreateSite(t, s, "Blog", "https://example.com/blog")

	require.True(t, first.Main)
	require.False(t, second.Main)

	main, err := s.MainSite(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, main.ID)

	count, err := s.SiteCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	types, err := s.PostTypes(ctx, second.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(types))
	for _, pt := range types {
		names = append(names, pt.Name)
	}
	require.Equal(t, []string{"attachment", "page", "post"}, names)

	taxes, err := s.Taxonomies(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, taxes, 3)
}

func TestSiteByID_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SiteByID(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrSiteNotFound)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeSiteUnresolved, code)
}

func TestResolveSite_LongestPrefixAtSegmentBoundary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	main := mustCreateSite(t, s, "Main", "https://example.com")
	blog := mustCreateSite(t, s, "Blog", "https://example.com/blog")
	mustCreateSite(t, s, "Docs", "https://docs.example.com")

	site, ok, err := s.ResolveSite(ctx, "example.com", "/blog/2026/hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, blog.ID, site.ID)

	site, ok, err = s.ResolveSite(ctx, "example.com", "/blogger/post")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, main.ID, site.ID)

	site, ok, err = s.ResolveSite(ctx, "EXAMPLE.com", "/")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, main.ID, site.ID)

	_, ok, err = s.ResolveSite(ctx, "nowhere.example.net", "/")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateSite_RewritesFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	site := mustCreateSite(t, s, "Main", "https://example.com")
	site.Archived = true
	site.Name = "Archived main"

	updated, err := s.UpdateSite(ctx, site)
	require.NoError(t, err)
	require.True(t, updated.Archived)
	require.Equal(t, "Archived main", updated.Name)
	require.False(t, updated.Eligible())

	_, err = s.UpdateSite(ctx, domain.Site{ID: 99, Name: "x", URL: "https://x.test"})
	require.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestDeleteSite_CascadesContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	site := mustCreateSite(t, s, "Main", "https://example.com")
	post := mustCreatePost(t, s, domain.Post{
		SiteID: site.ID,
		Title:  "Hello",
		URL:    "https://example.com/hello",
	})
	require.NoError(t, s.SetPostMeta(ctx, site.ID, post.ID, map[string][]string{"subtitle": {"hi"}}))

	require.NoError(t, s.DeleteSite(ctx, site.ID))

	_, err := s.PostByID(ctx, site.ID, post.ID)
	require.ErrorIs(t, err, domain.ErrPostNotFound)

	require.ErrorIs(t, s.DeleteSite(ctx, site.ID), domain.ErrSiteNotFound)
}

func TestPostMeta_ReplaceWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	site := mustCreateSite(t, s, "Main", "https://example.com")
	post := mustCreatePost(t, s, domain.Post{SiteID: site.ID, Title: "Hello", URL: "https://example.com/hello"})

	require.NoError(t, s.SetPostMeta(ctx, site.ID, post.ID, map[string][]string{
		"subtitle":   {"one"},
		"_edit_lock": {"internal"},
		"authors":    {"a", "b"},
	}))

	meta, err := s.PostMeta(ctx, site.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"one"}, meta["subtitle"])
	require.Equal(t, []string{"a", "b"}, meta["authors"])

	require.NoError(t, s.SetPostMeta(ctx, site.ID, post.ID, map[string][]string{"subtitle": {"two"}}))
	meta, err = s.PostMeta(ctx, site.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, map[string][]string{"subtitle": {"two"}}, meta)
}

func TestSetPostTerms_ReplacesAndChecksSiteOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	site := mustCreateSite(t, s, "Main", "https://example.com")
	other := mustCreateSite(t, s, "Other", "https://other.example.com")

	post := mustCreatePost(t, s, domain.Post{SiteID: site.ID, Title: "Hello", URL: "https://example.com/hello"})
	news, err := s.CreateTerm(ctx, domain.Term{SiteID: site.ID, Taxonomy: "category", Name: "News"})
	require.NoError(t, err)
	tips, err := s.CreateTerm(ctx, domain.Term{SiteID: site.ID, Taxonomy: "post_tag", Name: "Tips"})
	require.NoError(t, err)
	foreign, err := s.CreateTerm(ctx, domain.Term{SiteID: other.ID, Taxonomy: "category", Name: "Foreign"})
	require.NoError(t, err)

	require.NoError(t, s.SetPostTerms(ctx, site.ID, post.ID, []int64{news.ID, tips.ID}))

	loaded, err := s.PostByID(ctx, site.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"News"}, loaded.Categories)
	require.Equal(t, []string{"Tips"}, loaded.Tags)

	err = s.SetPostTerms(ctx, site.ID, post.ID, []int64{foreign.ID})
	require.ErrorIs(t, err, domain.ErrTermNotFound)

	require.NoError(t, s.SetPostTerms(ctx, site.ID, post.ID, []int64{news.ID}))
	loaded, err = s.PostByID(ctx, site.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"News"}, loaded.Categories)
	require.Empty(t, loaded.Tags)
}

func TestSiteOptions_UpsertAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	site := mustCreateSite(t, s, "Main", "https://example.com")

	require.NoError(t, s.SetSiteOption(ctx, site.ID, "blogdescription", "Just another network site"))
	require.NoError(t, s.SetSiteOption(ctx, site.ID, "blogdescription", "Updated tagline"))

	value, ok, err := s.SiteOption(ctx, site.ID, "blogdescription")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Updated tagline", value)

	_, ok, err = s.SiteOption(ctx, site.ID, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	all, err := s.SiteOptions(ctx, site.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"blogdescription": "Updated tagline"}, all)
}

func TestCreatePost_DefaultsApplied(t *testing.T) {
	s := newTestStore(t)
	site := mustCreateSite(t, s, "Main", "https://example.com")

	post := mustCreatePost(t, s, domain.Post{SiteID: site.ID, Title: "Hello", URL: "https://example.com/hello"})
	require.Equal(t, domain.StatusPublish, post.Status)
	require.Equal(t, "post", post.Type)
	require.False(t, post.PublishedAt.IsZero())
	require.WithinDuration(t, time.Now().UTC(), post.PublishedAt, time.Minute)

	_, err := s.CreatePost(context.Background(), domain.Post{SiteID: site.ID, Title: "", URL: "https://example.com/x"})
	require.Error(t, err)

	_, err = s.CreatePost(context.Background(), domain.Post{SiteID: 404, Title: "Orphan", URL: "https://example.com/y"})
	require.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "hello-world", Slugify("Hello, World!"))
	require.Equal(t, "tips-tricks-2026", Slugify("  Tips & Tricks 2026 "))
	require.Equal(t, "", Slugify("!!!"))
}

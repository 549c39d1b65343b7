package tools

import (
	"context"
	"strings"
	"time"

	"netpress/internal/domain"
)

type searchCall struct {
	siteID int64
	query  domain.SearchQuery
}

// fakePlatform is an in-memory Platform with injectable per-site search
// failures and a record of every search it served.
type fakePlatform struct {
	sites       []domain.Site
	postsBySite map[int64][]domain.Post
	meta        map[int64]map[string][]string
	failSearch  map[int64]error
	noResolve   bool

	searchCalls []searchCall
}

var _ domain.Platform = (*fakePlatform)(nil)

func newFakePlatform(sites ...domain.Site) *fakePlatform {
	return &fakePlatform{
		sites:       sites,
		postsBySite: make(map[int64][]domain.Post),
		meta:        make(map[int64]map[string][]string),
		failSearch:  make(map[int64]error),
	}
}

func (f *fakePlatform) addPost(post domain.Post) domain.Post {
	if post.Status == "" {
		post.Status = domain.StatusPublish
	}
	if post.Type == "" {
		post.Type = "post"
	}
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	if post.ID == 0 {
		post.ID = int64(len(f.postsBySite[post.SiteID]) + 1)
	}
	f.postsBySite[post.SiteID] = append(f.postsBySite[post.SiteID], post)
	return post
}

func (f *fakePlatform) Sites(context.Context) ([]domain.Site, error) {
	return f.sites, nil
}

func (f *fakePlatform) SiteByID(_ context.Context, id int64) (domain.Site, error) {
	for _, site := range f.sites {
		if site.ID == id {
			return site, nil
		}
	}
	return domain.Site{}, domain.Wrap(domain.CodeSiteUnresolved, "fake.SiteByID", domain.ErrSiteNotFound)
}

func (f *fakePlatform) MainSite(_ context.Context) (domain.Site, error) {
	for _, site := range f.sites {
		if site.Main {
			return site, nil
		}
	}
	return domain.Site{}, domain.Wrap(domain.CodeSiteUnresolved, "fake.MainSite", domain.ErrSiteNotFound)
}

func (f *fakePlatform) SiteCount(context.Context) (int, error) {
	return len(f.sites), nil
}

func (f *fakePlatform) ResolveSite(_ context.Context, host, path string) (domain.Site, bool, error) {
	if f.noResolve {
		return domain.Site{}, false, nil
	}
	var best domain.Site
	bestLen := -1
	for _, site := range f.sites {
		if site.Host() != host {
			continue
		}
		prefix := site.PathPrefix()
		if prefix != "" && path != prefix && !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = site, len(prefix)
		}
	}
	return best, bestLen >= 0, nil
}

func (f *fakePlatform) SearchPosts(_ context.Context, siteID int64, q domain.SearchQuery) ([]domain.Post, error) {
	f.searchCalls = append(f.searchCalls, searchCall{siteID: siteID, query: q})
	if err := f.failSearch[siteID]; err != nil {
		return nil, err
	}
	needle := strings.ToLower(q.Text)
	var out []domain.Post
	for _, post := range f.postsBySite[siteID] {
		if post.Status != domain.StatusPublish {
			continue
		}
		if len(q.PostTypes) > 0 && !containsString(q.PostTypes, post.Type) {
			continue
		}
		if !strings.Contains(strings.ToLower(post.Title+" "+post.Content), needle) {
			continue
		}
		out = append(out, post)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakePlatform) PostByURL(_ context.Context, siteID int64, rawURL string) (domain.Post, bool, error) {
	for _, post := range f.postsBySite[siteID] {
		if urlKey(post.URL) != urlKey(rawURL) {
			continue
		}
		if post.Status == domain.StatusTrash {
			return domain.Post{}, false, domain.Wrap(domain.CodeNotFound, "fake.PostByURL", domain.ErrPostTrashed)
		}
		return post, true, nil
	}
	return domain.Post{}, false, nil
}

func (f *fakePlatform) PostTypes(context.Context, int64) ([]domain.PostTypeInfo, error) {
	return nil, nil
}

func (f *fakePlatform) Taxonomies(context.Context, int64) ([]domain.TaxonomyInfo, error) {
	return nil, nil
}

func (f *fakePlatform) PostMeta(_ context.Context, _ int64, postID int64) (map[string][]string, error) {
	return f.meta[postID], nil
}

func urlKey(raw string) string {
	host, path := domain.SplitURL(raw)
	return host + path
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// Package tools holds the tool providers that feed the registry: the
// baseline single-site set and the network-wide set that overrides it by
// name at a higher priority.
package tools

import (
	"sort"
	"strings"
	"sync"

	"netpress/internal/domain"
	"netpress/internal/infra/render"
)

const dateLayout = "2006-01-02"

// SearchSettings holds the configured search defaults both providers read.
// Config reloads swap them through Apply while handlers are serving, so
// reads go through a lock.
type SearchSettings struct {
	mu    sync.RWMutex
	limit int
	types []string
}

func NewSearchSettings(cfg domain.SearchConfig) *SearchSettings {
	s := &SearchSettings{}
	s.Apply(cfg)
	return s
}

// Apply installs the configured defaults. Zero values fall back to the
// package defaults, mirroring config normalization.
func (s *SearchSettings) Apply(cfg domain.SearchConfig) {
	limit := cfg.PerSiteLimit
	if limit <= 0 {
		limit = domain.DefaultSearchPerSiteLimit
	}
	types := append([]string(nil), cfg.DefaultPostTypes...)
	if len(types) == 0 {
		types = domain.DefaultSearchPostTypes()
	}

	s.mu.Lock()
	s.limit, s.types = limit, types
	s.mu.Unlock()
}

// resolve merges per-call parameters over the configured defaults: an
// explicit per_site_limit or post_types wins, everything else falls back.
func (s *SearchSettings) resolve(params domain.Params) (int, []string) {
	s.mu.RLock()
	limit, types := s.limit, s.types
	s.mu.RUnlock()

	if n, ok := params.Int("per_site_limit"); ok && n > 0 {
		limit = n
	}
	if requested := params.StringSlice("post_types"); len(requested) > 0 {
		types = requested
	}
	return limit, types
}

// searchHit is one search result annotated with its owning site.
func searchHit(post domain.Post, site domain.Site) map[string]any {
	return map[string]any{
		"title":     post.Title,
		"url":       post.URL,
		"excerpt":   postExcerpt(post),
		"post_type": post.Type,
		"date":      post.PublishedAt.Format(dateLayout),
		"author":    post.Author,
		"site_id":   site.ID,
		"site_name": site.Name,
		"site_url":  site.URL,
	}
}

// postPayload is the full reader payload for one post.
func postPayload(post domain.Post, site domain.Site) map[string]any {
	text := render.Text(post.Content)
	payload := map[string]any{
		"id":             post.ID,
		"title":          post.Title,
		"content":        post.Content,
		"plain_text":     text,
		"excerpt":        postExcerpt(post),
		"content_length": len(post.Content),
		"word_count":     render.WordCount(text),
		"permalink":      post.URL,
		"type":           post.Type,
		"status":         string(post.Status),
		"date":           post.PublishedAt.Format(dateLayout),
		"author":         post.Author,
		"categories":     stringList(post.Categories),
		"tags":           stringList(post.Tags),
		"site_id":        site.ID,
		"site_name":      site.Name,
		"site_url":       site.URL,
	}
	if post.FeaturedURL != "" {
		payload["featured_image"] = post.FeaturedURL
	}
	return payload
}

func postExcerpt(post domain.Post) string {
	if strings.TrimSpace(post.Excerpt) != "" {
		return render.Text(post.Excerpt)
	}
	return render.Excerpt(post.Content, render.DefaultExcerptWords)
}

// customFields collapses a meta map for the reader payload: underscore-
// prefixed keys are internal and dropped, single-valued fields become
// scalars.
func customFields(meta map[string][]string) map[string]any {
	fields := make(map[string]any)
	keys := make([]string, 0, len(meta))
	for key := range meta {
		if strings.HasPrefix(key, "_") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := meta[key]
		switch len(values) {
		case 0:
		case 1:
			fields[key] = values[0]
		default:
			fields[key] = append([]string(nil), values...)
		}
	}
	return fields
}

func stringList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"netpress/internal/domain"
)

// Default registrations seeded for every new site. Mirrors what a stock
// install exposes before anything custom is registered.
var defaultPostTypes = []domain.PostTypeInfo{
	{Name: "post", Label: "Posts", SingularLabel: "Post", Hierarchical: false, Public: true},
	{Name: "page", Label: "Pages", SingularLabel: "Page", Hierarchical: true, Public: true},
	{Name: "attachment", Label: "Media", SingularLabel: "Media", Hierarchical: false, Public: true},
}

var defaultTaxonomies = []domain.TaxonomyInfo{
	{Name: "category", Label: "Categories", SingularLabel: "Category", Hierarchical: true, Public: true, PostTypes: []string{"post"}},
	{Name: "post_tag", Label: "Tags", SingularLabel: "Tag", Hierarchical: false, Public: true, PostTypes: []string{"post"}},
	{Name: "post_format", Label: "Formats", SingularLabel: "Format", Hierarchical: false, Public: true, PostTypes: []string{"post"}},
}

const siteColumns = `id, name, url, public, archived, spam, deleted, main_site`

func scanSite(scanner interface{ Scan(...any) error }) (domain.Site, error) {
	var site domain.Site
	var public, archived, spam, deleted, main int
	if err := scanner.Scan(&site.ID, &site.Name, &site.URL, &public, &archived, &spam, &deleted, &main); err != nil {
		return domain.Site{}, err
	}
	site.Public = public != 0
	site.Archived = archived != 0
	site.Spam = spam != 0
	site.Deleted = deleted != 0
	site.Main = main != 0
	return site, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateSite inserts a site and seeds its default post types and taxonomies.
// The first site created becomes the main site unless one already exists.
func (s *Store) CreateSite(ctx context.Context, site domain.Site) (domain.Site, error) {
	if err := s.ready(); err != nil {
		return domain.Site{}, err
	}
	if strings.TrimSpace(site.URL) == "" {
		return domain.Site{}, domain.E(domain.CodeInvalidArgument, "store.CreateSite", "site url is required", nil)
	}
	if strings.TrimSpace(site.Name) == "" {
		return domain.Site{}, domain.E(domain.CodeInvalidArgument, "store.CreateSite", "site name is required", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
	}
	defer func() { _ = tx.Rollback() }()

	if !site.Main {
		var mains int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites WHERE main_site = 1`).Scan(&mains); err != nil {
			return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
		}
		site.Main = mains == 0
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx, `
INSERT INTO sites (name, url, url_norm, public, archived, spam, deleted, main_site, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		site.Name, site.URL, normalizeURL(site.URL),
		boolInt(site.Public), boolInt(site.Archived), boolInt(site.Spam), boolInt(site.Deleted),
		boolInt(site.Main), now, now)
	if err != nil {
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
	}
	site.ID = id

	for _, pt := range defaultPostTypes {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO post_types (site_id, name, label, singular_label, hierarchical, public)
VALUES (?, ?, ?, ?, ?, ?)`,
			id, pt.Name, pt.Label, pt.SingularLabel, boolInt(pt.Hierarchical), boolInt(pt.Public)); err != nil {
			return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
		}
	}
	for _, tax := range defaultTaxonomies {
		if err := upsertTaxonomyTx(ctx, tx, id, tax); err != nil {
			return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.CreateSite", err)
	}
	return site, nil
}

// UpdateSite rewrites a site's mutable fields.
func (s *Store) UpdateSite(ctx context.Context, site domain.Site) (domain.Site, error) {
	if err := s.ready(); err != nil {
		return domain.Site{}, err
	}
	if site.ID <= 0 {
		return domain.Site{}, domain.E(domain.CodeInvalidArgument, "store.UpdateSite", "site id is required", nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
UPDATE sites
SET name = ?, url = ?, url_norm = ?, public = ?, archived = ?, spam = ?, deleted = ?, updated_at = ?
WHERE id = ?`,
		site.Name, site.URL, normalizeURL(site.URL),
		boolInt(site.Public), boolInt(site.Archived), boolInt(site.Spam), boolInt(site.Deleted),
		now, site.ID)
	if err != nil {
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.UpdateSite", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.UpdateSite", err)
	}
	if affected == 0 {
		return domain.Site{}, domain.Wrap(domain.CodeSiteUnresolved, "store.UpdateSite", domain.ErrSiteNotFound)
	}
	return s.SiteByID(ctx, site.ID)
}

// DeleteSite removes a site and, through foreign keys, all of its content.
func (s *Store) DeleteSite(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.DeleteSite", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.DeleteSite", err)
	}
	if affected == 0 {
		return domain.Wrap(domain.CodeSiteUnresolved, "store.DeleteSite", domain.ErrSiteNotFound)
	}
	return nil
}

// Sites returns all sites in site-ID order.
func (s *Store) Sites(ctx context.Context) ([]domain.Site, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+siteColumns+`
FROM sites
ORDER BY id ASC`)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Sites", err)
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.Sites", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Sites", err)
	}
	return sites, nil
}

// SiteByID returns one site.
func (s *Store) SiteByID(ctx context.Context, id int64) (domain.Site, error) {
	if err := s.ready(); err != nil {
		return domain.Site{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+siteColumns+`
FROM sites
WHERE id = ?`, id)
	site, err := scanSite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Site{}, domain.Wrap(domain.CodeSiteUnresolved, "store.SiteByID", domain.ErrSiteNotFound)
		}
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.SiteByID", err)
	}
	return site, nil
}

// MainSite returns the network's main site.
func (s *Store) MainSite(ctx context.Context) (domain.Site, error) {
	if err := s.ready(); err != nil {
		return domain.Site{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+siteColumns+`
FROM sites
WHERE main_site = 1
ORDER BY id ASC
LIMIT 1`)
	site, err := scanSite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Site{}, domain.Wrap(domain.CodeSiteUnresolved, "store.MainSite", domain.ErrSiteNotFound)
		}
		return domain.Site{}, domain.Wrap(domain.CodeUnavailable, "store.MainSite", err)
	}
	return site, nil
}

// SiteCount returns the total number of sites, eligible or not.
func (s *Store) SiteCount(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites`).Scan(&count); err != nil {
		return 0, domain.Wrap(domain.CodeUnavailable, "store.SiteCount", err)
	}
	return count, nil
}

// ResolveSite maps host+path onto the serving site: host must match, and
// among matching sites the longest path prefix wins. Path-based networks
// therefore resolve subsite URLs to the subsite, not the main site.
func (s *Store) ResolveSite(ctx context.Context, host, path string) (domain.Site, bool, error) {
	if err := s.ready(); err != nil {
		return domain.Site{}, false, err
	}
	sites, err := s.Sites(ctx)
	if err != nil {
		return domain.Site{}, false, err
	}

	host = strings.ToLower(strings.TrimSpace(host))
	if path == "" {
		path = "/"
	}

	var best domain.Site
	bestLen := -1
	for _, site := range sites {
		if site.Host() != host {
			continue
		}
		prefix := site.PathPrefix()
		if !pathHasPrefix(path, prefix) {
			continue
		}
		if len(prefix) > bestLen {
			best = site
			bestLen = len(prefix)
		}
	}
	if bestLen < 0 {
		return domain.Site{}, false, nil
	}
	return best, true, nil
}

// pathHasPrefix reports whether path lives under prefix at a segment
// boundary, so "/blogger" does not match the "/blog" site.
func pathHasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}

// normalizeURL canonicalizes a URL for storage and lookup: scheme stripped,
// host lowercased, trailing slash removed. Path case is preserved.
func normalizeURL(raw string) string {
	rest := strings.TrimSpace(raw)
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return strings.ToLower(rest[:idx]) + strings.TrimSuffix(rest[idx:], "/")
	}
	return strings.ToLower(rest)
}

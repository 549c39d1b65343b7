package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"netpress/internal/domain"
)

// CreateTerm inserts a term. The slug defaults to a slugified name.
func (s *Store) CreateTerm(ctx context.Context, term domain.Term) (domain.Term, error) {
	if err := s.ready(); err != nil {
		return domain.Term{}, err
	}
	if term.SiteID <= 0 {
		return domain.Term{}, domain.E(domain.CodeInvalidArgument, "store.CreateTerm", "site id is required", nil)
	}
	if strings.TrimSpace(term.Name) == "" {
		return domain.Term{}, domain.E(domain.CodeInvalidArgument, "store.CreateTerm", "term name is required", nil)
	}
	if strings.TrimSpace(term.Taxonomy) == "" {
		return domain.Term{}, domain.E(domain.CodeInvalidArgument, "store.CreateTerm", "taxonomy is required", nil)
	}
	if term.Slug == "" {
		term.Slug = Slugify(term.Name)
	}
	if _, err := s.SiteByID(ctx, term.SiteID); err != nil {
		return domain.Term{}, err
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO terms (site_id, taxonomy, name, slug)
VALUES (?, ?, ?, ?)`, term.SiteID, term.Taxonomy, term.Name, term.Slug)
	if err != nil {
		return domain.Term{}, domain.Wrap(domain.CodeUnavailable, "store.CreateTerm", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Term{}, domain.Wrap(domain.CodeUnavailable, "store.CreateTerm", err)
	}
	term.ID = id
	return term, nil
}

// UpdateTerm rewrites a term's name and slug.
func (s *Store) UpdateTerm(ctx context.Context, term domain.Term) (domain.Term, error) {
	if err := s.ready(); err != nil {
		return domain.Term{}, err
	}
	if term.ID <= 0 || term.SiteID <= 0 {
		return domain.Term{}, domain.E(domain.CodeInvalidArgument, "store.UpdateTerm", "term and site ids are required", nil)
	}
	if term.Slug == "" {
		term.Slug = Slugify(term.Name)
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE terms
SET name = ?, slug = ?
WHERE id = ? AND site_id = ?`, term.Name, term.Slug, term.ID, term.SiteID)
	if err != nil {
		return domain.Term{}, domain.Wrap(domain.CodeUnavailable, "store.UpdateTerm", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Term{}, domain.Wrap(domain.CodeUnavailable, "store.UpdateTerm", err)
	}
	if affected == 0 {
		return domain.Term{}, domain.Wrap(domain.CodeNotFound, "store.UpdateTerm", domain.ErrTermNotFound)
	}
	return s.termByID(ctx, term.SiteID, term.ID)
}

// DeleteTerm removes a term and its attachments.
func (s *Store) DeleteTerm(ctx context.Context, siteID, termID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM terms WHERE id = ? AND site_id = ?`, termID, siteID)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.DeleteTerm", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.DeleteTerm", err)
	}
	if affected == 0 {
		return domain.Wrap(domain.CodeNotFound, "store.DeleteTerm", domain.ErrTermNotFound)
	}
	return nil
}

// Terms lists a site's terms, optionally filtered by taxonomy.
func (s *Store) Terms(ctx context.Context, siteID int64, taxonomy string) ([]domain.Term, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `
SELECT id, site_id, taxonomy, name, slug
FROM terms
WHERE site_id = ?`
	args := []any{siteID}
	if taxonomy != "" {
		query += ` AND taxonomy = ?`
		args = append(args, taxonomy)
	}
	query += ` ORDER BY taxonomy ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Terms", err)
	}
	defer rows.Close()

	var terms []domain.Term
	for rows.Next() {
		var term domain.Term
		if err := rows.Scan(&term.ID, &term.SiteID, &term.Taxonomy, &term.Name, &term.Slug); err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.Terms", err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Terms", err)
	}
	return terms, nil
}

func (s *Store) termByID(ctx context.Context, siteID, termID int64) (domain.Term, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, site_id, taxonomy, name, slug
FROM terms
WHERE id = ? AND site_id = ?`, termID, siteID)
	var term domain.Term
	if err := row.Scan(&term.ID, &term.SiteID, &term.Taxonomy, &term.Name, &term.Slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Term{}, domain.Wrap(domain.CodeNotFound, "store.termByID", domain.ErrTermNotFound)
		}
		return domain.Term{}, domain.Wrap(domain.CodeUnavailable, "store.termByID", err)
	}
	return term, nil
}

// SetPostTerms replaces a post's term attachments wholesale. Every term must
// belong to the post's site.
func (s *Store) SetPostTerms(ctx context.Context, siteID, postID int64, termIDs []int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.PostByID(ctx, siteID, postID); err != nil {
		return err
	}
	for _, termID := range termIDs {
		if _, err := s.termByID(ctx, siteID, termID); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetPostTerms", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_terms WHERE post_id = ?`, postID); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetPostTerms", err)
	}
	for _, termID := range termIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO post_terms (post_id, term_id)
VALUES (?, ?)`, postID, termID); err != nil {
			return domain.Wrap(domain.CodeUnavailable, "store.SetPostTerms", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetPostTerms", err)
	}
	return nil
}

// RegisterPostType upserts a content-type registration on a site.
func (s *Store) RegisterPostType(ctx context.Context, siteID int64, info domain.PostTypeInfo) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(info.Name) == "" {
		return domain.E(domain.CodeInvalidArgument, "store.RegisterPostType", "post type name is required", nil)
	}
	if _, err := s.SiteByID(ctx, siteID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO post_types (site_id, name, label, singular_label, hierarchical, public)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(site_id, name) DO UPDATE SET
	label = excluded.label,
	singular_label = excluded.singular_label,
	hierarchical = excluded.hierarchical,
	public = excluded.public`,
		siteID, info.Name, info.Label, info.SingularLabel, boolInt(info.Hierarchical), boolInt(info.Public))
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.RegisterPostType", err)
	}
	return nil
}

// RegisterTaxonomy upserts a taxonomy registration on a site.
func (s *Store) RegisterTaxonomy(ctx context.Context, siteID int64, info domain.TaxonomyInfo) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(info.Name) == "" {
		return domain.E(domain.CodeInvalidArgument, "store.RegisterTaxonomy", "taxonomy name is required", nil)
	}
	if _, err := s.SiteByID(ctx, siteID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.RegisterTaxonomy", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertTaxonomyTx(ctx, tx, siteID, info); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.RegisterTaxonomy", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.RegisterTaxonomy", err)
	}
	return nil
}

func upsertTaxonomyTx(ctx context.Context, tx *sql.Tx, siteID int64, info domain.TaxonomyInfo) error {
	postTypes := info.PostTypes
	if postTypes == nil {
		postTypes = []string{}
	}
	encoded, err := json.Marshal(postTypes)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO taxonomies (site_id, name, label, singular_label, hierarchical, public, post_types)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(site_id, name) DO UPDATE SET
	label = excluded.label,
	singular_label = excluded.singular_label,
	hierarchical = excluded.hierarchical,
	public = excluded.public,
	post_types = excluded.post_types`,
		siteID, info.Name, info.Label, info.SingularLabel,
		boolInt(info.Hierarchical), boolInt(info.Public), string(encoded))
	return err
}

// PostTypes returns a site's registered content types with published counts,
// name-sorted.
func (s *Store) PostTypes(ctx context.Context, siteID int64) ([]domain.PostTypeInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT pt.name, pt.label, pt.singular_label, pt.hierarchical, pt.public,
	(SELECT COUNT(*) FROM posts p
	 WHERE p.site_id = pt.site_id AND p.post_type = pt.name AND p.status = 'publish')
FROM post_types pt
WHERE pt.site_id = ?
ORDER BY pt.name ASC`, siteID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.PostTypes", err)
	}
	defer rows.Close()

	var infos []domain.PostTypeInfo
	for rows.Next() {
		var info domain.PostTypeInfo
		var hierarchical, public int
		if err := rows.Scan(&info.Name, &info.Label, &info.SingularLabel, &hierarchical, &public, &info.Count); err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.PostTypes", err)
		}
		info.Hierarchical = hierarchical != 0
		info.Public = public != 0
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.PostTypes", err)
	}
	return infos, nil
}

// Taxonomies returns a site's taxonomies with term usage, name-sorted. Term
// counts cover attachments to published posts only; unused terms are absent.
func (s *Store) Taxonomies(ctx context.Context, siteID int64) ([]domain.TaxonomyInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT name, label, singular_label, hierarchical, public, post_types
FROM taxonomies
WHERE site_id = ?
ORDER BY name ASC`, siteID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Taxonomies", err)
	}
	defer rows.Close()

	var infos []domain.TaxonomyInfo
	for rows.Next() {
		var info domain.TaxonomyInfo
		var hierarchical, public int
		var encodedTypes string
		if err := rows.Scan(&info.Name, &info.Label, &info.SingularLabel, &hierarchical, &public, &encodedTypes); err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.Taxonomies", err)
		}
		info.Hierarchical = hierarchical != 0
		info.Public = public != 0
		if err := json.Unmarshal([]byte(encodedTypes), &info.PostTypes); err != nil {
			info.PostTypes = nil
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Taxonomies", err)
	}

	for i := range infos {
		counts, err := s.termUsage(ctx, siteID, infos[i].Name)
		if err != nil {
			return nil, err
		}
		infos[i].TermCounts = counts
	}
	return infos, nil
}

func (s *Store) termUsage(ctx context.Context, siteID int64, taxonomy string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.name, COUNT(pt.post_id)
FROM terms t
JOIN post_terms pt ON pt.term_id = t.id
JOIN posts p ON p.id = pt.post_id
WHERE t.site_id = ? AND t.taxonomy = ? AND p.status = 'publish'
GROUP BY t.id
HAVING COUNT(pt.post_id) > 0`, siteID, taxonomy)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.termUsage", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.termUsage", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.termUsage", err)
	}
	return counts, nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics to
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

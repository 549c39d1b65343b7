package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"netpress/internal/domain"
)

const postColumns = `id, site_id, title, content, excerpt, post_type, status, url, author, featured_url, published_at`

func scanPost(scanner interface{ Scan(...any) error }) (domain.Post, error) {
	var post domain.Post
	var status, published string
	if err := scanner.Scan(&post.ID, &post.SiteID, &post.Title, &post.Content, &post.Excerpt,
		&post.Type, &status, &post.URL, &post.Author, &post.FeaturedURL, &published); err != nil {
		return domain.Post{}, err
	}
	post.Status = domain.PostStatus(status)
	if ts, err := time.Parse(time.RFC3339Nano, published); err == nil {
		post.PublishedAt = ts
	}
	return post, nil
}

func validStatus(status domain.PostStatus) bool {
	switch status {
	case domain.StatusPublish, domain.StatusDraft, domain.StatusPending,
		domain.StatusPrivate, domain.StatusTrash:
		return true
	default:
		return false
	}
}

// CreatePost inserts a post on a site. Status defaults to publish, type to
// post, publish time to now.
func (s *Store) CreatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	if err := s.ready(); err != nil {
		return domain.Post{}, err
	}
	if post.SiteID <= 0 {
		return domain.Post{}, domain.E(domain.CodeInvalidArgument, "store.CreatePost", "site id is required", nil)
	}
	if strings.TrimSpace(post.Title) == "" {
		return domain.Post{}, domain.E(domain.CodeInvalidArgument, "store.CreatePost", "post title is required", nil)
	}
	if strings.TrimSpace(post.URL) == "" {
		return domain.Post{}, domain.E(domain.CodeInvalidArgument, "store.CreatePost", "post url is required", nil)
	}
	if post.Status == "" {
		post.Status = domain.StatusPublish
	}
	if !validStatus(post.Status) {
		return domain.Post{}, domain.E(domain.CodeInvalidArgument, "store.CreatePost", "unknown post status "+string(post.Status), nil)
	}
	if post.Type == "" {
		post.Type = "post"
	}
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now().UTC()
	}

	if _, err := s.SiteByID(ctx, post.SiteID); err != nil {
		return domain.Post{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
INSERT INTO posts (site_id, title, content, excerpt, post_type, status, url, url_norm, author, featured_url, published_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.SiteID, post.Title, post.Content, post.Excerpt, post.Type, string(post.Status),
		post.URL, normalizeURL(post.URL), post.Author, post.FeaturedURL,
		post.PublishedAt.UTC().Format(time.RFC3339Nano), now, now)
	if err != nil {
		return domain.Post{}, domain.Wrap(domain.CodeUnavailable, "store.CreatePost", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Post{}, domain.Wrap(domain.CodeUnavailable, "store.CreatePost", err)
	}
	post.ID = id
	return post, nil
}

// UpdatePost rewrites a post's mutable fields, status transitions included.
func (s *Store) UpdatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	if err := s.ready(); err != nil {
		return domain.Post{}, err
	}
	if post.ID <= 0 || post.SiteID <= 0 {
		return domain.Post{}, domain.E(domain.CodeInvalidArgument, "store.UpdatePost", "post and site ids are required", nil)
	}
	if !validStatus(post.Status) {
		return domain.Post{}, domain.E(domain.CodeInvalidArgument, "store.UpdatePost", "unknown post status "+string(post.Status), nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
UPDATE posts
SET title = ?, content = ?, excerpt = ?, post_type = ?, status = ?, url = ?, url_norm = ?, author = ?, featured_url = ?, published_at = ?, updated_at = ?
WHERE id = ? AND site_id = ?`,
		post.Title, post.Content, post.Excerpt, post.Type, string(post.Status),
		post.URL, normalizeURL(post.URL), post.Author, post.FeaturedURL,
		post.PublishedAt.UTC().Format(time.RFC3339Nano), now, post.ID, post.SiteID)
	if err != nil {
		return domain.Post{}, domain.Wrap(domain.CodeUnavailable, "store.UpdatePost", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Post{}, domain.Wrap(domain.CodeUnavailable, "store.UpdatePost", err)
	}
	if affected == 0 {
		return domain.Post{}, domain.Wrap(domain.CodeNotFound, "store.UpdatePost", domain.ErrPostNotFound)
	}
	return s.PostByID(ctx, post.SiteID, post.ID)
}

// DeletePost removes a post permanently. Trashing is a status transition via
// UpdatePost, not a delete.
func (s *Store) DeletePost(ctx context.Context, siteID, postID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND site_id = ?`, postID, siteID)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.DeletePost", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.DeletePost", err)
	}
	if affected == 0 {
		return domain.Wrap(domain.CodeNotFound, "store.DeletePost", domain.ErrPostNotFound)
	}
	return nil
}

// PostByID returns one post with its category and tag names populated.
func (s *Store) PostByID(ctx context.Context, siteID, postID int64) (domain.Post, error) {
	if err := s.ready(); err != nil {
		return domain.Post{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE id = ? AND site_id = ?`, postID, siteID)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, domain.Wrap(domain.CodeNotFound, "store.PostByID", domain.ErrPostNotFound)
		}
		return domain.Post{}, domain.Wrap(domain.CodeUnavailable, "store.PostByID", err)
	}
	if err := s.attachTermNames(ctx, &post); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// Posts returns all posts on a site in publish-date-descending order.
func (s *Store) Posts(ctx context.Context, siteID int64) ([]domain.Post, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE site_id = ?
ORDER BY published_at DESC, id ASC`, siteID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.Posts", err)
	}
	defer rows.Close()
	return collectPosts(rows, "store.Posts")
}

// SearchPosts runs one relevance-ordered search against one site. Candidates
// come from SQL; scoring happens here: title hits weigh 3, excerpt hits 2,
// content hits 1, ties broken by publish date (newest first) then ID.
func (s *Store) SearchPosts(ctx context.Context, siteID int64, q domain.SearchQuery) ([]domain.Post, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "store.SearchPosts", "search text is required", nil)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchPerSiteLimit
	}

	pattern := "%" + escapeLike(text) + "%"
	args := []any{siteID}
	query := `
SELECT ` + postColumns + `
FROM posts
WHERE site_id = ? AND status = 'publish'`
	if len(q.PostTypes) > 0 {
		query += ` AND post_type IN (` + placeholders(len(q.PostTypes)) + `)`
		for _, pt := range q.PostTypes {
			args = append(args, pt)
		}
	}
	query += ` AND (title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`
	args = append(args, pattern, pattern, pattern)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.SearchPosts", err)
	}
	defer rows.Close()

	candidates, err := collectPosts(rows, "store.SearchPosts")
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(text)
	scores := make(map[int64]int, len(candidates))
	for _, post := range candidates {
		scores[post.ID] = 3*strings.Count(strings.ToLower(post.Title), needle) +
			2*strings.Count(strings.ToLower(post.Excerpt), needle) +
			strings.Count(strings.ToLower(post.Content), needle)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	s.logger.Debug("search ran",
		zap.Int64("site_id", siteID),
		zap.String("query", text),
		zap.Int("hits", len(candidates)))
	return candidates, nil
}

// PostByURL resolves a full URL to one post on one site. A trashed match is
// an error, not a miss, so callers can report it precisely.
func (s *Store) PostByURL(ctx context.Context, siteID int64, rawURL string) (domain.Post, bool, error) {
	if err := s.ready(); err != nil {
		return domain.Post{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE site_id = ? AND url_norm = ?`, siteID, normalizeURL(rawURL))
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, false, nil
		}
		return domain.Post{}, false, domain.Wrap(domain.CodeUnavailable, "store.PostByURL", err)
	}
	if post.Status == domain.StatusTrash {
		return domain.Post{}, false, domain.Wrap(domain.CodeNotFound, "store.PostByURL", domain.ErrPostTrashed)
	}
	if err := s.attachTermNames(ctx, &post); err != nil {
		return domain.Post{}, false, err
	}
	return post, true, nil
}

// PostMeta returns the custom-field map for one post.
func (s *Store) PostMeta(ctx context.Context, siteID, postID int64) (map[string][]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.PostByID(ctx, siteID, postID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT meta_key, meta_value
FROM post_meta
WHERE post_id = ?
ORDER BY meta_key ASC, rowid ASC`, postID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.PostMeta", err)
	}
	defer rows.Close()

	meta := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.PostMeta", err)
		}
		meta[key] = append(meta[key], value)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.PostMeta", err)
	}
	return meta, nil
}

// SetPostMeta replaces a post's custom-field map wholesale.
func (s *Store) SetPostMeta(ctx context.Context, siteID, postID int64, meta map[string][]string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.PostByID(ctx, siteID, postID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetPostMeta", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_meta WHERE post_id = ?`, postID); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetPostMeta", err)
	}
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range meta[key] {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO post_meta (post_id, meta_key, meta_value)
VALUES (?, ?, ?)`, postID, key, value); err != nil {
				return domain.Wrap(domain.CodeUnavailable, "store.SetPostMeta", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetPostMeta", err)
	}
	return nil
}

func collectPosts(rows *sql.Rows, op string) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, op, err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	return posts, nil
}

// attachTermNames fills Categories and Tags from the term attachments.
func (s *Store) attachTermNames(ctx context.Context, post *domain.Post) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.taxonomy, t.name
FROM post_terms pt
JOIN terms t ON t.id = pt.term_id
WHERE pt.post_id = ?
ORDER BY t.name ASC`, post.ID)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.attachTermNames", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taxonomy, name string
		if err := rows.Scan(&taxonomy, &name); err != nil {
			return domain.Wrap(domain.CodeUnavailable, "store.attachTermNames", err)
		}
		switch taxonomy {
		case "category":
			post.Categories = append(post.Categories, name)
		case "post_tag":
			post.Tags = append(post.Tags, name)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.attachTermNames", err)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

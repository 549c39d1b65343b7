// Package store implements the content platform on SQLite. It is the system
// of record for sites, posts, terms, and options; every read the tool layer
// performs and every write the admin API performs lands here.
package store

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"netpress/internal/domain"
)

const contentSchema = `
CREATE TABLE IF NOT EXISTS sites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	url_norm TEXT NOT NULL UNIQUE,
	public INTEGER NOT NULL DEFAULT 1,
	archived INTEGER NOT NULL DEFAULT 0,
	spam INTEGER NOT NULL DEFAULT 0,
	deleted INTEGER NOT NULL DEFAULT 0,
	main_site INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	site_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	excerpt TEXT NOT NULL DEFAULT '',
	post_type TEXT NOT NULL DEFAULT 'post',
	status TEXT NOT NULL DEFAULT 'publish',
	url TEXT NOT NULL,
	url_norm TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	featured_url TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY(site_id) REFERENCES sites(id) ON DELETE CASCADE,
	UNIQUE(site_id, url_norm)
);

CREATE INDEX IF NOT EXISTS idx_posts_site_status
ON posts(site_id, status, post_type);

CREATE TABLE IF NOT EXISTS post_types (
	site_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	label TEXT NOT NULL,
	singular_label TEXT NOT NULL,
	hierarchical INTEGER NOT NULL DEFAULT 0,
	public INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY(site_id, name),
	FOREIGN KEY(site_id) REFERENCES sites(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS taxonomies (
	site_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	label TEXT NOT NULL,
	singular_label TEXT NOT NULL,
	hierarchical INTEGER NOT NULL DEFAULT 0,
	public INTEGER NOT NULL DEFAULT 1,
	post_types TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY(site_id, name),
	FOREIGN KEY(site_id) REFERENCES sites(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS terms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	site_id INTEGER NOT NULL,
	taxonomy TEXT NOT NULL,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	FOREIGN KEY(site_id) REFERENCES sites(id) ON DELETE CASCADE,
	UNIQUE(site_id, taxonomy, slug)
);

CREATE TABLE IF NOT EXISTS post_terms (
	post_id INTEGER NOT NULL,
	term_id INTEGER NOT NULL,
	PRIMARY KEY(post_id, term_id),
	FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE,
	FOREIGN KEY(term_id) REFERENCES terms(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS post_meta (
	post_id INTEGER NOT NULL,
	meta_key TEXT NOT NULL,
	meta_value TEXT NOT NULL,
	FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_post_meta_post
ON post_meta(post_id, meta_key);

CREATE TABLE IF NOT EXISTS site_options (
	site_id INTEGER NOT NULL,
	option_name TEXT NOT NULL,
	option_value TEXT NOT NULL,
	PRIMARY KEY(site_id, option_name),
	FOREIGN KEY(site_id) REFERENCES sites(id) ON DELETE CASCADE
);`

// Config configures the content store.
type Config struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	Path string
}

// Store is the SQLite-backed content platform. It satisfies domain.Platform
// for readers; the mutating surface is used by the admin API only.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ domain.Platform = (*Store)(nil)

// Open opens (or creates) the content store and applies the schema.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "store.Open", "store path is required", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, "store.Open", "open database", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, domain.E(domain.CodeUnavailable, "store.Open", "set WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, domain.E(domain.CodeUnavailable, "store.Open", "enable foreign keys", err)
	}
	if _, err := db.Exec(contentSchema); err != nil {
		_ = db.Close()
		return nil, domain.E(domain.CodeUnavailable, "store.Open", "create schema", err)
	}

	logger.Info("content store opened", zap.String("path", cfg.Path))
	return &Store{db: db, logger: logger.Named("store")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return domain.ErrStoreClosed
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"netpress/internal/domain"
)

// SetSiteOption writes one site-scoped option.
func (s *Store) SetSiteOption(ctx context.Context, siteID int64, name, value string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return domain.E(domain.CodeInvalidArgument, "store.SetSiteOption", "option name is required", nil)
	}
	if _, err := s.SiteByID(ctx, siteID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO site_options (site_id, option_name, option_value)
VALUES (?, ?, ?)
ON CONFLICT(site_id, option_name) DO UPDATE SET
	option_value = excluded.option_value`, siteID, name, value)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "store.SetSiteOption", err)
	}
	return nil
}

// SiteOption reads one option. The bool result is false when unset.
func (s *Store) SiteOption(ctx context.Context, siteID int64, name string) (string, bool, error) {
	if err := s.ready(); err != nil {
		return "", false, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT option_value
FROM site_options
WHERE site_id = ? AND option_name = ?`, siteID, name)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, domain.Wrap(domain.CodeUnavailable, "store.SiteOption", err)
	}
	return value, true, nil
}

// SiteOptions returns all of a site's options.
func (s *Store) SiteOptions(ctx context.Context, siteID int64) (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT option_name, option_value
FROM site_options
WHERE site_id = ?
ORDER BY option_name ASC`, siteID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.SiteOptions", err)
	}
	defer rows.Close()

	options := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, domain.Wrap(domain.CodeUnavailable, "store.SiteOptions", err)
		}
		options[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "store.SiteOptions", err)
	}
	return options, nil
}

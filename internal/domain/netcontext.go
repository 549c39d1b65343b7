package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// NetworkContext is the cached document injected into outgoing AI requests:
// a network-wide view plus the summary of the request-scoped site.
type NetworkContext struct {
	Network     NetworkSummary `json:"network"`
	CurrentSite SiteSummary    `json:"current_site"`
}

// NetworkSummary describes the network as a whole. Sites holds per-site
// summaries for a sampled subset of eligible sites, in enumeration order.
type NetworkSummary struct {
	MainSiteID  int64         `json:"main_site_id"`
	MainSiteURL string        `json:"main_site_url"`
	TotalSites  int           `json:"total_sites"`
	Sites       []SiteSummary `json:"sites"`
}

// SiteSummary is one site's contribution to the document: identity plus
// post-type and taxonomy rollups.
type SiteSummary struct {
	ID         int64                      `json:"id"`
	Name       string                     `json:"name"`
	URL        string                     `json:"url"`
	PostTypes  map[string]PostTypeSummary `json:"post_types"`
	Taxonomies map[string]TaxonomySummary `json:"taxonomies,omitempty"`
}

type PostTypeSummary struct {
	Label         string `json:"label"`
	SingularLabel string `json:"singular_label"`
	Count         int64  `json:"count"`
	Hierarchical  bool   `json:"hierarchical"`
}

// TaxonomySummary carries a taxonomy's shape and its term usage. Terms maps
// term name to attached-object count; only terms with at least one attached
// object appear, and taxonomies with no qualifying terms are omitted from
// SiteSummary.Taxonomies entirely.
type TaxonomySummary struct {
	Label         string           `json:"label"`
	SingularLabel string           `json:"singular_label"`
	Hierarchical  bool             `json:"hierarchical"`
	PostTypes     []string         `json:"post_types"`
	Terms         map[string]int64 `json:"terms"`
}

// Fingerprint returns a stable content hash of the document, surfaced as an
// ETag by the admin API.
func (d NetworkContext) Fingerprint() string {
	data, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

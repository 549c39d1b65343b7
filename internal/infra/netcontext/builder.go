// Package netcontext builds and caches the network context document that
// gets injected into outgoing AI requests.
package netcontext

import (
	"context"

	"go.uber.org/zap"

	"netpress/internal/domain"
)

// Builder computes the context document from live platform state.
type Builder struct {
	platform domain.Platform
	logger   *zap.Logger
}

func NewBuilder(platform domain.Platform, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{platform: platform, logger: logger.Named("netcontext")}
}

// Build computes the document from the perspective of currentSiteID. The
// network section lists at most sampleSites eligible sites in enumeration
// order; the current site is summarized whether or not it is eligible.
func (b *Builder) Build(ctx context.Context, currentSiteID int64, sampleSites int) (domain.NetworkContext, error) {
	if sampleSites <= 0 {
		sampleSites = domain.DefaultContextSampleSites
	}

	sites, err := b.platform.Sites(ctx)
	if err != nil {
		return domain.NetworkContext{}, err
	}
	total, err := b.platform.SiteCount(ctx)
	if err != nil {
		return domain.NetworkContext{}, err
	}

	doc := domain.NetworkContext{}
	doc.Network.TotalSites = total
	if main, err := b.platform.MainSite(ctx); err == nil {
		doc.Network.MainSiteID = main.ID
		doc.Network.MainSiteURL = main.URL
	}

	sampled := 0
	for _, site := range sites {
		if !site.Eligible() {
			continue
		}
		if sampled >= sampleSites {
			break
		}
		summary, err := b.siteSummary(ctx, site)
		if err != nil {
			// One broken site must not take the whole document down.
			b.logger.Warn("site summary failed",
				zap.Int64("site_id", site.ID),
				zap.Error(err))
			continue
		}
		doc.Network.Sites = append(doc.Network.Sites, summary)
		sampled++
	}

	current, err := b.platform.SiteByID(ctx, currentSiteID)
	if err != nil {
		return domain.NetworkContext{}, err
	}
	currentSummary, err := b.siteSummary(ctx, current)
	if err != nil {
		return domain.NetworkContext{}, err
	}
	doc.CurrentSite = currentSummary
	return doc, nil
}

// SiteSummary computes the summary for a single site, the current-site slice
// of the full document.
func (b *Builder) SiteSummary(ctx context.Context, siteID int64) (domain.SiteSummary, error) {
	site, err := b.platform.SiteByID(ctx, siteID)
	if err != nil {
		return domain.SiteSummary{}, err
	}
	return b.siteSummary(ctx, site)
}

func (b *Builder) siteSummary(ctx context.Context, site domain.Site) (domain.SiteSummary, error) {
	summary := domain.SiteSummary{
		ID:        site.ID,
		Name:      site.Name,
		URL:       site.URL,
		PostTypes: map[string]domain.PostTypeSummary{},
	}

	types, err := b.platform.PostTypes(ctx, site.ID)
	if err != nil {
		return domain.SiteSummary{}, err
	}
	for _, pt := range types {
		if !pt.Public {
			continue
		}
		summary.PostTypes[pt.Name] = domain.PostTypeSummary{
			Label:         pt.Label,
			SingularLabel: pt.SingularLabel,
			Count:         pt.Count,
			Hierarchical:  pt.Hierarchical,
		}
	}

	utility := domain.UtilityTaxonomies()
	taxes, err := b.platform.Taxonomies(ctx, site.ID)
	if err != nil {
		return domain.SiteSummary{}, err
	}
	for _, tax := range taxes {
		if !tax.Public {
			continue
		}
		if _, ok := utility[tax.Name]; ok {
			continue
		}
		if len(tax.TermCounts) == 0 {
			continue
		}
		if summary.Taxonomies == nil {
			summary.Taxonomies = map[string]domain.TaxonomySummary{}
		}
		summary.Taxonomies[tax.Name] = domain.TaxonomySummary{
			Label:         tax.Label,
			SingularLabel: tax.SingularLabel,
			Hierarchical:  tax.Hierarchical,
			PostTypes:     append([]string(nil), tax.PostTypes...),
			Terms:         cloneCounts(tax.TermCounts),
		}
	}
	return summary, nil
}

func cloneCounts(counts map[string]int64) map[string]int64 {
	cloned := make(map[string]int64, len(counts))
	for name, count := range counts {
		cloned[name] = count
	}
	return cloned
}

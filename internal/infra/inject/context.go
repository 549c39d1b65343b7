package inject

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/netcontext"
)

// SlotSiteContext is the slot both context injectors contend for. One
// winner means one context message per request, never two.
const SlotSiteContext = "site-context"

const (
	networkPreamble = "Network context: the JSON document below describes the site network this conversation runs against, including each site's content types and taxonomy usage. Ground answers about the network in it."
	sitePreamble    = "Site context: the JSON document below describes the site this conversation runs against, including its content types and taxonomy usage. Ground answers about the site in it."
)

// NetworkInjector appends the cached network context document to outgoing
// requests as a single system message. Disabled or list-less requests pass
// through unchanged; a context fetch failure is logged, never surfaced.
type NetworkInjector struct {
	cache   *netcontext.Cache
	enabled atomic.Bool
	logger  *zap.Logger
}

func NewNetworkInjector(cache *netcontext.Cache, enabled bool, logger *zap.Logger) *NetworkInjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	inj := &NetworkInjector{cache: cache, logger: logger.Named("inject")}
	inj.enabled.Store(enabled)
	return inj
}

// SetEnabled flips the injector with a config reload.
func (i *NetworkInjector) SetEnabled(enabled bool) {
	i.enabled.Store(enabled)
}

// Register claims the site-context slot at network priority.
func (i *NetworkInjector) Register(chain *Chain) {
	chain.Register(SlotSiteContext, domain.PriorityNetwork, i.Inject)
}

func (i *NetworkInjector) Inject(ctx context.Context, req ChatRequest) (ChatRequest, error) {
	if !i.enabled.Load() || req.Messages == nil {
		return req, nil
	}
	doc, _, err := i.cache.Get(ctx)
	if err != nil {
		i.logger.Warn("network context unavailable, request left unchanged", zap.Error(err))
		return req, nil
	}
	return appendContextMessage(req, networkPreamble, doc)
}

// SiteInjector is the baseline context injector: the request-scoped site's
// summary only. The network injector outranks it in the shared slot.
type SiteInjector struct {
	builder *netcontext.Builder
	siteID  int64
	logger  *zap.Logger
}

func NewSiteInjector(builder *netcontext.Builder, siteID int64, logger *zap.Logger) *SiteInjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if siteID <= 0 {
		siteID = domain.DefaultCurrentSiteID
	}
	return &SiteInjector{builder: builder, siteID: siteID, logger: logger.Named("inject")}
}

// Register claims the site-context slot at baseline priority.
func (i *SiteInjector) Register(chain *Chain) {
	chain.Register(SlotSiteContext, domain.PriorityBaseline, i.Inject)
}

func (i *SiteInjector) Inject(ctx context.Context, req ChatRequest) (ChatRequest, error) {
	if req.Messages == nil {
		return req, nil
	}
	summary, err := i.builder.SiteSummary(ctx, i.siteID)
	if err != nil {
		i.logger.Warn("site context unavailable, request left unchanged", zap.Error(err))
		return req, nil
	}
	return appendContextMessage(req, sitePreamble, summary)
}

func appendContextMessage(req ChatRequest, preamble string, doc any) (ChatRequest, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return req, domain.E(domain.CodeInternal, "inject.appendContextMessage", "encode context document", err)
	}
	out := req.Clone()
	out.Messages = append(out.Messages, schema.SystemMessage(preamble+"\n\n"+string(payload)))
	return out, nil
}

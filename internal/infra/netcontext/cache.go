package netcontext

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/hooks"
)

// TransientStore is the keyed-blob surface the cache persists through.
type TransientStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Cache is the lazily rebuilt, event-invalidated context document. There is
// one cached entry under a fixed key with no expiry; it leaves the store
// only through Invalidate. Concurrent rebuilds race benignly: the transient
// store serializes writes, so the last build wins intact.
type Cache struct {
	builder *Builder
	store   TransientStore
	logger  *zap.Logger
	metrics domain.Metrics

	mu            sync.RWMutex
	currentSiteID int64
	sampleSites   int
}

func NewCache(builder *Builder, store TransientStore, currentSiteID int64, sampleSites int, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currentSiteID <= 0 {
		currentSiteID = domain.DefaultCurrentSiteID
	}
	if sampleSites <= 0 {
		sampleSites = domain.DefaultContextSampleSites
	}
	return &Cache{
		builder:       builder,
		store:         store,
		logger:        logger.Named("netcontext"),
		currentSiteID: currentSiteID,
		sampleSites:   sampleSites,
	}
}

// SetMetrics attaches a metrics sink. Without one, reads and rebuilds go
// unobserved but otherwise behave identically.
func (c *Cache) SetMetrics(metrics domain.Metrics) {
	c.metrics = metrics
}

// Get returns the cached document and its stored bytes, building and storing
// on a miss. Consecutive reads without an intervening mutation return
// identical bytes.
func (c *Cache) Get(ctx context.Context) (domain.NetworkContext, []byte, error) {
	raw, ok, err := c.store.Get(domain.ContextTransientKey)
	if err != nil {
		return domain.NetworkContext{}, nil, err
	}
	if ok {
		var doc domain.NetworkContext
		if err := json.Unmarshal(raw, &doc); err == nil {
			if c.metrics != nil {
				c.metrics.ObserveContextRead(true)
			}
			return doc, raw, nil
		}
		c.logger.Warn("cached context is unreadable, rebuilding", zap.Error(err))
	}
	if c.metrics != nil {
		c.metrics.ObserveContextRead(false)
	}
	return c.rebuild(ctx)
}

func (c *Cache) rebuild(ctx context.Context) (domain.NetworkContext, []byte, error) {
	c.mu.RLock()
	siteID, samples := c.currentSiteID, c.sampleSites
	c.mu.RUnlock()

	started := time.Now()
	doc, err := c.builder.Build(ctx, siteID, samples)
	if c.metrics != nil && err == nil {
		c.metrics.ObserveContextBuild(time.Since(started))
	}
	if err != nil {
		return domain.NetworkContext{}, nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.NetworkContext{}, nil, domain.E(domain.CodeInternal, "netcontext.rebuild", "encode context document", err)
	}
	if err := c.store.Set(domain.ContextTransientKey, raw); err != nil {
		return domain.NetworkContext{}, nil, err
	}
	c.logger.Info("context document rebuilt",
		zap.Int64("current_site", siteID),
		zap.Int("sampled_sites", len(doc.Network.Sites)),
		zap.String("fingerprint", doc.Fingerprint()))
	return doc, raw, nil
}

// Invalidate drops the cached document. The next Get rebuilds.
func (c *Cache) Invalidate(reason string) error {
	if err := c.store.Delete(domain.ContextTransientKey); err != nil {
		return err
	}
	c.logger.Info("context cache invalidated", zap.String("reason", reason))
	return nil
}

// UpdateScope applies a config change to the document's perspective,
// invalidating when it actually moved.
func (c *Cache) UpdateScope(currentSiteID int64, sampleSites int) {
	c.mu.Lock()
	changed := currentSiteID != c.currentSiteID || sampleSites != c.sampleSites
	if currentSiteID > 0 {
		c.currentSiteID = currentSiteID
	}
	if sampleSites > 0 {
		c.sampleSites = sampleSites
	}
	c.mu.Unlock()

	if changed {
		if c.metrics != nil {
			c.metrics.IncContextInvalidation(domain.TriggerConfigChange)
		}
		if err := c.Invalidate("configuration change"); err != nil {
			c.logger.Warn("invalidate after config change failed", zap.Error(err))
		}
	}
}

// Attach subscribes the cache to every mutation kind on the bus. Delivery is
// synchronous, so a tracked mutation's response cannot outrun the
// invalidation. The returned func detaches.
func (c *Cache) Attach(bus *hooks.Bus) func() {
	return bus.Subscribe(func(event domain.ContentEvent) {
		if c.metrics != nil {
			c.metrics.IncContextInvalidation(domain.InvalidationTrigger(event.Kind))
		}
		if err := c.Invalidate("content change: " + string(event.Kind)); err != nil {
			c.logger.Warn("invalidate failed",
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	})
}

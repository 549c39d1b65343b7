// Package hooks is the mutation-event bus. Delivery is synchronous: Emit
// returns only after every subscribed handler has run, so a cache
// invalidation triggered by a write completes before the write's response is
// sent.
package hooks

import (
	"sync"

	"go.uber.org/zap"

	"netpress/internal/domain"
)

// Handler receives one event. Handlers run on the emitter's goroutine and
// must not block.
type Handler func(event domain.ContentEvent)

type subscription struct {
	id int64
	fn Handler
}

// Bus fans mutation events out to handlers, per kind, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[domain.EventKind][]subscription
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[domain.EventKind][]subscription),
		logger: logger.Named("hooks"),
	}
}

// Subscribe attaches handler to the given kinds (all kinds when none are
// given) and returns a cancel func that detaches it.
func (b *Bus) Subscribe(handler Handler, kinds ...domain.EventKind) func() {
	if b == nil || handler == nil {
		return func() {}
	}
	if len(kinds) == 0 {
		kinds = domain.AllEventKinds()
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	for _, kind := range kinds {
		b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: handler})
	}
	b.mu.Unlock()

	attached := append([]domain.EventKind(nil), kinds...)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, kind := range attached {
			subs := b.subs[kind]
			kept := subs[:0]
			for _, sub := range subs {
				if sub.id != id {
					kept = append(kept, sub)
				}
			}
			b.subs[kind] = kept
		}
	}
}

// EmitContentEvent delivers an event to every handler subscribed to its
// kind, in subscription order, before returning.
func (b *Bus) EmitContentEvent(event domain.ContentEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[event.Kind]...)
	b.mu.RUnlock()

	if len(subs) > 0 {
		b.logger.Debug("event",
			zap.String("kind", string(event.Kind)),
			zap.Int64("site_id", event.SiteID),
			zap.Int64("object_id", event.ObjectID),
			zap.Int("handlers", len(subs)))
	}
	for _, sub := range subs {
		sub.fn(event)
	}
}

var _ domain.ContentEmitter = (*Bus)(nil)

package hooks

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

func TestBus_DeliveryIsSynchronousAndOrdered(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var order []string
	bus.Subscribe(func(event domain.ContentEvent) {
		order = append(order, "first:"+string(event.Kind))
	}, domain.EventPostCreated)
	bus.Subscribe(func(event domain.ContentEvent) {
		order = append(order, "second:"+string(event.Kind))
	}, domain.EventPostCreated)

	bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventPostCreated, SiteID: 1, ObjectID: 7})

	// No synchronization needed: Emit returns after handlers run.
	require.Equal(t, []string{"first:post_created", "second:post_created"}, order)
}

func TestBus_KindFiltering(t *testing.T) {
	bus := NewBus(nil)

	var got []domain.EventKind
	bus.Subscribe(func(event domain.ContentEvent) {
		got = append(got, event.Kind)
	}, domain.EventTermCreated, domain.EventTermDeleted)

	bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventTermCreated})
	bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventPostCreated})
	bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventTermDeleted})

	require.Equal(t, []domain.EventKind{domain.EventTermCreated, domain.EventTermDeleted}, got)
}

func TestBus_SubscribeAllKindsByDefault(t *testing.T) {
	bus := NewBus(nil)

	var count int
	bus.Subscribe(func(domain.ContentEvent) { count++ })

	for _, kind := range domain.AllEventKinds() {
		bus.EmitContentEvent(domain.ContentEvent{Kind: kind})
	}
	require.Equal(t, len(domain.AllEventKinds()), count)
}

func TestBus_CancelDetaches(t *testing.T) {
	bus := NewBus(nil)

	var count int
	cancel := bus.Subscribe(func(domain.ContentEvent) { count++ }, domain.EventSiteOptionSet)

	bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventSiteOptionSet})
	cancel()
	bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventSiteOptionSet})

	require.Equal(t, 1, count)
}

func TestBus_NilSafety(t *testing.T) {
	var bus *Bus
	require.NotPanics(t, func() {
		bus.EmitContentEvent(domain.ContentEvent{Kind: domain.EventPostDeleted})
		cancel := bus.Subscribe(func(domain.ContentEvent) {})
		cancel()
	})

	live := NewBus(nil)
	cancel := live.Subscribe(nil)
	cancel()
	live.EmitContentEvent(domain.ContentEvent{Kind: domain.EventPostDeleted})
}

package inject

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/netcontext"
	"netpress/internal/infra/store"
	"netpress/internal/infra/transient"
)

type contextFixture struct {
	builder   *netcontext.Builder
	cache     *netcontext.Cache
	transient *transient.Store
	site      domain.Site
}

func newContextFixture(t *testing.T) *contextFixture {
	t.Helper()
	dir := t.TempDir()

	contentStore, err := store.Open(store.Config{Path: filepath.Join(dir, "content.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = contentStore.Close() })

	transientStore, err := transient.Open(filepath.Join(dir, "transients.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = transientStore.Close() })

	site, err := contentStore.CreateSite(context.Background(), domain.Site{
		Name: "Main", URL: "https://example.com", Public: true,
	})
	require.NoError(t, err)

	builder := netcontext.NewBuilder(contentStore, zap.NewNop())
	cache := netcontext.NewCache(builder, transientStore, site.ID, 10, zap.NewNop())
	return &contextFixture{builder: builder, cache: cache, transient: transientStore, site: site}
}

func userRequest() ChatRequest {
	return ChatRequest{Messages: []*schema.Message{schema.UserMessage("what sites are there?")}}
}

func TestNetworkInjector_AppendsOneSystemMessage(t *testing.T) {
	f := newContextFixture(t)
	injector := NewNetworkInjector(f.cache, true, zap.NewNop())

	in := userRequest()
	out, err := injector.Inject(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, in.Messages, 1)
	require.Len(t, out.Messages, 2)

	msg := out.Messages[1]
	require.Equal(t, schema.System, msg.Role)
	require.True(t, strings.HasPrefix(msg.Content, networkPreamble))
	require.Contains(t, msg.Content, "\"main_site_id\"")
	require.Contains(t, msg.Content, "\n  ")
}

func TestNetworkInjector_NilMessageListPassesThrough(t *testing.T) {
	f := newContextFixture(t)
	injector := NewNetworkInjector(f.cache, true, zap.NewNop())

	out, err := injector.Inject(context.Background(), ChatRequest{})
	require.NoError(t, err)
	require.Nil(t, out.Messages)
}

func TestNetworkInjector_EmptyListStillInjects(t *testing.T) {
	f := newContextFixture(t)
	injector := NewNetworkInjector(f.cache, true, zap.NewNop())

	out, err := injector.Inject(context.Background(), ChatRequest{Messages: []*schema.Message{}})
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
}

func TestNetworkInjector_DisabledPassesThrough(t *testing.T) {
	f := newContextFixture(t)
	injector := NewNetworkInjector(f.cache, false, zap.NewNop())

	in := userRequest()
	out, err := injector.Inject(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)

	injector.SetEnabled(true)
	out, err = injector.Inject(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)
}

func TestNetworkInjector_FetchFailureLeavesRequestAlone(t *testing.T) {
	f := newContextFixture(t)
	injector := NewNetworkInjector(f.cache, true, zap.NewNop())
	require.NoError(t, f.transient.Close())

	in := userRequest()
	out, err := injector.Inject(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
}

func TestSiteInjector_AppendsOwnSiteSummary(t *testing.T) {
	f := newContextFixture(t)
	injector := NewSiteInjector(f.builder, f.site.ID, zap.NewNop())

	out, err := injector.Inject(context.Background(), userRequest())
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)

	msg := out.Messages[1]
	require.Equal(t, schema.System, msg.Role)
	require.True(t, strings.HasPrefix(msg.Content, sitePreamble))
	require.Contains(t, msg.Content, "\"post_types\"")
}

func TestInjectors_SharedSlotYieldsExactlyOneContextMessage(t *testing.T) {
	f := newContextFixture(t)
	chain := NewChain(zap.NewNop())
	NewSiteInjector(f.builder, f.site.ID, zap.NewNop()).Register(chain)
	NewNetworkInjector(f.cache, true, zap.NewNop()).Register(chain)

	out, err := chain.Apply(context.Background(), userRequest())
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)
	require.True(t, strings.HasPrefix(out.Messages[1].Content, networkPreamble))
}

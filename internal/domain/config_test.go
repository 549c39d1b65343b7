package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_NormalizeFillsDefaults(t *testing.T) {
	cfg := Config{}
	cfg.Normalize()

	require.Equal(t, DefaultCurrentSiteID, cfg.Network.CurrentSite)
	require.Equal(t, DefaultContextSampleSites, cfg.Network.ContextSampleSites)
	require.Equal(t, DefaultSearchPerSiteLimit, cfg.Search.PerSiteLimit)
	require.Equal(t, DefaultSearchPostTypes(), cfg.Search.DefaultPostTypes)
	require.Equal(t, DefaultStorePath, cfg.Store.Path)
	require.Equal(t, DefaultTransientPath, cfg.Transient.Path)
	require.Equal(t, DefaultAdminListenAddress, cfg.Admin.ListenAddress)
	require.Equal(t, DefaultObservabilityListenAddr, cfg.Observability.ListenAddress)
	require.Equal(t, DefaultAssistantProvider, cfg.Assistant.Provider)
	require.Equal(t, DefaultAssistantAPIKeyEnvVar, cfg.Assistant.APIKeyEnvVar)
	require.False(t, cfg.Network.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestConfig_NormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Network.CurrentSite = 3
	cfg.Search.PerSiteLimit = 2
	cfg.Search.DefaultPostTypes = []string{"post"}
	cfg.Normalize()

	require.Equal(t, int64(3), cfg.Network.CurrentSite)
	require.Equal(t, 2, cfg.Search.PerSiteLimit)
	require.Equal(t, []string{"post"}, cfg.Search.DefaultPostTypes)
}

func TestConfig_ValidateRejectsSharedPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transient.Path = cfg.Store.Path

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "must differ")

	code, ok := CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, CodeInvalidArgument, code)
}

func TestConfig_ValidateRejectsUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assistant.Provider = "anthropic"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "anthropic")
}

func TestDiffConfig_ClassifiesFields(t *testing.T) {
	prev := DefaultConfig()
	next := prev
	next.Network.Enabled = true
	next.Network.ContextSampleSites = 4
	next.Search.PerSiteLimit = 3
	next.Admin.ListenAddress = "127.0.0.1:9980"
	next.Admin.RequestTimeoutSeconds = 45
	next.Store.Path = "other.db"

	diff := DiffConfig(prev, next)

	require.Contains(t, diff.DynamicFields, "network.enabled")
	require.Contains(t, diff.DynamicFields, "network.contextSampleSites")
	require.Contains(t, diff.DynamicFields, "search.perSiteLimit")
	require.Contains(t, diff.RestartRequiredFields, "admin.listenAddress")
	// The admin server captures its timeout at construction.
	require.Contains(t, diff.RestartRequiredFields, "admin.requestTimeoutSeconds")
	require.Contains(t, diff.RestartRequiredFields, "store.path")
	require.True(t, diff.RequiresRestart())
	require.True(t, diff.InvalidatesContext())
}

func TestDiffConfig_SearchOnlyChangeKeepsContext(t *testing.T) {
	prev := DefaultConfig()
	next := prev
	next.Search.PerSiteLimit = 9

	diff := DiffConfig(prev, next)

	require.False(t, diff.IsEmpty())
	require.False(t, diff.RequiresRestart())
	require.False(t, diff.InvalidatesContext())
}

func TestDiffConfig_NoChanges(t *testing.T) {
	cfg := DefaultConfig()
	require.True(t, DiffConfig(cfg, cfg).IsEmpty())
}

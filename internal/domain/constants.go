package domain

const (
	// ContextTransientKey is the fixed key under which the serialized network
	// context document is cached. There is exactly one cached entry.
	ContextTransientKey = "netpress_network_context"

	DefaultCurrentSiteID            = int64(1)
	DefaultContextSampleSites       = 10
	DefaultSearchPerSiteLimit       = 5
	DefaultAdminListenAddress       = "127.0.0.1:8980"
	DefaultObservabilityListenAddr  = "127.0.0.1:9090"
	DefaultStorePath                = "netpress.db"
	DefaultTransientPath            = "netpress-transients.db"
	DefaultAssistantProvider        = "openai"
	DefaultAssistantAPIKeyEnvVar    = "OPENAI_API_KEY"
	DefaultAssistantSystemPrompt    = "You are a helpful assistant for a network of content sites."
	DefaultConfigFileName           = "netpress.yaml"
	DefaultAdminRequestTimeoutSecs  = 30
	DefaultAssistantTimeoutSeconds  = 60

	// PriorityBaseline and PriorityNetwork order the two provider layers
	// everywhere priorities decide a collision: the tool registry and the
	// injector chain. Network wins.
	PriorityBaseline = 10
	PriorityNetwork  = 20
)

// DefaultSearchPostTypes are the content types searched when a caller does
// not narrow the search.
func DefaultSearchPostTypes() []string {
	return []string{"post", "page"}
}

// UtilityTaxonomies are built-in bookkeeping taxonomies excluded from the
// network context document even when flagged public.
func UtilityTaxonomies() map[string]struct{} {
	return map[string]struct{}{
		"nav_menu":      {},
		"link_category": {},
		"post_format":   {},
	}
}

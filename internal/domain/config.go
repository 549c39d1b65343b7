package domain

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Config is the resolved runtime configuration. Loaders normalize before
// handing it to the app, so zero values never reach consumers.
type Config struct {
	Network       NetworkConfig       `json:"network"`
	Search        SearchConfig        `json:"search"`
	Store         StoreConfig         `json:"store"`
	Transient     TransientConfig     `json:"transient"`
	Admin         AdminConfig         `json:"admin"`
	Observability ObservabilityConfig `json:"observability"`
	Assistant     AssistantConfig     `json:"assistant"`
}

type NetworkConfig struct {
	// Enabled gates the network tool provider and the context injector.
	// When false the process still serves the baseline single-site tools.
	Enabled bool `json:"enabled"`
	// CurrentSite is the site whose perspective the context document and
	// the baseline tools adopt.
	CurrentSite int64 `json:"currentSite"`
	// ContextSampleSites caps how many sites the context document lists.
	ContextSampleSites int `json:"contextSampleSites"`
}

type SearchConfig struct {
	PerSiteLimit     int      `json:"perSiteLimit"`
	DefaultPostTypes []string `json:"defaultPostTypes"`
}

type StoreConfig struct {
	Path string `json:"path"`
}

type TransientConfig struct {
	Path string `json:"path"`
}

type AdminConfig struct {
	ListenAddress         string `json:"listenAddress"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds"`
}

type ObservabilityConfig struct {
	ListenAddress string `json:"listenAddress"`
}

type AssistantConfig struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	APIKeyEnvVar   string `json:"apiKeyEnvVar"`
	BaseURL        string `json:"baseURL,omitempty"`
	SystemPrompt   string `json:"systemPrompt,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// DefaultConfig returns a fully populated configuration.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills unset fields with defaults in place.
func (c *Config) Normalize() {
	if c.Network.CurrentSite <= 0 {
		c.Network.CurrentSite = DefaultCurrentSiteID
	}
	if c.Network.ContextSampleSites <= 0 {
		c.Network.ContextSampleSites = DefaultContextSampleSites
	}
	if c.Search.PerSiteLimit <= 0 {
		c.Search.PerSiteLimit = DefaultSearchPerSiteLimit
	}
	if len(c.Search.DefaultPostTypes) == 0 {
		c.Search.DefaultPostTypes = DefaultSearchPostTypes()
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Transient.Path == "" {
		c.Transient.Path = DefaultTransientPath
	}
	if c.Admin.ListenAddress == "" {
		c.Admin.ListenAddress = DefaultAdminListenAddress
	}
	if c.Admin.RequestTimeoutSeconds <= 0 {
		c.Admin.RequestTimeoutSeconds = DefaultAdminRequestTimeoutSecs
	}
	if c.Observability.ListenAddress == "" {
		c.Observability.ListenAddress = DefaultObservabilityListenAddr
	}
	if c.Assistant.Provider == "" {
		c.Assistant.Provider = DefaultAssistantProvider
	}
	if c.Assistant.APIKeyEnvVar == "" {
		c.Assistant.APIKeyEnvVar = DefaultAssistantAPIKeyEnvVar
	}
	if c.Assistant.SystemPrompt == "" {
		c.Assistant.SystemPrompt = DefaultAssistantSystemPrompt
	}
	if c.Assistant.TimeoutSeconds <= 0 {
		c.Assistant.TimeoutSeconds = DefaultAssistantTimeoutSeconds
	}
}

// Validate reports configuration problems a normalized config can still have.
func (c Config) Validate() error {
	var problems []string
	if c.Network.CurrentSite <= 0 {
		problems = append(problems, "network.currentSite must be positive")
	}
	if c.Network.ContextSampleSites <= 0 {
		problems = append(problems, "network.contextSampleSites must be positive")
	}
	if c.Search.PerSiteLimit <= 0 {
		problems = append(problems, "search.perSiteLimit must be positive")
	}
	for _, pt := range c.Search.DefaultPostTypes {
		if strings.TrimSpace(pt) == "" {
			problems = append(problems, "search.defaultPostTypes must not contain blank entries")
			break
		}
	}
	if c.Store.Path == "" {
		problems = append(problems, "store.path must not be empty")
	}
	if c.Transient.Path == "" {
		problems = append(problems, "transient.path must not be empty")
	}
	if c.Store.Path != "" && c.Store.Path == c.Transient.Path {
		problems = append(problems, "store.path and transient.path must differ")
	}
	if c.Admin.ListenAddress == "" {
		problems = append(problems, "admin.listenAddress must not be empty")
	}
	if c.Assistant.Provider != "openai" {
		problems = append(problems, fmt.Sprintf("assistant.provider %q is not supported", c.Assistant.Provider))
	}
	if len(problems) == 0 {
		return nil
	}
	return E(CodeInvalidArgument, "config.Validate", strings.Join(problems, "; "), nil)
}

// ConfigDiff classifies changed fields after a reload.
type ConfigDiff struct {
	DynamicFields         []string
	RestartRequiredFields []string
}

// IsEmpty reports whether the diff contains any changes.
func (d ConfigDiff) IsEmpty() bool {
	return len(d.DynamicFields) == 0 && len(d.RestartRequiredFields) == 0
}

// RequiresRestart reports whether any change cannot be applied live.
func (d ConfigDiff) RequiresRestart() bool {
	return len(d.RestartRequiredFields) > 0
}

// InvalidatesContext reports whether the change set alters the shape of the
// network context document, which forces a cached-context rebuild.
func (d ConfigDiff) InvalidatesContext() bool {
	for _, f := range d.DynamicFields {
		if strings.HasPrefix(f, "network.") {
			return true
		}
	}
	return false
}

// DiffConfig compares configs and classifies changed fields. Listen
// addresses, store paths, and the admin request timeout bind at startup;
// everything else applies live.
func DiffConfig(prev, next Config) ConfigDiff {
	diff := ConfigDiff{}

	if prev.Network.Enabled != next.Network.Enabled {
		diff.DynamicFields = append(diff.DynamicFields, "network.enabled")
	}
	if prev.Network.CurrentSite != next.Network.CurrentSite {
		diff.DynamicFields = append(diff.DynamicFields, "network.currentSite")
	}
	if prev.Network.ContextSampleSites != next.Network.ContextSampleSites {
		diff.DynamicFields = append(diff.DynamicFields, "network.contextSampleSites")
	}
	if prev.Search.PerSiteLimit != next.Search.PerSiteLimit {
		diff.DynamicFields = append(diff.DynamicFields, "search.perSiteLimit")
	}
	if !reflect.DeepEqual(prev.Search.DefaultPostTypes, next.Search.DefaultPostTypes) {
		diff.DynamicFields = append(diff.DynamicFields, "search.defaultPostTypes")
	}
	if !reflect.DeepEqual(prev.Assistant, next.Assistant) {
		diff.DynamicFields = append(diff.DynamicFields, "assistant")
	}
	if prev.Admin.RequestTimeoutSeconds != next.Admin.RequestTimeoutSeconds {
		diff.RestartRequiredFields = append(diff.RestartRequiredFields, "admin.requestTimeoutSeconds")
	}
	if prev.Store.Path != next.Store.Path {
		diff.RestartRequiredFields = append(diff.RestartRequiredFields, "store.path")
	}
	if prev.Transient.Path != next.Transient.Path {
		diff.RestartRequiredFields = append(diff.RestartRequiredFields, "transient.path")
	}
	if prev.Admin.ListenAddress != next.Admin.ListenAddress {
		diff.RestartRequiredFields = append(diff.RestartRequiredFields, "admin.listenAddress")
	}
	if prev.Observability.ListenAddress != next.Observability.ListenAddress {
		diff.RestartRequiredFields = append(diff.RestartRequiredFields, "observability.listenAddress")
	}

	sort.Strings(diff.DynamicFields)
	sort.Strings(diff.RestartRequiredFields)
	return diff
}

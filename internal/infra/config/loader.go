// Package config loads and watches the netpress configuration file. Loading
// is viper-based with defaults applied before the file is read, so a partial
// file yields a fully populated domain.Config.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setConfigDefaults(v)
	return v
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("network.enabled", true)
	v.SetDefault("network.currentSite", domain.DefaultCurrentSiteID)
	v.SetDefault("network.contextSampleSites", domain.DefaultContextSampleSites)
	v.SetDefault("search.perSiteLimit", domain.DefaultSearchPerSiteLimit)
	v.SetDefault("search.defaultPostTypes", domain.DefaultSearchPostTypes())
	v.SetDefault("store.path", domain.DefaultStorePath)
	v.SetDefault("transient.path", domain.DefaultTransientPath)
	v.SetDefault("admin.listenAddress", domain.DefaultAdminListenAddress)
	v.SetDefault("admin.requestTimeoutSeconds", domain.DefaultAdminRequestTimeoutSecs)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddr)
	v.SetDefault("assistant.provider", domain.DefaultAssistantProvider)
	v.SetDefault("assistant.apiKeyEnvVar", domain.DefaultAssistantAPIKeyEnvVar)
	v.SetDefault("assistant.timeoutSeconds", domain.DefaultAssistantTimeoutSeconds)
}

type rawConfig struct {
	Network       rawNetworkConfig       `mapstructure:"network"`
	Search        rawSearchConfig        `mapstructure:"search"`
	Store         rawStoreConfig         `mapstructure:"store"`
	Transient     rawTransientConfig     `mapstructure:"transient"`
	Admin         rawAdminConfig         `mapstructure:"admin"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
	Assistant     rawAssistantConfig     `mapstructure:"assistant"`
}

type rawNetworkConfig struct {
	Enabled            bool  `mapstructure:"enabled"`
	CurrentSite        int64 `mapstructure:"currentSite"`
	ContextSampleSites int   `mapstructure:"contextSampleSites"`
}

type rawSearchConfig struct {
	PerSiteLimit     int      `mapstructure:"perSiteLimit"`
	DefaultPostTypes []string `mapstructure:"defaultPostTypes"`
}

type rawStoreConfig struct {
	Path string `mapstructure:"path"`
}

type rawTransientConfig struct {
	Path string `mapstructure:"path"`
}

type rawAdminConfig struct {
	ListenAddress         string `mapstructure:"listenAddress"`
	RequestTimeoutSeconds int    `mapstructure:"requestTimeoutSeconds"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

type rawAssistantConfig struct {
	Provider       string `mapstructure:"provider"`
	Model          string `mapstructure:"model"`
	APIKeyEnvVar   string `mapstructure:"apiKeyEnvVar"`
	BaseURL        string `mapstructure:"baseURL"`
	SystemPrompt   string `mapstructure:"systemPrompt"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// Load reads, decodes, normalizes, and validates the config file at path.
func (l *Loader) Load(path string) (domain.Config, error) {
	if path == "" {
		return domain.Config{}, domain.E(domain.CodeInvalidArgument, "config.Load", "config path is required", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, domain.E(domain.CodeUnavailable, "config.Load", "read config", err)
	}
	return l.Parse(data)
}

// LoadOrDefault behaves like Load, but a missing file yields the default
// configuration with a warning instead of an error.
func (l *Loader) LoadOrDefault(path string) (domain.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.logger.Warn("config file not found, using defaults", zap.String("path", path))
		return domain.DefaultConfig(), nil
	}
	return l.Load(path)
}

// Parse decodes raw YAML into a normalized, validated config.
func (l *Loader) Parse(data []byte) (domain.Config, error) {
	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return domain.Config{}, domain.E(domain.CodeInvalidArgument, "config.Parse", "parse config", err)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, domain.E(domain.CodeInvalidArgument, "config.Parse", "decode config", err)
	}

	cfg := domain.Config{
		Network: domain.NetworkConfig{
			Enabled:            raw.Network.Enabled,
			CurrentSite:        raw.Network.CurrentSite,
			ContextSampleSites: raw.Network.ContextSampleSites,
		},
		Search: domain.SearchConfig{
			PerSiteLimit:     raw.Search.PerSiteLimit,
			DefaultPostTypes: raw.Search.DefaultPostTypes,
		},
		Store:     domain.StoreConfig{Path: raw.Store.Path},
		Transient: domain.TransientConfig{Path: raw.Transient.Path},
		Admin: domain.AdminConfig{
			ListenAddress:         raw.Admin.ListenAddress,
			RequestTimeoutSeconds: raw.Admin.RequestTimeoutSeconds,
		},
		Observability: domain.ObservabilityConfig{ListenAddress: raw.Observability.ListenAddress},
		Assistant: domain.AssistantConfig{
			Provider:       raw.Assistant.Provider,
			Model:          raw.Assistant.Model,
			APIKeyEnvVar:   raw.Assistant.APIKeyEnvVar,
			BaseURL:        raw.Assistant.BaseURL,
			SystemPrompt:   raw.Assistant.SystemPrompt,
			TimeoutSeconds: raw.Assistant.TimeoutSeconds,
		},
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// defaultConfigTemplate is what `netpressd init` writes: every knob at its
// default, commented.
const defaultConfigTemplate = `# netpress configuration

network:
  # Network mode gates the cross-site tools and the context injector.
  # With it off, only the baseline single-site tools are served.
  enabled: true
  # Site whose perspective the baseline tools and the context document adopt.
  currentSite: 1
  # How many sites the context document samples.
  contextSampleSites: 10

search:
  # Relevance-ordered matches kept per site during a network search.
  perSiteLimit: 5
  defaultPostTypes:
    - post
    - page

store:
  path: netpress.db

transient:
  path: netpress-transients.db

admin:
  listenAddress: 127.0.0.1:8980
  requestTimeoutSeconds: 30

observability:
  listenAddress: 127.0.0.1:9090

assistant:
  provider: openai
  # Leave empty to run the assistant in dry-run mode only.
  model: ""
  apiKeyEnvVar: OPENAI_API_KEY
  baseURL: ""
  timeoutSeconds: 60
`

// WriteDefault writes the commented default config to path. Refuses to
// overwrite unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		return domain.E(domain.CodeInvalidArgument, "config.WriteDefault", "config path is required", nil)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return domain.E(domain.CodeInvalidArgument, "config.WriteDefault", path+" already exists (use --force to overwrite)", nil)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.E(domain.CodeUnavailable, "config.WriteDefault", "ensure config dir", err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return domain.E(domain.CodeUnavailable, "config.WriteDefault", "write config", err)
	}
	return nil
}

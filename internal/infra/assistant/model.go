package assistant

import (
	"context"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"netpress/internal/domain"
)

// NewChatModel constructs the chat model for the configured provider. The
// API key is read from the configured environment variable; callers decide
// whether a missing model is fatal.
func NewChatModel(ctx context.Context, cfg domain.AssistantConfig) (model.ToolCallingChatModel, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "assistant.NewChatModel", "assistant.model is not set", nil)
	}

	envVar := strings.TrimSpace(cfg.APIKeyEnvVar)
	if envVar == "" {
		envVar = domain.DefaultAssistantAPIKeyEnvVar
	}
	apiKey := strings.TrimSpace(os.Getenv(envVar))
	if apiKey == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "assistant.NewChatModel", "API key not found in env var "+envVar, nil)
	}

	switch cfg.Provider {
	case "openai", "":
		modelCfg := &openai.ChatModelConfig{
			Model:  cfg.Model,
			APIKey: apiKey,
		}
		if cfg.BaseURL != "" {
			modelCfg.BaseURL = cfg.BaseURL
		}
		return openai.NewChatModel(ctx, modelCfg)
	default:
		return nil, domain.E(domain.CodeInvalidArgument, "assistant.NewChatModel", "unsupported provider: "+cfg.Provider, nil)
	}
}

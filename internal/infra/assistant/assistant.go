// Package assistant composes outgoing chat requests and, when a model is
// configured, runs them. It is the in-repo stand-in for the AI plugin the
// context injector serves: every ask flows through the injector chain before
// it reaches a model.
package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/inject"
)

// Assistant builds requests from a fixed persona plus a user prompt, applies
// the injector chain, and generates with the configured chat model. With a
// nil model only dry runs are possible.
type Assistant struct {
	chain *inject.Chain

	mu       sync.RWMutex
	model    model.ToolCallingChatModel
	persona  string
	provider string
	name     string
	timeout  time.Duration

	metrics domain.Metrics
	logger  *zap.Logger
}

// Answer is one assistant exchange. Request holds the injected message list
// actually sent (or composed, for dry runs); Reply and StopReason are empty
// on dry runs.
type Answer struct {
	Request    []*schema.Message `json:"request"`
	Reply      string            `json:"reply,omitempty"`
	StopReason string            `json:"stop_reason,omitempty"`
	DryRun     bool              `json:"dry_run"`
}

func New(chain *inject.Chain, chatModel model.ToolCallingChatModel, cfg domain.AssistantConfig, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	persona := strings.TrimSpace(cfg.SystemPrompt)
	if persona == "" {
		persona = domain.DefaultAssistantSystemPrompt
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = domain.DefaultAssistantTimeoutSeconds * time.Second
	}
	return &Assistant{
		chain:    chain,
		model:    chatModel,
		persona:  persona,
		provider: cfg.Provider,
		name:     cfg.Model,
		timeout:  timeout,
		logger:   logger.Named("assistant"),
	}
}

// SetMetrics attaches a metrics sink for generation calls and token usage.
func (a *Assistant) SetMetrics(metrics domain.Metrics) {
	a.metrics = metrics
}

// Reconfigure swaps the chat model and generation settings, so a config
// reload applies without restarting. A nil chatModel keeps the current one.
func (a *Assistant) Reconfigure(chatModel model.ToolCallingChatModel, cfg domain.AssistantConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if chatModel != nil {
		a.model = chatModel
	}
	if persona := strings.TrimSpace(cfg.SystemPrompt); persona != "" {
		a.persona = persona
	}
	a.provider = cfg.Provider
	a.name = cfg.Model
	if cfg.TimeoutSeconds > 0 {
		a.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
}

// Ask composes persona + prompt, runs the injector chain, and generates.
// dryRun skips generation and returns the composed request.
func (a *Assistant) Ask(ctx context.Context, prompt string, dryRun bool) (Answer, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Answer{}, domain.E(domain.CodeInvalidArgument, "assistant.Ask", "prompt is required", nil)
	}

	a.mu.RLock()
	chatModel := a.model
	persona := a.persona
	provider := a.provider
	name := a.name
	timeout := a.timeout
	a.mu.RUnlock()

	req := inject.ChatRequest{Messages: []*schema.Message{
		schema.SystemMessage(persona),
		schema.UserMessage(prompt),
	}}
	req, err := a.chain.Apply(ctx, req)
	if err != nil {
		return Answer{}, err
	}

	if dryRun || chatModel == nil {
		if !dryRun {
			a.logger.Warn("no model configured, returning composed request")
		}
		return Answer{Request: req.Messages, DryRun: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	response, err := chatModel.Generate(ctx, req.Messages)
	if a.metrics != nil {
		a.metrics.ObserveAssistantCall(provider, name, time.Since(started), err)
	}
	if err != nil {
		return Answer{}, domain.E(domain.CodeUnavailable, "assistant.Ask", "generate", err)
	}
	if response == nil {
		return Answer{}, domain.E(domain.CodeUnavailable, "assistant.Ask", "model returned no message", nil)
	}
	a.logger.Debug("assistant reply",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("request_messages", len(req.Messages)))

	answer := Answer{Request: req.Messages, Reply: response.Content}
	if response.ResponseMeta != nil {
		answer.StopReason = response.ResponseMeta.FinishReason
		if usage := response.ResponseMeta.Usage; usage != nil && a.metrics != nil {
			a.metrics.AddAssistantTokens(provider, name, usage.TotalTokens)
		}
	}
	return answer, nil
}

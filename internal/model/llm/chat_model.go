package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"week-planner/pkg/config"
	"week-planner/pkg/secrets"
)

// NewChatModel 按 model.defaults.llm 创建 OpenAI 兼容的 ChatModel，并套上限流
func NewChatModel(ctx context.Context, cfg *config.Config, secretStore secrets.Store) (*RateLimitedChatModel, error) {
	provider, pc, mi, err := cfg.ResolveDefaultLLM()
	if err != nil {
		return nil, err
	}
	apiKey, err := secrets.Resolve(ctx, secretStore, pc.APIKey)
	if err != nil {
		return nil, fmt.Errorf("resolve api_key for %s: %w", provider, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("LLM provider %q api_key not configured", provider)
	}

	temperature := float32(cfg.Agent.Temperature)
	if mi.Temperature > 0 {
		temperature = float32(mi.Temperature)
	}
	mc := &openai.ChatModelConfig{
		APIKey:      apiKey,
		Model:       mi.Name,
		BaseURL:     pc.BaseURL,
		Temperature: &temperature,
		Timeout:     config.ParseDuration(cfg.Agent.TurnTimeout, 2*time.Minute),
	}
	if mi.MaxTokens > 0 {
		maxTokens := mi.MaxTokens
		mc.MaxTokens = &maxTokens
	}
	chatModel, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("创建 OpenAI ChatModel failed: %w", err)
	}

	limits := make(map[string]config.LLMRateLimitConfig, len(cfg.RateLimits.LLM))
	for k, v := range cfg.RateLimits.LLM {
		limits[k] = v
	}
	return NewRateLimitedChatModel(chatModel, provider, NewLLMRateLimiter(limits, nil)), nil
}

var _ model.ToolCallingChatModel = (*RateLimitedChatModel)(nil)

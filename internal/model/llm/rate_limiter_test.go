package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"week-planner/pkg/config"
)

type stubModel struct {
	calls int
	tools []*schema.ToolInfo
	err   error
}

func (s *stubModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	msg := schema.AssistantMessage("ok", nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{TotalTokens: 42}}
	return msg, nil
}

func (s *stubModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("ok", nil)}), nil
}

func (s *stubModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return &stubModel{tools: tools}, nil
}

func TestLLMRateLimiter_ConcurrencySlots(t *testing.T) {
	l := NewLLMRateLimiter(map[string]config.LLMRateLimitConfig{
		"openai": {MaxConcurrent: 1},
	}, nil)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "openai", 10))
	assert.Equal(t, 1, l.InFlight("openai"))

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(timeout, "openai", 10))

	l.Release("openai")
	assert.Equal(t, 0, l.InFlight("openai"))
	// 多余的 Release 不阻塞
	l.Release("openai")
}

func TestLLMRateLimiter_UnknownProviderUsesDefaults(t *testing.T) {
	l := NewLLMRateLimiter(nil, &config.LLMRateLimitConfig{MaxConcurrent: 2})
	require.NoError(t, l.Wait(context.Background(), "other", 1))
	require.NoError(t, l.Wait(context.Background(), "other", 1))
	assert.Equal(t, 2, l.InFlight("other"))
}

func TestLLMRateLimiter_TokenBudgetLargerThanBurst(t *testing.T) {
	l := NewLLMRateLimiter(map[string]config.LLMRateLimitConfig{
		"openai": {TokensPerMinute: 600},
	}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, l.Wait(ctx, "openai", 100000))
}

func TestRateLimitedChatModel(t *testing.T) {
	inner := &stubModel{}
	l := NewLLMRateLimiter(map[string]config.LLMRateLimitConfig{"openai": {MaxConcurrent: 1}}, nil)
	m := NewRateLimitedChatModel(inner, "openai", l)

	out, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Content)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 0, l.InFlight("openai"))
	assert.Equal(t, 42, l.TokensUsed("openai"))

	bound, err := m.WithTools([]*schema.ToolInfo{{Name: "get_day_of_week"}})
	require.NoError(t, err)
	rl, ok := bound.(*RateLimitedChatModel)
	require.True(t, ok)
	assert.Equal(t, "openai", rl.Provider())
	assert.Len(t, rl.inner.(*stubModel).tools, 1)

	inner.err = errors.New("boom")
	_, err = m.Generate(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 0, l.InFlight("openai"))

	sr, err := m.Stream(context.Background(), nil)
	require.NoError(t, err)
	msg, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
}

func TestRateLimitedChatModel_NilLimiter(t *testing.T) {
	m := NewRateLimitedChatModel(&stubModel{}, "openai", nil)
	out, err := m.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Content)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 1, estimateTokens(nil))
	assert.Equal(t, 2, estimateTokens([]*schema.Message{schema.UserMessage("12345678")}))
}

func TestNewChatModel_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Defaults.LLM = "openai.missing"
	_, err := NewChatModel(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg = config.Default()
	p := cfg.Model.LLM.Providers["openai"]
	p.APIKey = ""
	cfg.Model.LLM.Providers["openai"] = p
	_, err = NewChatModel(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNewChatModel_OK(t *testing.T) {
	cfg := config.Default()
	p := cfg.Model.LLM.Providers["openai"]
	p.APIKey = "sk-test"
	p.BaseURL = "http://127.0.0.1:1/v1"
	cfg.Model.LLM.Providers["openai"] = p
	m, err := NewChatModel(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Provider())
}

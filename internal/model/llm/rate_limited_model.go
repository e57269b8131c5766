// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"week-planner/pkg/metrics"
)

// RateLimitedChatModel 包装任意 ToolCallingChatModel，在真实调用前后执行限流并记录指标
type RateLimitedChatModel struct {
	inner       model.ToolCallingChatModel
	provider    string
	rateLimiter *LLMRateLimiter
}

// NewRateLimitedChatModel 创建带限流的模型；rateLimiter 为 nil 时退化为直接调用
func NewRateLimitedChatModel(inner model.ToolCallingChatModel, provider string, rateLimiter *LLMRateLimiter) *RateLimitedChatModel {
	return &RateLimitedChatModel{inner: inner, provider: provider, rateLimiter: rateLimiter}
}

func (c *RateLimitedChatModel) acquire(ctx context.Context, input []*schema.Message) (func(), error) {
	if c.rateLimiter == nil {
		return func() {}, nil
	}
	start := time.Now()
	if err := c.rateLimiter.Wait(ctx, c.provider, estimateTokens(input)); err != nil {
		return nil, err
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		metrics.RateLimitWaitSeconds.WithLabelValues("llm", c.provider).Observe(waited.Seconds())
	}
	return func() { c.rateLimiter.Release(c.provider) }, nil
}

// Generate 实现 model.BaseChatModel
func (c *RateLimitedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	release, err := c.acquire(ctx, input)
	if err != nil {
		metrics.LLMRequestTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	defer release()

	out, err := c.inner.Generate(ctx, input, opts...)
	if err != nil {
		metrics.LLMRequestTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.LLMRequestTotal.WithLabelValues("ok").Inc()
	if c.rateLimiter != nil && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		c.rateLimiter.RecordTokenUsage(c.provider, out.ResponseMeta.Usage.TotalTokens)
	}
	return out, nil
}

// Stream 实现 model.BaseChatModel；slot 在拿到流后即释放
func (c *RateLimitedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	release, err := c.acquire(ctx, input)
	if err != nil {
		metrics.LLMRequestTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	defer release()

	sr, err := c.inner.Stream(ctx, input, opts...)
	if err != nil {
		metrics.LLMRequestTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.LLMRequestTotal.WithLabelValues("ok").Inc()
	return sr, nil
}

// WithTools 实现 model.ToolCallingChatModel，返回绑定了工具的新实例
func (c *RateLimitedChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	inner, err := c.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &RateLimitedChatModel{inner: inner, provider: c.provider, rateLimiter: c.rateLimiter}, nil
}

// Provider 返回提供商名称
func (c *RateLimitedChatModel) Provider() string { return c.provider }

// estimateTokens 粗略估算请求的 token 数（4 字符 ≈ 1 token）
func estimateTokens(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		if m == nil {
			continue
		}
		total += len(m.Content)
		for _, tc := range m.ToolCalls {
			total += len(tc.Function.Arguments)
		}
	}
	estimated := total / 4
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

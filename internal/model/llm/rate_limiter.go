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
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"week-planner/pkg/config"
)

// LLMRateLimiter LLM Provider 维度的限流器，支持 token budget + RPS + 并发控制
type LLMRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*llmLimiter // provider -> limiter
	defaults config.LLMRateLimitConfig
}

type llmLimiter struct {
	requestLimiter *rate.Limiter // RPS 限流器
	tokenLimiter   *rate.Limiter // Token 限流器
	semaphore      chan struct{} // 并发控制

	mu         sync.Mutex
	tokensUsed int
}

// DefaultLimits 未配置 provider 时的默认限流
var DefaultLimits = config.LLMRateLimitConfig{
	TokensPerMinute:   90000,
	RequestsPerMinute: 500,
	MaxConcurrent:     8,
}

// NewLLMRateLimiter 创建 LLM 限流器；defaults 为空时使用 DefaultLimits
func NewLLMRateLimiter(configs map[string]config.LLMRateLimitConfig, defaults *config.LLMRateLimitConfig) *LLMRateLimiter {
	d := DefaultLimits
	if defaults != nil {
		d = *defaults
	}
	l := &LLMRateLimiter{
		limiters: make(map[string]*llmLimiter),
		defaults: d,
	}
	for provider, c := range configs {
		l.limiters[provider] = newLLMLimiter(c)
	}
	return l
}

func newLLMLimiter(c config.LLMRateLimitConfig) *llmLimiter {
	limiter := &llmLimiter{}
	// burst = 2 秒的配额
	if c.RequestsPerMinute > 0 {
		burst := int(c.RequestsPerMinute / 60.0 * 2)
		if burst < 1 {
			burst = 1
		}
		limiter.requestLimiter = rate.NewLimiter(rate.Limit(c.RequestsPerMinute/60.0), burst)
	}
	if c.TokensPerMinute > 0 {
		burst := c.TokensPerMinute / 60 * 2
		if burst < 1 {
			burst = 1
		}
		limiter.tokenLimiter = rate.NewLimiter(rate.Limit(float64(c.TokensPerMinute)/60.0), burst)
	}
	if c.MaxConcurrent > 0 {
		limiter.semaphore = make(chan struct{}, c.MaxConcurrent)
	}
	return limiter
}

func (l *LLMRateLimiter) get(provider string) *llmLimiter {
	l.mu.RLock()
	limiter, ok := l.limiters[provider]
	l.mu.RUnlock()
	if ok {
		return limiter
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limiters[provider]; ok {
		return limiter
	}
	limiter = newLLMLimiter(l.defaults)
	l.limiters[provider] = limiter
	return limiter
}

// Wait 等待获取执行许可（阻塞直到可以执行）
func (l *LLMRateLimiter) Wait(ctx context.Context, provider string, estimatedTokens int) error {
	limiter := l.get(provider)

	if limiter.requestLimiter != nil {
		if err := limiter.requestLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("request rate limit wait failed: %w", err)
		}
	}
	if limiter.tokenLimiter != nil && estimatedTokens > 0 {
		n := estimatedTokens
		// 超过 burst 的请求永远无法满足，按 burst 预扣
		if b := limiter.tokenLimiter.Burst(); n > b {
			n = b
		}
		if err := limiter.tokenLimiter.WaitN(ctx, n); err != nil {
			return fmt.Errorf("token budget wait failed: %w", err)
		}
	}
	if limiter.semaphore != nil {
		select {
		case limiter.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Release 释放并发 slot（在 LLM 调用完成后调用）
func (l *LLMRateLimiter) Release(provider string) {
	limiter := l.get(provider)
	if limiter.semaphore == nil {
		return
	}
	select {
	case <-limiter.semaphore:
	default:
	}
}

// RecordTokenUsage 记录实际使用的 tokens
func (l *LLMRateLimiter) RecordTokenUsage(provider string, tokens int) {
	limiter := l.get(provider)
	limiter.mu.Lock()
	limiter.tokensUsed += tokens
	limiter.mu.Unlock()
}

// TokensUsed 累计记录的 token 数
func (l *LLMRateLimiter) TokensUsed(provider string) int {
	limiter := l.get(provider)
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return limiter.tokensUsed
}

// InFlight 当前占用的并发 slot 数
func (l *LLMRateLimiter) InFlight(provider string) int {
	limiter := l.get(provider)
	if limiter.semaphore == nil {
		return 0
	}
	return len(limiter.semaphore)
}

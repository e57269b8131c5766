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

package app

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"week-planner/internal/checkpoint"
	"week-planner/internal/github"
	"week-planner/internal/mockdata"
	"week-planner/internal/prompts"
	"week-planner/internal/runtime/graph"
	"week-planner/internal/runtime/session"
	"week-planner/internal/tool/builtin"
	"week-planner/internal/tool/registry"
	"week-planner/pkg/config"
	"week-planner/pkg/log"
	"week-planner/pkg/secrets"
)

// Options 装配选项
type Options struct {
	// ToolsOnly 只装配工具目录（tools / mcp 子命令）；模型不可用时降级而非失败
	ToolsOnly bool
	// Model 非空时替代按配置创建的模型（测试注入）
	Model model.ToolCallingChatModel
	// Logger 非空时替代按配置创建的日志
	Logger *log.Logger
}

// Bootstrap 统一初始化：供 chat / serve / mcp 复用，避免在 cmd 内写装配逻辑
type Bootstrap struct {
	Config      *config.Config
	Logger      *log.Logger
	Secrets     secrets.Store
	Source      mockdata.Source
	Searcher    github.Searcher
	Model       model.ToolCallingChatModel
	Prompts     *prompts.Builder
	Tools       *registry.Registry
	Controller  *graph.Controller
	Checkpoints checkpoint.Store
	Sessions    *session.Manager
}

// NewBootstrap 根据配置创建 Bootstrap（日志、密钥、数据源、模型、工具、图、Checkpoint、会话）
func NewBootstrap(ctx context.Context, cfg *config.Config, opts Options) (*Bootstrap, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = log.NewLogger(&log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
		if err != nil {
			return nil, fmt.Errorf("初始化日志failed: %w", err)
		}
	}
	b := &Bootstrap{Config: cfg, Logger: logger}

	store, err := NewSecretStoreFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化密钥存储failed: %w", err)
	}
	b.Secrets = store

	source, err := mockdata.Open(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("初始化数据源failed: %w", err)
	}
	b.Source = source

	searcher, err := NewSearcherFromConfig(ctx, cfg, store, source)
	if err != nil {
		return nil, fmt.Errorf("初始化 GitHub 检索failed: %w", err)
	}
	b.Searcher = searcher

	b.Model = opts.Model
	if b.Model == nil {
		chatModel, err := NewChatModelFromConfig(ctx, cfg, store)
		switch {
		case err == nil:
			b.Model = chatModel
		case opts.ToolsOnly:
			logger.Warn("chat model unavailable, competency extraction disabled", "error", err)
		default:
			return nil, fmt.Errorf("初始化 ChatModel failed: %w", err)
		}
	}

	author, err := ResolveGitHubAuthor(ctx, cfg, source)
	if err != nil {
		return nil, fmt.Errorf("初始化 GitHub 检索failed: %w", err)
	}

	loc, err := LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		return nil, err
	}
	b.Prompts = prompts.NewBuilder(cfg.Agent.SkipToolMessagesOrDefault())
	b.Tools = registry.New()
	deps := builtin.Deps{
		Source:        source,
		Searcher:      searcher,
		Prompts:       b.Prompts,
		Location:      loc,
		ReferenceDate: cfg.Calendar.ReferenceDate,
		GitHubRepo:    cfg.GitHub.Repo,
		GitHubAuthor:  author,
		GitHubLimit:   cfg.GitHub.MaxResults,
	}
	if b.Model != nil {
		deps.Model = b.Model
	}
	builtin.RegisterBuiltin(b.Tools, deps)
	if opts.ToolsOnly {
		return b, nil
	}

	b.Controller, err = graph.NewController(ctx, graph.Deps{
		Model:   b.Model,
		Tools:   b.Tools,
		Prompts: b.Prompts,
		Logger:  logger,
	}, graph.Options{MaxSteps: cfg.Agent.MaxSteps})
	if err != nil {
		return nil, fmt.Errorf("初始化对话图failed: %w", err)
	}

	b.Checkpoints, err = checkpoint.NewStore(ctx, cfg.CheckpointStore)
	if err != nil {
		return nil, fmt.Errorf("初始化 Checkpoint 存储failed: %w", err)
	}
	b.Sessions = session.NewManager(b.Checkpoints, b.Controller, session.Options{
		TurnTimeout: config.ParseDuration(cfg.Agent.TurnTimeout, session.DefaultTurnTimeout),
		Logger:      logger,
	})
	logger.Info("bootstrap ready",
		"tools", len(b.Tools.Names()),
		"checkpoint_store", cfg.CheckpointStore.Type,
		"github_mode", cfg.GitHub.Mode,
		"github_author", author,
		"skip_tool_messages", b.Prompts.SkipToolMessages(),
	)
	return b, nil
}

// Close 释放 Checkpoint 存储与日志文件
func (b *Bootstrap) Close() error {
	var firstErr error
	if b.Checkpoints != nil {
		if err := b.Checkpoints.Close(); err != nil {
			firstErr = err
		}
	}
	if err := b.Logger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

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
	"strings"
	"time"
	_ "time/tzdata"

	"week-planner/internal/github"
	"week-planner/internal/mockdata"
	"week-planner/internal/model/llm"
	"week-planner/pkg/config"
	pkgerrors "week-planner/pkg/errors"
	"week-planner/pkg/secrets"
)

// NewSecretStoreFromConfig 根据 secrets 配置创建密钥存储
func NewSecretStoreFromConfig(cfg *config.Config) (secrets.Store, error) {
	return secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Vault: secrets.VaultConfig{
			Address:    cfg.Secrets.Vault.Address,
			Token:      cfg.Secrets.Vault.Token,
			PathPrefix: cfg.Secrets.Vault.PathPrefix,
		},
	})
}

// NewChatModelFromConfig 根据 model.defaults.llm 创建带限流的 ChatModel
func NewChatModelFromConfig(ctx context.Context, cfg *config.Config, store secrets.Store) (*llm.RateLimitedChatModel, error) {
	return llm.NewChatModel(ctx, cfg, store)
}

// NewSearcherFromConfig 根据 github 配置创建 PR 检索；token 支持 secret:// 引用
func NewSearcherFromConfig(ctx context.Context, cfg *config.Config, store secrets.Store, source mockdata.Source) (github.Searcher, error) {
	token, err := secrets.Resolve(ctx, store, cfg.GitHub.Token)
	if err != nil {
		return nil, fmt.Errorf("resolve github token: %w", err)
	}
	return github.NewSearcher(cfg.GitHub.Mode, github.ClientConfig{
		BaseURL: cfg.GitHub.BaseURL,
		Token:   token,
		Timeout: config.ParseDuration(cfg.GitHub.Timeout, 15*time.Second),
	}, source)
}

// ResolveGitHubAuthor github.author 为空时取员工档案的 github_handle；api 模式下仍为空则报错
func ResolveGitHubAuthor(ctx context.Context, cfg *config.Config, source mockdata.Source) (string, error) {
	if author := strings.TrimSpace(cfg.GitHub.Author); author != "" {
		return author, nil
	}
	emp, err := source.Employee(ctx)
	if err == nil && emp.GitHubHandle != "" {
		return emp.GitHubHandle, nil
	}
	if cfg.GitHub.Mode != "api" {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("github.author is empty and the employee record is unavailable: %w", err)
	}
	return "", fmt.Errorf("github.author is required in api mode: %w", pkgerrors.ErrInvalidArg)
}

// LoadLocation calendar.timezone -> *time.Location，空为 UTC
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar.timezone %q: %w", name, err)
	}
	return loc, nil
}

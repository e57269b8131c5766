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

package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"week-planner/internal/mockdata"
	pkgerrors "week-planner/pkg/errors"
)

// DefaultBaseURL GitHub REST API 地址
const DefaultBaseURL = "https://api.github.com"

// DefaultLimit 单次检索保留的最大条数
const DefaultLimit = 15

// PullRequest 返回给模型的 PR 摘要
type PullRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	State string `json:"state"`
	URL   string `json:"url"`
}

// Searcher 代码托管检索接口
type Searcher interface {
	SearchPullRequests(ctx context.Context, query string, limit int) ([]PullRequest, error)
}

// PullRequestQuery 构造 search/issues 查询串
func PullRequestQuery(repo, author string) string {
	parts := make([]string, 0, 3)
	if repo != "" {
		parts = append(parts, "repo:"+repo)
	}
	if author != "" {
		parts = append(parts, "author:"+author)
	}
	parts = append(parts, "type:pr")
	return strings.Join(parts, " ")
}

// Client 基于 resty 的 GitHub search API 客户端
type Client struct {
	client *resty.Client
	token  string
}

// ClientConfig Client 配置
type ClientConfig struct {
	BaseURL string
	Token   string // 可选；空则匿名（易受限流）
	Timeout time.Duration
}

// NewClient 创建 GitHub 客户端
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/vnd.github+json")
	return &Client{client: c, token: cfg.Token}
}

type searchResponse struct {
	TotalCount int                    `json:"total_count"`
	Items      []mockdata.PullRequest `json:"items"`
}

// SearchPullRequests 实现 Searcher；结果按 limit 截断
func (c *Client) SearchPullRequests(ctx context.Context, query string, limit int) ([]PullRequest, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var result searchResponse
	r := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"per_page": strconv.Itoa(limit),
		}).
		SetResult(&result)
	if c.token != "" {
		r.SetHeader("Authorization", "Bearer "+c.token)
	}
	resp, err := r.Get("/search/issues")
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrUnavailable, "github search: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrUnavailable, "github search 返回 %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return summarize(result.Items, limit), nil
}

// MockSearcher 从静态数据返回 PR 列表，忽略查询串
type MockSearcher struct {
	source mockdata.Source
}

// NewMockSearcher 创建基于静态数据的 Searcher
func NewMockSearcher(source mockdata.Source) *MockSearcher {
	return &MockSearcher{source: source}
}

// SearchPullRequests 实现 Searcher
func (m *MockSearcher) SearchPullRequests(ctx context.Context, query string, limit int) ([]PullRequest, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	list, err := m.source.PullRequests(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(list.Items, limit), nil
}

func summarize(items []mockdata.PullRequest, limit int) []PullRequest {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]PullRequest, 0, len(items))
	for _, it := range items {
		out = append(out, PullRequest{
			Title: it.Title,
			Date:  it.CreatedAt,
			State: it.State,
			URL:   it.HTMLURL,
		})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// NewSearcher 按 mode（mock | api）创建 Searcher
func NewSearcher(mode string, cfg ClientConfig, source mockdata.Source) (Searcher, error) {
	switch mode {
	case "", "mock":
		return NewMockSearcher(source), nil
	case "api":
		return NewClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported github mode: %s", mode)
	}
}

package builtin

import (
	"context"
	"encoding/json"

	"week-planner/internal/github"
	"week-planner/internal/tool"
)

// PullRequestsTool 实现 get_github_pull_requests
type PullRequestsTool struct {
	searcher github.Searcher
	repo     string
	author   string
	limit    int
}

// NewPullRequestsTool 创建 get_github_pull_requests 工具
func NewPullRequestsTool(searcher github.Searcher, repo, author string, limit int) *PullRequestsTool {
	if limit <= 0 {
		limit = github.DefaultLimit
	}
	return &PullRequestsTool{searcher: searcher, repo: repo, author: author, limit: limit}
}

// Name 实现 tool.Tool
func (t *PullRequestsTool) Name() string { return ToolPullRequests }

// Description 实现 tool.Tool
func (t *PullRequestsTool) Description() string {
	return "Use this to get the user's recent GitHub pull requests with title, date, state and url."
}

// Schema 实现 tool.Tool
func (t *PullRequestsTool) Schema() tool.Schema { return tool.NoArgs() }

// Execute 实现 tool.Tool
func (t *PullRequestsTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	prs, err := t.searcher.SearchPullRequests(ctx, github.PullRequestQuery(t.repo, t.author), t.limit)
	if err != nil {
		return tool.ToolResult{}, err
	}
	if len(prs) > t.limit {
		prs = prs[:t.limit]
	}
	if prs == nil {
		prs = []github.PullRequest{}
	}
	raw, err := json.Marshal(prs)
	if err != nil {
		return tool.ToolResult{}, err
	}
	return tool.ToolResult{Content: string(raw)}, nil
}

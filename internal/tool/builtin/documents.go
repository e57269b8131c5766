package builtin

import (
	"context"

	"week-planner/internal/mockdata"
	"week-planner/internal/tool"
)

// DocumentTool 原样返回一份 Markdown 文档（目标、近况、技术方案）
type DocumentTool struct {
	name   string
	desc   string
	file   string
	source mockdata.Source
}

// NewUserGoalsTool 创建 get_user_goals 工具
func NewUserGoalsTool(source mockdata.Source) *DocumentTool {
	return &DocumentTool{name: ToolUserGoals, file: mockdata.FileGoals, source: source,
		desc: "Use this to get the user's current goals."}
}

// NewRecentUpdatesTool 创建 get_recent_updates 工具
func NewRecentUpdatesTool(source mockdata.Source) *DocumentTool {
	return &DocumentTool{name: ToolRecentUpdates, file: mockdata.FileUpdates, source: source,
		desc: "Use this to get the user's recent status updates and feedback."}
}

// NewTechSpecTool 创建 get_tech_spec 工具
func NewTechSpecTool(source mockdata.Source) *DocumentTool {
	return &DocumentTool{name: ToolTechSpec, file: mockdata.FileTechSpec, source: source,
		desc: "Use this to get the tech spec the user is currently working on."}
}

func (t *DocumentTool) Name() string        { return t.name }
func (t *DocumentTool) Description() string { return t.desc }
func (t *DocumentTool) Schema() tool.Schema { return tool.NoArgs() }

func (t *DocumentTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	doc, err := t.source.Document(ctx, t.file)
	if err != nil {
		return tool.ToolResult{}, err
	}
	return tool.ToolResult{Content: doc}, nil
}

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

package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"week-planner/internal/mockdata"
	"week-planner/internal/prompts"
	"week-planner/internal/tool"
)

// CompetencyMatrixTool 实现 get_competency_matrix_for_level：由模型从矩阵中抽取指定职级
type CompetencyMatrixTool struct {
	source  mockdata.Source
	model   model.BaseChatModel
	prompts *prompts.Builder
}

// NewCompetencyMatrixTool 创建 get_competency_matrix_for_level 工具
func NewCompetencyMatrixTool(source mockdata.Source, m model.BaseChatModel, p *prompts.Builder) *CompetencyMatrixTool {
	return &CompetencyMatrixTool{source: source, model: m, prompts: p}
}

// Name 实现 tool.Tool
func (t *CompetencyMatrixTool) Name() string { return ToolCompetencyMatrix }

// Description 实现 tool.Tool
func (t *CompetencyMatrixTool) Description() string {
	return "Use this to get the competency expectations for a given level of the user's role."
}

// Schema 实现 tool.Tool
func (t *CompetencyMatrixTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"level": {Type: "string", Description: "Level identifier, e.g. L4"},
		},
		Required: []string{"level"},
	}
}

// Execute 实现 tool.Tool
func (t *CompetencyMatrixTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	if t.model == nil {
		return tool.ToolResult{Err: "model not configured"}, nil
	}
	level, _ := input["level"].(string)
	if strings.TrimSpace(level) == "" {
		return tool.ToolResult{Err: "level is required"}, nil
	}
	matrix, err := t.source.CompetencyMatrix(ctx)
	if err != nil {
		return tool.ToolResult{}, err
	}
	canonical, ok := matrix.FindLevel(level)
	if !ok {
		return tool.ToolResult{Err: fmt.Sprintf("unknown level %q; valid levels: %s", level, strings.Join(matrix.LevelNames(), ", "))}, nil
	}
	raw, err := json.MarshalIndent(matrix, "", "  ")
	if err != nil {
		return tool.ToolResult{}, err
	}
	msgs, err := t.prompts.ExtractLevelInput(ctx, canonical, string(raw))
	if err != nil {
		return tool.ToolResult{}, err
	}
	reply, err := t.model.Generate(ctx, msgs)
	if err != nil {
		return tool.ToolResult{}, fmt.Errorf("extract level %s: %w", canonical, err)
	}
	return tool.ToolResult{Content: reply.Content}, nil
}

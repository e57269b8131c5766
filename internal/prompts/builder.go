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

package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"week-planner/internal/conversation"
)

// Builder 构建模型输入：system 模板 + 按上下文策略转换的历史
type Builder struct {
	skipToolMessages bool
	planner          prompt.ChatTemplate
	narrate          prompt.ChatTemplate
	extract          prompt.ChatTemplate
}

// NewBuilder 创建 Builder；skipToolMessages 为 true 时构建上下文跳过工具消息
func NewBuilder(skipToolMessages bool) *Builder {
	return &Builder{
		skipToolMessages: skipToolMessages,
		planner: prompt.FromMessages(schema.FString,
			schema.SystemMessage(plannerSystemText),
			schema.MessagesPlaceholder("history", false),
		),
		narrate: prompt.FromMessages(schema.FString,
			schema.SystemMessage(narrateResultsText),
		),
		extract: prompt.FromMessages(schema.FString,
			schema.SystemMessage(extractLevelSystemText),
			schema.UserMessage(extractLevelUserText),
		),
	}
}

// SkipToolMessages 当前上下文策略
func (b *Builder) SkipToolMessages() bool { return b.skipToolMessages }

// ModelInput 为 model_call 步骤构建消息列表
func (b *Builder) ModelInput(ctx context.Context, state *conversation.State, userContext string) ([]*schema.Message, error) {
	if strings.TrimSpace(userContext) == "" {
		userContext = unknownUserContext
	}
	var history []*schema.Message
	if b.skipToolMessages {
		history = filteredHistory(state.Messages)
	} else {
		history = fullHistory(state.Messages)
	}
	msgs, err := b.planner.Format(ctx, map[string]any{
		"user_context": userContext,
		"history":      history,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", PlannerSystem, err)
	}
	if !b.skipToolMessages {
		return msgs, nil
	}
	pending := state.PendingToolResults()
	if len(pending) == 0 {
		return msgs, nil
	}
	narration, err := b.narrate.Format(ctx, map[string]any{
		"results": renderResults(pending),
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", NarrateResults, err)
	}
	return append(msgs, narration...), nil
}

// ExtractLevelInput 为能力矩阵抽取构建消息列表
func (b *Builder) ExtractLevelInput(ctx context.Context, level, matrix string) ([]*schema.Message, error) {
	msgs, err := b.extract.Format(ctx, map[string]any{
		"level":  level,
		"matrix": matrix,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", ExtractLevel, err)
	}
	return msgs, nil
}

// filteredHistory 跳过工具结果，并去掉 assistant 上的 tool_calls；因此变空的 assistant 消息丢弃
func filteredHistory(msgs []conversation.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		switch v := m.(type) {
		case conversation.Human:
			out = append(out, schema.UserMessage(v.Content))
		case conversation.Assistant:
			if strings.TrimSpace(v.Content) == "" {
				continue
			}
			out = append(out, schema.AssistantMessage(v.Content, nil))
		case conversation.ToolResult:
			continue
		}
	}
	return out
}

func fullHistory(msgs []conversation.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, conversation.ToSchema(m))
	}
	return out
}

func renderResults(results []conversation.ToolResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", r.Name, r.Content)
	}
	return b.String()
}

package graph

import (
	"github.com/cloudwego/eino/compose"

	"week-planner/internal/conversation"
)

// Step 图中的下一步
type Step string

const (
	StepGreeting     Step = "greeting"
	StepModelCall    Step = "model_call"
	StepToolDispatch Step = "tool_dispatch"
	StepEnd          Step = "end"
)

// Route 仅依据 StarterDone 与最后一条消息决定下一步
func Route(st *conversation.State) Step {
	if !st.StarterDone {
		return StepGreeting
	}
	switch last := st.Last().(type) {
	case conversation.ToolResult:
		return StepModelCall
	case conversation.Assistant:
		if last.HasToolCalls() {
			return StepToolDispatch
		}
		return StepEnd
	case conversation.Human:
		return StepModelCall
	case nil:
		// 问候之后的空历史：本轮结束
		return StepEnd
	}
	return StepEnd
}

// nodeKey Step -> 图节点名
func nodeKey(s Step) string {
	if s == StepEnd {
		return compose.END
	}
	return string(s)
}

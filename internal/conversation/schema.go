package conversation

import (
	"github.com/cloudwego/eino/schema"
)

// ToSchema 转为 eino 消息（完整工具协议：assistant tool_calls + tool 消息）
func ToSchema(m Message) *schema.Message {
	switch v := m.(type) {
	case Human:
		return schema.UserMessage(v.Content)
	case Assistant:
		msg := schema.AssistantMessage(v.Content, nil)
		for _, tc := range v.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return msg
	case ToolResult:
		return &schema.Message{
			Role:       schema.Tool,
			Content:    v.Content,
			ToolCallID: v.CallID,
			ToolName:   v.Name,
		}
	}
	return nil
}

// FromSchemaReply 将模型回复转为 Assistant 消息
func FromSchemaReply(msg *schema.Message) Assistant {
	if msg == nil {
		return Assistant{}
	}
	out := Assistant{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out
}

package tool

import (
	"context"
)

// Schema 表示工具的 JSON Schema（供 LLM function-calling 使用）
type Schema struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
}

// SchemaProperty 表示 Schema 中单个属性的描述
type SchemaProperty struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Items       *SchemaProperty `json:"items,omitempty"`
}

// ToolResult 工具执行结果；Err 为可恢复错误（回给模型），Execute 的 error 为基础设施失败
type ToolResult struct {
	Content string `json:"content"`
	Err     string `json:"error,omitempty"`
}

// Text 返回写入对话的文本：可恢复错误渲染为 "error: <msg>"
func (r ToolResult) Text() string {
	if r.Err != "" {
		return "error: " + r.Err
	}
	return r.Content
}

// Tool Runtime 级工具接口
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, input map[string]any) (ToolResult, error)
}

// NoArgs 无参数工具的 Schema
func NoArgs() Schema {
	return Schema{Type: "object", Properties: map[string]SchemaProperty{}}
}

package builtin

import (
	"context"
	"encoding/json"
	"strings"

	"week-planner/internal/tool"
)

// SaveFocusItemsTool 实现 save_focus_items；只回执，不持久化
type SaveFocusItemsTool struct{}

// NewSaveFocusItemsTool 创建 save_focus_items 工具
func NewSaveFocusItemsTool() *SaveFocusItemsTool { return &SaveFocusItemsTool{} }

// Name 实现 tool.Tool
func (t *SaveFocusItemsTool) Name() string { return ToolSaveFocusItems }

// Description 实现 tool.Tool
func (t *SaveFocusItemsTool) Description() string {
	return "Saves the user's focus items for follow-up."
}

// Schema 实现 tool.Tool
func (t *SaveFocusItemsTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"items": {
				Type:        "array",
				Description: "The user's focus items for the week",
				Items:       &tool.SchemaProperty{Type: "string"},
			},
		},
		Required: []string{"items"},
	}
}

// Execute 实现 tool.Tool
func (t *SaveFocusItemsTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	items := stringList(input["items"])
	if len(items) == 0 {
		return tool.ToolResult{Err: "items must be a non-empty list of strings"}, nil
	}
	return tool.ToolResult{Content: "I've noted your focus items: " + strings.Join(items, ", ")}, nil
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, it := range list {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

var suggestions = map[string][]string{
	"productivity": {
		"Block out 2 hours for deep work each morning",
		"Set up a project tracking system",
		"Schedule weekly review sessions",
	},
	"health": {
		"Schedule gym sessions",
		"Plan healthy meals",
		"Set reminders for breaks",
	},
	"learning": {
		"Allocate 1 hour daily for study",
		"Find relevant online courses",
		"Set up practice projects",
	},
}

var fallbackSuggestions = []string{
	"Create a specific plan",
	"Set measurable goals",
	"Schedule regular check-ins",
}

// SuggestionsFor 按类别（大小写不敏感）返回建议，未知类别返回通用建议
func SuggestionsFor(focusItem string) []string {
	list, ok := suggestions[strings.ToLower(strings.TrimSpace(focusItem))]
	if !ok {
		list = fallbackSuggestions
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// SuggestActionsTool 实现 suggest_actions
type SuggestActionsTool struct{}

// NewSuggestActionsTool 创建 suggest_actions 工具
func NewSuggestActionsTool() *SuggestActionsTool { return &SuggestActionsTool{} }

// Name 实现 tool.Tool
func (t *SuggestActionsTool) Name() string { return ToolSuggestActions }

// Description 实现 tool.Tool
func (t *SuggestActionsTool) Description() string {
	return "Suggests concrete actions based on a focus item category such as productivity, health or learning."
}

// Schema 实现 tool.Tool
func (t *SuggestActionsTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"focus_item": {Type: "string", Description: "Focus item category"},
		},
		Required: []string{"focus_item"},
	}
}

// Execute 实现 tool.Tool
func (t *SuggestActionsTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	item, _ := input["focus_item"].(string)
	raw, err := json.Marshal(SuggestionsFor(item))
	if err != nil {
		return tool.ToolResult{}, err
	}
	return tool.ToolResult{Content: string(raw)}, nil
}

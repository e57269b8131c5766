package tool

import (
	"github.com/cloudwego/eino/schema"
)

// ToolInfo 将工具描述转为 eino ToolInfo，供 ChatModel.WithTools 绑定
func ToolInfo(t Tool) *schema.ToolInfo {
	s := t.Schema()
	info := &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
	}
	if len(s.Properties) == 0 {
		return info
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	params := make(map[string]*schema.ParameterInfo, len(s.Properties))
	for name, p := range s.Properties {
		pi := paramInfo(p)
		pi.Required = required[name]
		params[name] = pi
	}
	info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	return info
}

func paramInfo(p SchemaProperty) *schema.ParameterInfo {
	pi := &schema.ParameterInfo{
		Type: dataType(p.Type),
		Desc: p.Description,
		Enum: p.Enum,
	}
	if p.Items != nil {
		pi.ElemInfo = paramInfo(*p.Items)
	}
	return pi
}

func dataType(t string) schema.DataType {
	switch t {
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}

// JSONSchema 返回 JSON Schema 形式的参数描述（供 MCP 等外部协议使用）
func JSONSchema(s Schema) map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = propertyJSON(p)
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

func propertyJSON(p SchemaProperty) map[string]any {
	m := map[string]any{"type": p.Type}
	if p.Type == "" {
		m["type"] = "string"
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	if p.Items != nil {
		m["items"] = propertyJSON(*p.Items)
	}
	return m
}

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

package registry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"week-planner/internal/tool"
	pkgerrors "week-planner/pkg/errors"
	"week-planner/pkg/metrics"
	"week-planner/pkg/tracing"
)

// Registry 工具注册表：注册、发现、供 LLM 使用的 Schema 列表；保持注册顺序
type Registry struct {
	mu    sync.RWMutex
	tools map[string]tool.Tool
	order []string
}

// New 创建新的 ToolRegistry
func New() *Registry {
	return &Registry{
		tools: make(map[string]tool.Tool),
	}
}

// Register 注册工具；同名工具覆盖原位置
func (r *Registry) Register(t tool.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get 按名称获取工具
func (r *Registry) Get(name string) (tool.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List 按注册顺序返回所有工具
func (r *Registry) List() []tool.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tool.Tool, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tools[name])
	}
	return list
}

// Names 按注册顺序返回工具名
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ToolInfos 返回供 ChatModel.WithTools 绑定的工具目录
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	list := r.List()
	infos := make([]*schema.ToolInfo, 0, len(list))
	for _, t := range list {
		infos = append(infos, tool.ToolInfo(t))
	}
	return infos
}

// ToolSchemaForLLM 单个工具供 LLM 使用的描述（name, description, parameters）
type ToolSchemaForLLM struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  tool.Schema `json:"parameters"`
}

// Schemas 返回工具目录（HTTP /api/tools 与 CLI tools 子命令使用）
func (r *Registry) Schemas() []ToolSchemaForLLM {
	list := r.List()
	out := make([]ToolSchemaForLLM, 0, len(list))
	for _, t := range list {
		out = append(out, ToolSchemaForLLM{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return out
}

// SchemasForLLM 返回所有工具的 Schema 列表（JSON）
func (r *Registry) SchemasForLLM() ([]byte, error) {
	return json.Marshal(r.Schemas())
}

// DecodeArguments 解析模型给出的 JSON 参数；空串视为无参数
func DecodeArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "tool arguments %q: %v", raw, err)
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// Invoke 按名称执行工具：未知工具返回 error；参数无法解析与工具的可恢复错误都放在 ToolResult.Err 中，交回模型处理
func (r *Registry) Invoke(ctx context.Context, name, callID, arguments string) (tool.ToolResult, error) {
	t, ok := r.Get(name)
	if !ok {
		return tool.ToolResult{}, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "tool %q", name)
	}
	input, err := DecodeArguments(arguments)
	if err != nil {
		metrics.ToolErrorTotal.WithLabelValues(name, "result").Inc()
		return tool.ToolResult{Err: "invalid arguments: " + err.Error()}, nil
	}
	return r.execute(ctx, t, callID, input)
}

// InvokeInput 与 Invoke 相同，但参数已是结构化 map（MCP 等调用方使用）
func (r *Registry) InvokeInput(ctx context.Context, name string, input map[string]any) (tool.ToolResult, error) {
	t, ok := r.Get(name)
	if !ok {
		return tool.ToolResult{}, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "tool %q", name)
	}
	if input == nil {
		input = map[string]any{}
	}
	return r.execute(ctx, t, "", input)
}

func (r *Registry) execute(ctx context.Context, t tool.Tool, callID string, input map[string]any) (tool.ToolResult, error) {
	ctx, span := tracing.StartToolSpan(ctx, t.Name(), callID)
	start := time.Now()
	res, err := t.Execute(ctx, input)
	metrics.ToolDuration.WithLabelValues(t.Name()).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.ToolErrorTotal.WithLabelValues(t.Name(), "failure").Inc()
	case res.Err != "":
		metrics.ToolErrorTotal.WithLabelValues(t.Name(), "result").Inc()
	}
	tracing.End(span, err)
	if err != nil {
		return tool.ToolResult{}, pkgerrors.Wrapf(err, "tool %s", t.Name())
	}
	return res, nil
}

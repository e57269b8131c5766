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
	"strings"
	"time"

	"week-planner/internal/mockdata"
	"week-planner/internal/tool"
)

// UserFirstNameTool 实现 get_user_first_name
type UserFirstNameTool struct {
	source mockdata.Source
}

// NewUserFirstNameTool 创建 get_user_first_name 工具
func NewUserFirstNameTool(source mockdata.Source) *UserFirstNameTool {
	return &UserFirstNameTool{source: source}
}

// Name 实现 tool.Tool
func (t *UserFirstNameTool) Name() string { return ToolUserFirstName }

// Description 实现 tool.Tool
func (t *UserFirstNameTool) Description() string {
	return "Use this to get the user's first name."
}

// Schema 实现 tool.Tool
func (t *UserFirstNameTool) Schema() tool.Schema { return tool.NoArgs() }

// Execute 实现 tool.Tool
func (t *UserFirstNameTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	emp, err := t.source.Employee(ctx)
	if err != nil {
		return tool.ToolResult{}, err
	}
	return tool.ToolResult{Content: emp.FirstName}, nil
}

// UserContextTool 实现 get_user_context_string
type UserContextTool struct {
	source mockdata.Source
}

// NewUserContextTool 创建 get_user_context_string 工具
func NewUserContextTool(source mockdata.Source) *UserContextTool {
	return &UserContextTool{source: source}
}

// Name 实现 tool.Tool
func (t *UserContextTool) Name() string { return ToolUserContext }

// Description 实现 tool.Tool
func (t *UserContextTool) Description() string {
	return "Use this to get a short description of the user: role, level, team, manager and location."
}

// Schema 实现 tool.Tool
func (t *UserContextTool) Schema() tool.Schema { return tool.NoArgs() }

// Execute 实现 tool.Tool
func (t *UserContextTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	emp, err := t.source.Employee(ctx)
	if err != nil {
		return tool.ToolResult{}, err
	}
	return tool.ToolResult{Content: emp.ContextString()}, nil
}

// DayOfWeekTool 实现 get_day_of_week
type DayOfWeekTool struct {
	clock Clock
	loc   *time.Location
}

// NewDayOfWeekTool 创建 get_day_of_week 工具；loc 为空使用 UTC
func NewDayOfWeekTool(clock Clock, loc *time.Location) *DayOfWeekTool {
	if loc == nil {
		loc = time.UTC
	}
	return &DayOfWeekTool{clock: clock, loc: loc}
}

// Name 实现 tool.Tool
func (t *DayOfWeekTool) Name() string { return ToolDayOfWeek }

// Description 实现 tool.Tool
func (t *DayOfWeekTool) Description() string {
	return "Use this to get the current day of the week."
}

// Schema 实现 tool.Tool
func (t *DayOfWeekTool) Schema() tool.Schema { return tool.NoArgs() }

// Execute 实现 tool.Tool
func (t *DayOfWeekTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	return tool.ToolResult{Content: "Today is " + t.clock.now().In(t.loc).Weekday().String() + "."}, nil
}

// Weekday 从 get_day_of_week 的输出中取出星期名（"Today is Monday." -> "Monday"）
func Weekday(dayOfWeek string) string {
	s := strings.TrimSpace(dayOfWeek)
	s = strings.TrimPrefix(s, "Today is ")
	return strings.TrimSuffix(s, ".")
}

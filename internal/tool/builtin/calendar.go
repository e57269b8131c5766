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
	"fmt"
	"sort"
	"strings"
	"time"

	"week-planner/internal/mockdata"
	"week-planner/internal/tool"
)

// 周选择
const (
	WeekThis = "this_week"
	WeekLast = "last_week"
)

// 固定文案
const (
	InvalidWeekMessage = "Invalid week selection. Please choose 'last_week' or 'this_week'."
	noEventsThisWeek   = "No events found for this week."
	noEventsLastWeek   = "No events found for last week."
	headerThisWeek     = "Here's your week ahead:"
	headerLastWeek     = "Here's your past week:"
)

// WeekWindow 半开区间 [Start, End)
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

// Contains 判断 t 是否落在窗口内
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor 以 ref 所在周的周一零点为 this_week 起点，last_week 向前 7 天
func WindowFor(week string, ref time.Time, loc *time.Location) (WeekWindow, bool) {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	switch week {
	case WeekThis:
		return WeekWindow{Start: monday, End: monday.AddDate(0, 0, 7)}, true
	case WeekLast:
		return WeekWindow{Start: monday.AddDate(0, 0, -7), End: monday}, true
	default:
		return WeekWindow{}, false
	}
}

// SummarizeWeek 过滤落在窗口内的事件并格式化
func SummarizeWeek(cal *mockdata.Calendar, week string, ref time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	window, ok := WindowFor(week, ref, loc)
	if !ok {
		return InvalidWeekMessage, nil
	}

	type dated struct {
		start time.Time
		end   time.Time
		ev    mockdata.Event
	}
	var matched []dated
	for _, ev := range cal.Events {
		start, err := ev.Start.Time(loc)
		if err != nil {
			return "", fmt.Errorf("event %q start: %w", ev.Summary, err)
		}
		if !window.Contains(start) {
			continue
		}
		var end time.Time
		if !ev.Start.AllDay() {
			end, err = ev.End.Time(loc)
			if err != nil {
				return "", fmt.Errorf("event %q end: %w", ev.Summary, err)
			}
		}
		matched = append(matched, dated{start: start, end: end, ev: ev})
	}

	if len(matched) == 0 {
		if week == WeekThis {
			return noEventsThisWeek, nil
		}
		return noEventsLastWeek, nil
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].start.Before(matched[j].start) })

	var b strings.Builder
	if week == WeekThis {
		b.WriteString(headerThisWeek)
	} else {
		b.WriteString(headerLastWeek)
	}
	b.WriteString("\n")
	for _, d := range matched {
		date := d.start.Format("January 02, 2006")
		if d.ev.Start.AllDay() {
			fmt.Fprintf(&b, "- %s (all day): %s\n", date, d.ev.Summary)
			continue
		}
		fmt.Fprintf(&b, "- %s at %s - %s: %s\n", date, d.start.Format("03:04 PM"), d.end.Format("03:04 PM"), d.ev.Summary)
	}
	return b.String(), nil
}

// CalendarSummaryTool 实现 get_calendar_summary
type CalendarSummaryTool struct {
	source        mockdata.Source
	clock         Clock
	referenceDate string
	loc           *time.Location
}

// NewCalendarSummaryTool 创建 get_calendar_summary 工具；referenceDate 为空时以 clock 的当天为准
func NewCalendarSummaryTool(source mockdata.Source, clock Clock, referenceDate string, loc *time.Location) *CalendarSummaryTool {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarSummaryTool{source: source, clock: clock, referenceDate: referenceDate, loc: loc}
}

// Name 实现 tool.Tool
func (t *CalendarSummaryTool) Name() string { return ToolCalendarSummary }

// Description 实现 tool.Tool
func (t *CalendarSummaryTool) Description() string {
	return "Analyzes calendar events and returns a summary of the selected week: 'this_week' for the week ahead or 'last_week' for the past week."
}

// Schema 实现 tool.Tool
func (t *CalendarSummaryTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"week": {
				Type:        "string",
				Description: "Which week to summarize",
				Enum:        []string{WeekLast, WeekThis},
			},
		},
		Required: []string{"week"},
	}
}

// Execute 实现 tool.Tool
func (t *CalendarSummaryTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	week, _ := input["week"].(string)
	if week != WeekThis && week != WeekLast {
		return tool.ToolResult{Content: InvalidWeekMessage}, nil
	}
	ref, err := t.reference()
	if err != nil {
		return tool.ToolResult{}, err
	}
	cal, err := t.source.Calendar(ctx)
	if err != nil {
		return tool.ToolResult{}, err
	}
	summary, err := SummarizeWeek(cal, week, ref, t.loc)
	if err != nil {
		return tool.ToolResult{}, err
	}
	return tool.ToolResult{Content: summary}, nil
}

func (t *CalendarSummaryTool) reference() (time.Time, error) {
	if t.referenceDate == "" {
		return t.clock.now().In(t.loc), nil
	}
	ref, err := time.ParseInLocation("2006-01-02", t.referenceDate, t.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar reference_date %q: %w", t.referenceDate, err)
	}
	return ref, nil
}

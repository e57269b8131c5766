package builtin

import "time"

// 工具名
const (
	ToolUserFirstName    = "get_user_first_name"
	ToolUserContext      = "get_user_context_string"
	ToolDayOfWeek        = "get_day_of_week"
	ToolCalendarSummary  = "get_calendar_summary"
	ToolCompetencyMatrix = "get_competency_matrix_for_level"
	ToolPullRequests     = "get_github_pull_requests"
	ToolSaveFocusItems   = "save_focus_items"
	ToolSuggestActions   = "suggest_actions"
	ToolUserGoals        = "get_user_goals"
	ToolRecentUpdates    = "get_recent_updates"
	ToolTechSpec         = "get_tech_spec"
)

// Clock 当前时间来源；测试注入固定时钟
type Clock func() time.Time

// FixedClock 返回恒定时间的 Clock
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

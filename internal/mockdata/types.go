package mockdata

import (
	"fmt"
	"strings"
	"time"
)

// Employee 员工档案
type Employee struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Title        string `json:"title"`
	Level        string `json:"level"`
	Team         string `json:"team"`
	Manager      string `json:"manager"`
	Location     string `json:"location"`
	Timezone     string `json:"timezone"`
	GitHubHandle string `json:"github_handle"`
	StartDate    string `json:"start_date"`
}

// ContextString 用于注入 system prompt 的一段用户背景描述
func (e *Employee) ContextString() string {
	var b strings.Builder
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	fmt.Fprintf(&b, "The user is %s", name)
	if e.Title != "" {
		fmt.Fprintf(&b, ", a %s", e.Title)
		if e.Level != "" {
			fmt.Fprintf(&b, " (level %s)", e.Level)
		}
	}
	if e.Team != "" {
		fmt.Fprintf(&b, " on the %s team", e.Team)
	}
	b.WriteString(".")
	if e.Manager != "" {
		fmt.Fprintf(&b, " They report to %s.", e.Manager)
	}
	if e.Location != "" {
		if e.Timezone != "" {
			fmt.Fprintf(&b, " They work from %s (%s).", e.Location, e.Timezone)
		} else {
			fmt.Fprintf(&b, " They work from %s.", e.Location)
		}
	}
	if e.GitHubHandle != "" {
		fmt.Fprintf(&b, " Their GitHub handle is %s.", e.GitHubHandle)
	}
	return b.String()
}

// Calendar 日历导出（Google Calendar 事件列表格式）
type Calendar struct {
	CalendarID string  `json:"calendar_id"`
	TimeZone   string  `json:"time_zone"`
	Events     []Event `json:"events"`
}

// Event 单个日历事件
type Event struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

// EventTime dateTime 与 date（全天事件）二选一
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// AllDay 是否为全天事件
func (t EventTime) AllDay() bool { return t.DateTime == "" && t.Date != "" }

// Time 解析事件时间；全天事件按 loc 的零点解析
func (t EventTime) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return ts.In(loc), nil
	}
	if t.Date != "" {
		return time.ParseInLocation("2006-01-02", t.Date, loc)
	}
	return time.Time{}, fmt.Errorf("event time has neither dateTime nor date")
}

// CompetencyMatrix 岗位能力矩阵
type CompetencyMatrix struct {
	Role   string            `json:"role"`
	Levels []CompetencyLevel `json:"levels"`
}

// CompetencyLevel 单个职级的能力要求
type CompetencyLevel struct {
	Level        string            `json:"level"`
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	Competencies map[string]string `json:"competencies"`
}

// LevelNames 矩阵中声明的职级
func (m *CompetencyMatrix) LevelNames() []string {
	out := make([]string, 0, len(m.Levels))
	for _, l := range m.Levels {
		out = append(out, l.Level)
	}
	return out
}

// FindLevel 大小写不敏感地查找职级，返回矩阵中的规范写法
func (m *CompetencyMatrix) FindLevel(level string) (string, bool) {
	level = strings.TrimSpace(level)
	for _, l := range m.Levels {
		if strings.EqualFold(l.Level, level) {
			return l.Level, true
		}
	}
	return "", false
}

// PullRequestList 代码托管搜索结果（search/issues 格式）
type PullRequestList struct {
	TotalCount int           `json:"total_count"`
	Items      []PullRequest `json:"items"`
}

// PullRequest 单个 PR 检索结果
type PullRequest struct {
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	State     string `json:"state"`
	HTMLURL   string `json:"html_url"`
}

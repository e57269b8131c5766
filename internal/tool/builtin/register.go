package builtin

import (
	"time"

	"github.com/cloudwego/eino/components/model"

	"week-planner/internal/github"
	"week-planner/internal/mockdata"
	"week-planner/internal/prompts"
	"week-planner/internal/tool"
	"week-planner/internal/tool/registry"
)

// Deps 内置工具的依赖
type Deps struct {
	Source   mockdata.Source
	Searcher github.Searcher
	Model    model.BaseChatModel // 能力矩阵抽取使用；为空时该工具返回可恢复错误
	Prompts  *prompts.Builder
	Clock    Clock
	Location *time.Location

	ReferenceDate string
	GitHubRepo    string
	GitHubAuthor  string
	GitHubLimit   int
}

// RegisterBuiltin 将内置工具按固定顺序注册到 ToolRegistry
func RegisterBuiltin(reg *registry.Registry, deps Deps) {
	if reg == nil {
		return
	}
	if deps.Prompts == nil {
		deps.Prompts = prompts.NewBuilder(true)
	}
	reg.Register(NewUserFirstNameTool(deps.Source))
	reg.Register(NewUserContextTool(deps.Source))
	reg.Register(NewDayOfWeekTool(deps.Clock, deps.Location))
	reg.Register(NewCalendarSummaryTool(deps.Source, deps.Clock, deps.ReferenceDate, deps.Location))
	reg.Register(NewCompetencyMatrixTool(deps.Source, deps.Model, deps.Prompts))
	if deps.Searcher != nil {
		reg.Register(NewPullRequestsTool(deps.Searcher, deps.GitHubRepo, deps.GitHubAuthor, deps.GitHubLimit))
	}
	reg.Register(NewSaveFocusItemsTool())
	reg.Register(NewSuggestActionsTool())
	reg.Register(NewUserGoalsTool(deps.Source))
	reg.Register(NewRecentUpdatesTool(deps.Source))
	reg.Register(NewTechSpecTool(deps.Source))
}

// RegisterBuiltinWithTools 仅注册给定工具（用于测试或最小装配）
func RegisterBuiltinWithTools(reg *registry.Registry, tools ...tool.Tool) {
	if reg == nil {
		return
	}
	for _, t := range tools {
		reg.Register(t)
	}
}

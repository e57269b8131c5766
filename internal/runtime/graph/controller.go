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

package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	"week-planner/internal/conversation"
	"week-planner/internal/prompts"
	"week-planner/internal/tool/builtin"
	"week-planner/internal/tool/registry"
	"week-planner/pkg/log"
	"week-planner/pkg/metrics"
	"week-planner/pkg/tracing"
)

// DefaultMaxSteps 单轮最大图步数
const DefaultMaxSteps = 24

// GraphName 编译后图的名称
const GraphName = "weekplan_turn"

// Deps 控制器依赖，启动时构造一次后注入
type Deps struct {
	Model   model.ToolCallingChatModel
	Tools   *registry.Registry
	Prompts *prompts.Builder
	Logger  *log.Logger
}

// Options 控制器选项
type Options struct {
	MaxSteps int
}

// Controller 对话图控制器：greeting / model_call / tool_dispatch 三个节点，节点之后经 Route 分支
type Controller struct {
	deps     Deps
	bound    model.ToolCallingChatModel
	runnable compose.Runnable[*conversation.State, *conversation.State]
}

// NewController 绑定工具目录并编译图
func NewController(ctx context.Context, deps Deps, opts Options) (*Controller, error) {
	if deps.Model == nil {
		return nil, fmt.Errorf("graph: model is required")
	}
	if deps.Tools == nil {
		return nil, fmt.Errorf("graph: tool registry is required")
	}
	if deps.Prompts == nil {
		deps.Prompts = prompts.NewBuilder(true)
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}

	bound, err := deps.Model.WithTools(deps.Tools.ToolInfos())
	if err != nil {
		return nil, fmt.Errorf("graph: bind tools: %w", err)
	}
	c := &Controller{deps: deps, bound: bound}

	g := compose.NewGraph[*conversation.State, *conversation.State]()
	nodes := map[Step]func(context.Context, *conversation.State) (*conversation.State, error){
		StepGreeting:     c.Greeting,
		StepModelCall:    c.ModelCall,
		StepToolDispatch: c.ToolDispatch,
	}
	for _, step := range []Step{StepGreeting, StepModelCall, StepToolDispatch} {
		if err := g.AddLambdaNode(string(step), compose.InvokableLambda(c.instrument(step, nodes[step]))); err != nil {
			return nil, fmt.Errorf("graph: add node %s: %w", step, err)
		}
	}
	// START 只会进入节点，空转的轮次由 RunTurn 直接返回
	if err := g.AddBranch(compose.START, newBranch(false)); err != nil {
		return nil, fmt.Errorf("graph: add start branch: %w", err)
	}
	for _, step := range []Step{StepGreeting, StepModelCall, StepToolDispatch} {
		if err := g.AddBranch(string(step), newBranch(true)); err != nil {
			return nil, fmt.Errorf("graph: add branch after %s: %w", step, err)
		}
	}

	runnable, err := g.Compile(ctx,
		compose.WithGraphName(GraphName),
		compose.WithMaxRunSteps(opts.MaxSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("graph: compile: %w", err)
	}
	c.runnable = runnable
	return c, nil
}

func newBranch(withEnd bool) *compose.GraphBranch {
	ends := map[string]bool{
		string(StepGreeting):     true,
		string(StepModelCall):    true,
		string(StepToolDispatch): true,
	}
	if withEnd {
		ends[compose.END] = true
	}
	return compose.NewGraphBranch(func(ctx context.Context, st *conversation.State) (string, error) {
		return nodeKey(Route(st)), nil
	}, ends)
}

func (c *Controller) instrument(step Step, fn func(context.Context, *conversation.State) (*conversation.State, error)) func(context.Context, *conversation.State) (*conversation.State, error) {
	return func(ctx context.Context, st *conversation.State) (*conversation.State, error) {
		metrics.StepTotal.WithLabelValues(string(step)).Inc()
		ctx, span := tracing.StartStepSpan(ctx, string(step), st.Len())
		out, err := fn(ctx, st)
		tracing.End(span, err)
		if err != nil {
			c.deps.Logger.Error("graph step failed", "step", string(step), "error", err)
			return nil, err
		}
		c.deps.Logger.Debug("graph step done", "step", string(step), "messages", out.Len())
		return out, nil
	}
}

// RunTurn 从当前状态推进图直到终止；输入状态不被修改
func (c *Controller) RunTurn(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	work := st.Clone()
	if work == nil {
		work = conversation.New()
	}
	if Route(work) == StepEnd {
		return work, nil
	}
	out, err := c.runnable.Invoke(ctx, work)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Greeting 每个会话只执行一次：取名字与星期，追加问候
func (c *Controller) Greeting(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	name, err := c.toolText(ctx, builtin.ToolUserFirstName)
	if err != nil {
		return nil, err
	}
	day, err := c.toolText(ctx, builtin.ToolDayOfWeek)
	if err != nil {
		return nil, err
	}
	st.Append(conversation.Assistant{Content: GreetingText(name, day)})
	st.StarterDone = true
	return st, nil
}

// GreetingText 问候文案；day 为 get_day_of_week 的输出
func GreetingText(name, day string) string {
	return fmt.Sprintf("Hi %s! Today is %s. Do you have any priorities for this week?", name, builtin.Weekday(day))
}

func (c *Controller) toolText(ctx context.Context, name string) (string, error) {
	res, err := c.deps.Tools.Invoke(ctx, name, "", "{}")
	if err != nil {
		return "", err
	}
	if res.Err != "" {
		return "", fmt.Errorf("%s: %s", name, res.Err)
	}
	return res.Content, nil
}

// ModelCall 构建上下文并调用绑定了工具的模型，追加其回复
func (c *Controller) ModelCall(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	userContext, err := c.toolText(ctx, builtin.ToolUserContext)
	if err != nil {
		c.deps.Logger.Warn("user context unavailable", "error", err)
		userContext = ""
	}
	input, err := c.deps.Prompts.ModelInput(ctx, st, userContext)
	if err != nil {
		return nil, err
	}
	reply, err := c.bound.Generate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	st.Append(conversation.FromSchemaReply(reply))
	return st, nil
}

// ToolDispatch 按模型给出的顺序逐个执行工具调用，每个调用追加一条结果；任一失败则整步失败
func (c *Controller) ToolDispatch(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	last, ok := st.Last().(conversation.Assistant)
	if !ok || !last.HasToolCalls() {
		return nil, fmt.Errorf("tool dispatch: last message carries no tool calls")
	}
	for _, call := range last.ToolCalls {
		res, err := c.deps.Tools.Invoke(ctx, call.Name, call.ID, call.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool dispatch %s (%s): %w", call.Name, call.ID, err)
		}
		st.Append(conversation.ToolResult{
			Content: res.Text(),
			CallID:  call.ID,
			Name:    call.Name,
		})
	}
	return st, nil
}

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

package conversation

// Kind 消息类别，用于序列化时区分三种消息
type Kind string

const (
	KindHuman     Kind = "human"
	KindAssistant Kind = "assistant"
	KindTool      Kind = "tool"
)

// Message 对话消息；仅有 Human、Assistant、ToolResult 三种实现
type Message interface {
	Kind() Kind
	Text() string
	sealed()
}

// ToolCall 模型请求的一次工具调用；Arguments 为模型给出的 JSON 对象文本
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Human 用户输入
type Human struct {
	Content string
}

// Assistant 模型回复，可携带待执行的工具调用
type Assistant struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolResult 工具执行结果，CallID 指回触发它的 ToolCall
type ToolResult struct {
	Content string
	CallID  string
	Name    string
}

func (Human) Kind() Kind      { return KindHuman }
func (Assistant) Kind() Kind  { return KindAssistant }
func (ToolResult) Kind() Kind { return KindTool }

func (m Human) Text() string      { return m.Content }
func (m Assistant) Text() string  { return m.Content }
func (m ToolResult) Text() string { return m.Content }

func (Human) sealed()      {}
func (Assistant) sealed()  {}
func (ToolResult) sealed() {}

// HasToolCalls 是否携带待执行的工具调用
func (m Assistant) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

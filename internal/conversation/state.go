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

import (
	"encoding/json"
	"fmt"
)

// State 一个会话的对话状态：线性消息历史 + 开场问候是否已完成
type State struct {
	Messages    []Message
	StarterDone bool
}

// New 创建空状态
func New() *State {
	return &State{}
}

// Append 追加消息；历史只追加不修改
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// Last 返回最后一条消息，空历史返回 nil
func (s *State) Last() Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// Len 消息条数
func (s *State) Len() int { return len(s.Messages) }

// Since 返回下标 i 之后追加的消息（用于取出本轮新增的消息）
func (s *State) Since(i int) []Message {
	if i < 0 {
		i = 0
	}
	if i >= len(s.Messages) {
		return nil
	}
	out := make([]Message, len(s.Messages)-i)
	copy(out, s.Messages[i:])
	return out
}

// Clone 深拷贝
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{StarterDone: s.StarterDone, Messages: make([]Message, len(s.Messages))}
	for i, m := range s.Messages {
		if a, ok := m.(Assistant); ok && a.ToolCalls != nil {
			calls := make([]ToolCall, len(a.ToolCalls))
			copy(calls, a.ToolCalls)
			a.ToolCalls = calls
			m = a
		}
		c.Messages[i] = m
	}
	return c
}

// PendingToolResults 返回末尾连续的 ToolResult（最近一次 tool_dispatch 的产出）
func (s *State) PendingToolResults() []ToolResult {
	i := len(s.Messages)
	for i > 0 {
		if _, ok := s.Messages[i-1].(ToolResult); !ok {
			break
		}
		i--
	}
	out := make([]ToolResult, 0, len(s.Messages)-i)
	for _, m := range s.Messages[i:] {
		out = append(out, m.(ToolResult))
	}
	return out
}

// wireMessage 持久化格式，kind 区分消息类别
type wireMessage struct {
	Kind      Kind       `json:"kind"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CallID    string     `json:"call_id,omitempty"`
	Name      string     `json:"name,omitempty"`
}

type wireState struct {
	Messages    []wireMessage `json:"messages"`
	StarterDone bool          `json:"starter_done"`
}

// MarshalJSON 实现 json.Marshaler
func (s State) MarshalJSON() ([]byte, error) {
	w := wireState{StarterDone: s.StarterDone, Messages: make([]wireMessage, 0, len(s.Messages))}
	for _, m := range s.Messages {
		switch v := m.(type) {
		case Human:
			w.Messages = append(w.Messages, wireMessage{Kind: KindHuman, Content: v.Content})
		case Assistant:
			w.Messages = append(w.Messages, wireMessage{Kind: KindAssistant, Content: v.Content, ToolCalls: v.ToolCalls})
		case ToolResult:
			w.Messages = append(w.Messages, wireMessage{Kind: KindTool, Content: v.Content, CallID: v.CallID, Name: v.Name})
		default:
			return nil, fmt.Errorf("conversation: unknown message type %T", m)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON 实现 json.Unmarshaler
func (s *State) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	msgs := make([]Message, 0, len(w.Messages))
	for i, m := range w.Messages {
		switch m.Kind {
		case KindHuman:
			msgs = append(msgs, Human{Content: m.Content})
		case KindAssistant:
			msgs = append(msgs, Assistant{Content: m.Content, ToolCalls: m.ToolCalls})
		case KindTool:
			msgs = append(msgs, ToolResult{Content: m.Content, CallID: m.CallID, Name: m.Name})
		default:
			return fmt.Errorf("conversation: message %d has unknown kind %q", i, m.Kind)
		}
	}
	s.Messages = msgs
	s.StarterDone = w.StarterDone
	return nil
}

// Encode 序列化为 checkpoint 字节
func Encode(s *State) ([]byte, error) {
	if s == nil {
		s = New()
	}
	return json.Marshal(s)
}

// Decode 从 checkpoint 字节还原
func Decode(data []byte) (*State, error) {
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	return s, nil
}

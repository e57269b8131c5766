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

package session

import (
	"strings"

	"github.com/google/uuid"

	"week-planner/internal/conversation"
)

// IDPrefix 会话 ID 前缀
const IDPrefix = "session-"

// NewID 生成新的会话 ID
func NewID() string {
	return IDPrefix + uuid.New().String()
}

// TurnResult 一轮对话的产出
type TurnResult struct {
	SessionID string
	// Messages 本轮新增的全部消息（含工具调用与工具结果）
	Messages []conversation.Message
	State    *conversation.State
}

// Replies 本轮中可展示给用户的助手文本，按出现顺序
func (r *TurnResult) Replies() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, m := range r.Messages {
		a, ok := m.(conversation.Assistant)
		if !ok || strings.TrimSpace(a.Content) == "" {
			continue
		}
		out = append(out, a.Content)
	}
	return out
}

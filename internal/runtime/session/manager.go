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
	"context"
	"strings"
	"time"

	"week-planner/internal/checkpoint"
	"week-planner/internal/conversation"
	pkgerrors "week-planner/pkg/errors"
	"week-planner/pkg/log"
	"week-planner/pkg/metrics"
	"week-planner/pkg/tracing"
)

// DefaultTurnTimeout 单轮默认超时
const DefaultTurnTimeout = 2 * time.Minute

// Runner 推进一轮对话（graph.Controller 实现）
type Runner interface {
	RunTurn(ctx context.Context, st *conversation.State) (*conversation.State, error)
}

// RunnerFunc 函数适配 Runner
type RunnerFunc func(ctx context.Context, st *conversation.State) (*conversation.State, error)

// RunTurn 实现 Runner
func (f RunnerFunc) RunTurn(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	return f(ctx, st)
}

// TurnError 轮次内部（模型、工具、数据源、超时）失败；与会话查找、输入校验的错误区分
type TurnError struct {
	SessionID string
	Err       error
}

func (e *TurnError) Error() string { return "turn " + e.SessionID + ": " + e.Err.Error() }

func (e *TurnError) Unwrap() error { return e.Err }

// Options Manager 选项
type Options struct {
	TurnTimeout time.Duration
	Logger      *log.Logger
}

// Manager 会话生命周期：Checkpoint 读写 + 每会话串行执行 Runner
type Manager struct {
	store  checkpoint.Store
	runner Runner
	locks  *keyedMutex
	opts   Options
}

// NewManager 创建 Manager
func NewManager(store checkpoint.Store, runner Runner, opts Options) *Manager {
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = DefaultTurnTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Manager{store: store, runner: runner, locks: newKeyedMutex(), opts: opts}
}

// Create 创建新会话并保存空状态
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := NewID()
	if err := m.store.Save(ctx, id, conversation.New()); err != nil {
		return "", pkgerrors.Wrap(err, "create session")
	}
	return id, nil
}

// Start 创建会话并执行问候轮
func (m *Manager) Start(ctx context.Context) (*TurnResult, error) {
	id, err := m.Create(ctx)
	if err != nil {
		return nil, err
	}
	return m.Greet(ctx, id)
}

// Greet 会话尚未问候时执行问候轮；已问候则返回空结果
func (m *Manager) Greet(ctx context.Context, id string) (*TurnResult, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	st, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := st.Len()
	out, err := m.ensureGreeting(ctx, id, st)
	if err != nil {
		return nil, err
	}
	return &TurnResult{SessionID: id, Messages: out.Since(before), State: out}, nil
}

// Send 追加用户输入并执行一轮；失败时会话回到轮前状态加上该条输入
func (m *Manager) Send(ctx context.Context, id, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "message is empty")
	}
	unlock := m.locks.Lock(id)
	defer unlock()

	st, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := st.Len()
	st, err = m.ensureGreeting(ctx, id, st)
	if err != nil {
		return nil, err
	}

	st.Append(conversation.Human{Content: text})
	out, err := m.run(ctx, id, st)
	if err != nil {
		if saveErr := m.store.Save(ctx, id, st); saveErr != nil {
			m.opts.Logger.Error("restore checkpoint failed", "session_id", id, "error", saveErr)
		}
		return nil, err
	}
	if err := m.store.Save(ctx, id, out); err != nil {
		return nil, pkgerrors.Wrap(err, "save checkpoint")
	}
	return &TurnResult{SessionID: id, Messages: out.Since(before), State: out}, nil
}

// Get 返回会话完整状态；未知会话返回 ErrNotFound
func (m *Manager) Get(ctx context.Context, id string) (*conversation.State, error) {
	return m.load(ctx, id)
}

func (m *Manager) load(ctx context.Context, id string) (*conversation.State, error) {
	st, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load session %s", id)
	}
	if st == nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "session %s", id)
	}
	return st, nil
}

func (m *Manager) ensureGreeting(ctx context.Context, id string, st *conversation.State) (*conversation.State, error) {
	if st.StarterDone {
		return st, nil
	}
	out, err := m.run(ctx, id, st)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, id, out); err != nil {
		return nil, pkgerrors.Wrap(err, "save checkpoint")
	}
	return out, nil
}

func (m *Manager) run(ctx context.Context, id string, st *conversation.State) (*conversation.State, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.TurnTimeout)
	defer cancel()
	ctx, span := tracing.StartTurnSpan(ctx, id)

	start := time.Now()
	out, err := m.runner.RunTurn(ctx, st)
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	tracing.End(span, err)
	if err != nil {
		metrics.TurnTotal.WithLabelValues("failed").Inc()
		m.opts.Logger.Error("turn failed", "session_id", id, "error", err)
		return nil, &TurnError{SessionID: id, Err: err}
	}
	metrics.TurnTotal.WithLabelValues("ok").Inc()
	m.opts.Logger.Info("turn done", "session_id", id, "messages", out.Len())
	return out, nil
}

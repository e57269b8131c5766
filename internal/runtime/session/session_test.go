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
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"week-planner/internal/checkpoint"
	"week-planner/internal/conversation"
	pkgerrors "week-planner/pkg/errors"
)

// echoRunner 问候后对每条用户输入回显一条助手消息
func echoRunner(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	out := st.Clone()
	if !out.StarterDone {
		out.Append(conversation.Assistant{Content: "Hi Jordan!"})
		out.StarterDone = true
		return out, nil
	}
	if h, ok := out.Last().(conversation.Human); ok {
		out.Append(
			conversation.Assistant{ToolCalls: []conversation.ToolCall{{ID: "c1", Name: "get_day_of_week", Arguments: "{}"}}},
			conversation.ToolResult{CallID: "c1", Name: "get_day_of_week", Content: "Today is Monday."},
			conversation.Assistant{Content: "echo: " + h.Content},
		)
	}
	return out, nil
}

func TestTurnResult_Replies(t *testing.T) {
	r := &TurnResult{Messages: []conversation.Message{
		conversation.Human{Content: "hi"},
		conversation.Assistant{ToolCalls: []conversation.ToolCall{{ID: "1"}}},
		conversation.ToolResult{Content: "x"},
		conversation.Assistant{Content: "done"},
	}}
	assert.Equal(t, []string{"done"}, r.Replies())
	assert.Nil(t, (*TurnResult)(nil).Replies())
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.True(t, strings.HasPrefix(a, IDPrefix))
	assert.NotEqual(t, a, b)
}

func TestManager_StartGreetsOnce(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemoryStore()
	m := NewManager(store, RunnerFunc(echoRunner), Options{})

	res, err := m.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi Jordan!"}, res.Replies())
	assert.True(t, res.State.StarterDone)

	again, err := m.Greet(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Empty(t, again.Messages)

	st, err := m.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
}

func TestManager_SendAppendsTurn(t *testing.T) {
	ctx := context.Background()
	m := NewManager(checkpoint.NewMemoryStore(), RunnerFunc(echoRunner), Options{})
	res, err := m.Start(ctx)
	require.NoError(t, err)

	turn, err := m.Send(ctx, res.SessionID, "plan my week")
	require.NoError(t, err)
	require.Len(t, turn.Messages, 4)
	assert.Equal(t, conversation.Human{Content: "plan my week"}, turn.Messages[0])
	assert.Equal(t, []string{"echo: plan my week"}, turn.Replies())

	st, err := m.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Len())
}

func TestManager_SendBeforeGreetingRunsGreetingFirst(t *testing.T) {
	ctx := context.Background()
	m := NewManager(checkpoint.NewMemoryStore(), RunnerFunc(echoRunner), Options{})
	id, err := m.Create(ctx)
	require.NoError(t, err)

	turn, err := m.Send(ctx, id, "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi Jordan!", "echo: hello"}, turn.Replies())
	assert.Equal(t, conversation.Assistant{Content: "Hi Jordan!"}, turn.State.Messages[0])
	assert.Equal(t, conversation.Human{Content: "hello"}, turn.State.Messages[1])
}

func TestManager_SendValidation(t *testing.T) {
	ctx := context.Background()
	m := NewManager(checkpoint.NewMemoryStore(), RunnerFunc(echoRunner), Options{})

	_, err := m.Send(ctx, "session-missing", "hi")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = m.Get(ctx, "session-missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	id, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Send(ctx, id, "   ")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArg)

	var turnErr *TurnError
	_, err = m.Send(ctx, "session-missing", "hi")
	assert.False(t, errors.As(err, &turnErr))
}

func TestManager_FailedTurnKeepsHumanMessage(t *testing.T) {
	ctx := context.Background()
	fail := true
	runner := RunnerFunc(func(ctx context.Context, st *conversation.State) (*conversation.State, error) {
		if st.StarterDone && fail {
			return nil, errors.New("model unavailable")
		}
		return echoRunner(ctx, st)
	})
	m := NewManager(checkpoint.NewMemoryStore(), runner, Options{})
	res, err := m.Start(ctx)
	require.NoError(t, err)

	_, err = m.Send(ctx, res.SessionID, "first")
	var turnErr *TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, res.SessionID, turnErr.SessionID)
	assert.EqualError(t, turnErr.Err, "model unavailable")

	st, err := m.Get(ctx, res.SessionID)
	require.NoError(t, err)
	require.Equal(t, 2, st.Len())
	assert.Equal(t, conversation.Human{Content: "first"}, st.Last())

	fail = false
	turn, err := m.Send(ctx, res.SessionID, "second")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo: second"}, turn.Replies())
}

func TestManager_TurnTimeout(t *testing.T) {
	ctx := context.Background()
	runner := RunnerFunc(func(ctx context.Context, st *conversation.State) (*conversation.State, error) {
		if !st.StarterDone {
			return echoRunner(ctx, st)
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	m := NewManager(checkpoint.NewMemoryStore(), runner, Options{TurnTimeout: 20 * time.Millisecond})
	res, err := m.Start(ctx)
	require.NoError(t, err)

	_, err = m.Send(ctx, res.SessionID, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_SerializesTurnsPerSession(t *testing.T) {
	ctx := context.Background()
	var active, maxActive int32
	runner := RunnerFunc(func(ctx context.Context, st *conversation.State) (*conversation.State, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			cur := atomic.LoadInt32(&maxActive)
			if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return echoRunner(ctx, st)
	})
	m := NewManager(checkpoint.NewMemoryStore(), runner, Options{})
	res, err := m.Start(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Send(ctx, res.SessionID, "ping")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
	st, err := m.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1+8*4, st.Len())
	assert.Equal(t, 0, m.locks.size())
}

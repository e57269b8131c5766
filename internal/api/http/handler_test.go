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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"week-planner/internal/checkpoint"
	"week-planner/internal/conversation"
	"week-planner/internal/runtime/session"
	"week-planner/internal/tool/builtin"
	"week-planner/internal/tool/registry"
	pkgerrors "week-planner/pkg/errors"
)

func greetAndEcho(ctx context.Context, st *conversation.State) (*conversation.State, error) {
	out := st.Clone()
	if !out.StarterDone {
		out.Append(conversation.Assistant{Content: "Hi Jordan! Today is Monday. Do you have any priorities for this week?"})
		out.StarterDone = true
		return out, nil
	}
	if h, ok := out.Last().(conversation.Human); ok {
		out.Append(conversation.Assistant{Content: "noted: " + h.Content})
	}
	return out, nil
}

func newTestHandler(runner session.RunnerFunc) *Handler {
	reg := registry.New()
	builtin.RegisterBuiltinWithTools(reg, builtin.NewSaveFocusItemsTool(), builtin.NewSuggestActionsTool())
	mgr := session.NewManager(checkpoint.NewMemoryStore(), runner, session.Options{})
	return NewHandler(mgr, reg)
}

func perform(s *server.Hertz, method, path string, body []byte) *ut.ResponseRecorder {
	return ut.PerformRequest(s.Engine, method, path, &ut.Body{Body: bytes.NewReader(body), Len: len(body)})
}

func TestHealthCheck(t *testing.T) {
	h := server.Default(server.WithHostPorts(":0"))
	handler := newTestHandler(greetAndEcho)
	h.GET("/api/health", func(ctx context.Context, c *app.RequestContext) {
		handler.HealthCheck(ctx, c)
	})
	w := ut.PerformRequest(h.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	resp := w.Result()
	if resp.StatusCode() != 200 {
		t.Errorf("HealthCheck status: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte("ok")) {
		t.Errorf("HealthCheck body: %s", resp.Body())
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := NewRouter(newTestHandler(greetAndEcho), nil).Build(":0")

	w := perform(s, "POST", "/api/sessions", nil)
	require.Equal(t, 201, w.Result().StatusCode())
	var created TurnResponse
	require.NoError(t, json.Unmarshal(w.Result().Body(), &created))
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, []string{"Hi Jordan! Today is Monday. Do you have any priorities for this week?"}, created.Replies)

	w = perform(s, "POST", "/api/sessions/"+created.SessionID+"/messages", []byte(`{"message":"gym and reading"}`))
	require.Equal(t, 200, w.Result().StatusCode())
	var turn TurnResponse
	require.NoError(t, json.Unmarshal(w.Result().Body(), &turn))
	assert.Equal(t, []string{"noted: gym and reading"}, turn.Replies)
	assert.Equal(t, 3, turn.Messages)

	w = perform(s, "GET", "/api/sessions/"+created.SessionID, nil)
	require.Equal(t, 200, w.Result().StatusCode())
	var got struct {
		SessionID string              `json:"session_id"`
		State     *conversation.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Result().Body(), &got))
	require.NotNil(t, got.State)
	assert.True(t, got.State.StarterDone)
	assert.Equal(t, conversation.Human{Content: "gym and reading"}, got.State.Messages[1])
}

func TestSendMessage_Errors(t *testing.T) {
	failing := func(ctx context.Context, st *conversation.State) (*conversation.State, error) {
		if st.StarterDone {
			return nil, errors.New("model unavailable")
		}
		return greetAndEcho(ctx, st)
	}
	s := NewRouter(newTestHandler(failing), nil).Build(":0")

	w := perform(s, "POST", "/api/sessions/session-unknown/messages", []byte(`{"message":"hi"}`))
	assert.Equal(t, 404, w.Result().StatusCode())

	w = perform(s, "POST", "/api/sessions", nil)
	require.Equal(t, 201, w.Result().StatusCode())
	var created TurnResponse
	require.NoError(t, json.Unmarshal(w.Result().Body(), &created))

	w = perform(s, "POST", "/api/sessions/"+created.SessionID+"/messages", []byte(`{"message":""}`))
	assert.Equal(t, 400, w.Result().StatusCode())

	w = perform(s, "POST", "/api/sessions/"+created.SessionID+"/messages", []byte(`not json`))
	assert.Equal(t, 400, w.Result().StatusCode())

	w = perform(s, "POST", "/api/sessions/"+created.SessionID+"/messages", []byte(`{"message":"hi"}`))
	assert.Equal(t, 502, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "model unavailable")

	w = perform(s, "GET", "/api/sessions/session-unknown", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
}

func TestSendMessage_TurnFailuresAreBadGateway(t *testing.T) {
	for _, cause := range []error{
		pkgerrors.Wrapf(pkgerrors.ErrNotFound, "mock record %s", "gcal.json"),
		pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "tool arguments"),
	} {
		cause := cause
		runner := func(ctx context.Context, st *conversation.State) (*conversation.State, error) {
			if st.StarterDone {
				return nil, cause
			}
			return greetAndEcho(ctx, st)
		}
		s := NewRouter(newTestHandler(runner), nil).Build(":0")

		w := perform(s, "POST", "/api/sessions", nil)
		require.Equal(t, 201, w.Result().StatusCode())
		var created TurnResponse
		require.NoError(t, json.Unmarshal(w.Result().Body(), &created))

		w = perform(s, "POST", "/api/sessions/"+created.SessionID+"/messages", []byte(`{"message":"hi"}`))
		assert.Equal(t, 502, w.Result().StatusCode(), cause.Error())
	}
}

func TestListToolsAndMetrics(t *testing.T) {
	s := NewRouter(newTestHandler(greetAndEcho), nil).Build(":0")

	w := perform(s, "GET", "/api/tools", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	var body struct {
		Tools []registry.ToolSchemaForLLM `json:"tools"`
		Total int                         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Result().Body(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, builtin.ToolSaveFocusItems, body.Tools[0].Name)

	perform(s, "POST", "/api/sessions", nil)
	w = perform(s, "GET", "/metrics", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "weekplan_turn_total")
}

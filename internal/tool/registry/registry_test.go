package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"week-planner/internal/tool"
	pkgerrors "week-planner/pkg/errors"
)

type echoTool struct {
	name string
	err  error
}

func (e echoTool) Name() string        { return e.name }
func (e echoTool) Description() string { return "echo " + e.name }
func (e echoTool) Schema() tool.Schema {
	return tool.Schema{Type: "object", Properties: map[string]tool.SchemaProperty{"text": {Type: "string"}}}
}
func (e echoTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	if e.err != nil {
		return tool.ToolResult{}, e.err
	}
	text, _ := input["text"].(string)
	if text == "" {
		return tool.ToolResult{Err: "text is required"}, nil
	}
	return tool.ToolResult{Content: text}, nil
}

func TestRegistry_KeepsRegistrationOrder(t *testing.T) {
	r := New()
	r.Register(echoTool{name: "b"})
	r.Register(echoTool{name: "a"})
	r.Register(echoTool{name: "c"})
	r.Register(echoTool{name: "a"})

	assert.Equal(t, []string{"b", "a", "c"}, r.Names())
	infos := r.ToolInfos()
	require.Len(t, infos, 3)
	assert.Equal(t, "b", infos[0].Name)

	raw, err := r.SchemasForLLM()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name":"c"`)
}

func TestRegistry_Invoke(t *testing.T) {
	r := New()
	r.Register(echoTool{name: "echo"})
	r.Register(echoTool{name: "broken", err: errors.New("disk on fire")})
	ctx := context.Background()

	res, err := r.Invoke(ctx, "echo", "call_1", `{"text":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Text())

	res, err = r.Invoke(ctx, "echo", "call_2", "")
	require.NoError(t, err)
	assert.Equal(t, "error: text is required", res.Text())

	_, err = r.Invoke(ctx, "missing", "call_3", "{}")
	assert.True(t, pkgerrors.IsNotFound(err))

	res, err = r.Invoke(ctx, "echo", "call_4", "{not json")
	require.NoError(t, err)
	assert.Contains(t, res.Text(), "error: invalid arguments: ")
	assert.Empty(t, res.Content)

	_, err = r.Invoke(ctx, "broken", "call_5", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestRegistry_InvokeInput(t *testing.T) {
	r := New()
	r.Register(echoTool{name: "echo"})
	res, err := r.InvokeInput(context.Background(), "echo", map[string]any{"text": "hey"})
	require.NoError(t, err)
	assert.Equal(t, "hey", res.Content)

	res, err = r.InvokeInput(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Err)
}

func TestDecodeArguments(t *testing.T) {
	m, err := DecodeArguments("  ")
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = DecodeArguments("null")
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = DecodeArguments(`["a"]`)
	assert.Error(t, err)
}

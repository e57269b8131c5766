package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weekplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calendar:
  reference_date: "2024-11-13"
  timezone: "America/New_York"
model:
  llm:
    providers:
      openai:
        api_key: "sk-abcdef"
        models:
          small:
            name: "gpt-4o-mini"
  defaults:
    llm: "openai.small"
`), 0644))
	return path
}

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "weekplan "+Version+"\n", runCmd(t, "version"))
}

func TestConfigCmd(t *testing.T) {
	out := runCmd(t, "config", "--config", writeConfig(t))
	assert.Contains(t, out, "calendar.reference_date=2024-11-13")
	assert.Contains(t, out, "model.api_key=sk-a****")
	assert.NotContains(t, out, "sk-abcdef")
}

func TestToolsCmd(t *testing.T) {
	out := runCmd(t, "tools", "--config", writeConfig(t))
	assert.Contains(t, out, "get_calendar_summary")
	assert.Contains(t, out, "params: week")

	out = runCmd(t, "tools", "--json", "--config", writeConfig(t))
	assert.Contains(t, out, `"name":"save_focus_items"`)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(unset)", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "secret://openai", mask("secret://openai"))
}

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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weekplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 9000
  host: "127.0.0.1"
log:
  level: "debug"
agent:
  max_steps: 10
  skip_tool_messages: false
calendar:
  reference_date: "2024-11-13"
  timezone: "America/New_York"
github:
  mode: "api"
  repo: "acme/planner"
  author: "jdoe"
checkpoint_store:
  type: "sqlite"
  path: "/tmp/weekplan.db"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Agent.MaxSteps)
	assert.False(t, cfg.Agent.SkipToolMessagesOrDefault())
	assert.Equal(t, "2024-11-13", cfg.Calendar.ReferenceDate)
	assert.Equal(t, "api", cfg.GitHub.Mode)
	assert.Equal(t, "acme/planner", cfg.GitHub.Repo)
	assert.Equal(t, "sqlite", cfg.CheckpointStore.Type)

	// 未写入文件的项回落到默认值
	assert.Equal(t, 15, cfg.GitHub.MaxResults)
	assert.Equal(t, "openai.gpt_4o_mini", cfg.Model.Defaults.LLM)
}

func TestLoadConfig_MissingDefaultPathUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.CheckpointStore.Type)
	assert.Equal(t, "mock", cfg.GitHub.Mode)
	assert.True(t, cfg.Agent.SkipToolMessagesOrDefault())
}

func TestLoadConfig_MissingExplicitPathFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	t.Setenv("WEEKPLAN_TEST_KEY", "sk-test")
	t.Setenv("WEEKPLAN_GH_TOKEN", "ghp-test")
	path := writeConfig(t, `
model:
  llm:
    providers:
      openai:
        api_key: "${WEEKPLAN_TEST_KEY}"
        models:
          small:
            name: "gpt-4o-mini"
  defaults:
    llm: "openai.small"
github:
  token: "${WEEKPLAN_GH_TOKEN}"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	provider, pc, mi, err := cfg.ResolveDefaultLLM()
	require.NoError(t, err)
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "sk-test", pc.APIKey)
	assert.Equal(t, "gpt-4o-mini", mi.Name)
	assert.Equal(t, "ghp-test", cfg.GitHub.Token)
}

func TestResolveDefaultLLM_Errors(t *testing.T) {
	cfg := Default()
	cfg.Model.Defaults.LLM = "bad-key"
	_, _, _, err := cfg.ResolveDefaultLLM()
	assert.Error(t, err)

	cfg.Model.Defaults.LLM = "anthropic.claude"
	_, _, _, err = cfg.ResolveDefaultLLM()
	assert.Error(t, err)

	cfg.Model.Defaults.LLM = "openai.missing"
	_, _, _, err = cfg.ResolveDefaultLLM()
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, ParseDuration("", 2*time.Minute))
	assert.Equal(t, 30*time.Second, ParseDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("garbage", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-5s", time.Minute))
}

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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "configs/weekplan.yaml"

// Config 应用配置结构体
type Config struct {
	API             APIConfig             `mapstructure:"api"`
	Agent           AgentConfig           `mapstructure:"agent"`
	Data            DataConfig            `mapstructure:"data"`
	Calendar        CalendarConfig        `mapstructure:"calendar"`
	GitHub          GitHubConfig          `mapstructure:"github"`
	CheckpointStore CheckpointStoreConfig `mapstructure:"checkpoint_store"`
	Model           ModelConfig           `mapstructure:"model"`
	Log             LogConfig             `mapstructure:"log"`
	Monitoring      MonitoringConfig      `mapstructure:"monitoring"`
	RateLimits      RateLimitsConfig      `mapstructure:"rate_limits"`
	Secrets         SecretsConfig         `mapstructure:"secrets"`
}

// APIConfig HTTP 服务配置
type APIConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// AgentConfig 对话控制器配置
type AgentConfig struct {
	MaxSteps         int     `mapstructure:"max_steps"`          // 单轮最大图步数，<=0 使用默认 24
	TurnTimeout      string  `mapstructure:"turn_timeout"`       // 单轮超时，如 "2m"
	SkipToolMessages *bool   `mapstructure:"skip_tool_messages"` // 构建模型上下文时跳过工具结果；未配置时默认 true
	Temperature      float64 `mapstructure:"temperature"`
}

// DataConfig 静态数据目录（为空时使用内置数据）
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// CalendarConfig 日历周窗口配置
type CalendarConfig struct {
	ReferenceDate string `mapstructure:"reference_date"` // 2006-01-02；为空时取当天
	Timezone      string `mapstructure:"timezone"`       // IANA 名称，为空为 UTC
}

// GitHubConfig 代码托管检索配置
type GitHubConfig struct {
	Mode       string `mapstructure:"mode"` // mock | api
	Repo       string `mapstructure:"repo"`
	Author     string `mapstructure:"author"`
	Token      string `mapstructure:"token"`
	BaseURL    string `mapstructure:"base_url"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    string `mapstructure:"timeout"`
}

// CheckpointStoreConfig 会话 Checkpoint 存储配置
type CheckpointStoreConfig struct {
	Type      string `mapstructure:"type"`       // memory | redis | postgres | sqlite
	DSN       string `mapstructure:"dsn"`        // Postgres 连接串，type=postgres 时必填
	Addr      string `mapstructure:"addr"`       // Redis 地址
	Password  string `mapstructure:"password"`   // Redis 密码，可选
	DB        int    `mapstructure:"db"`         // Redis DB 编号
	KeyPrefix string `mapstructure:"key_prefix"` // Redis key 前缀
	TTL       string `mapstructure:"ttl"`        // Redis 过期时间，空则不过期
	Path      string `mapstructure:"path"`       // SQLite 文件路径
}

// ModelConfig 模型配置
type ModelConfig struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// LLMConfig LLM 模型配置
type LLMConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig 模型提供商配置
type ProviderConfig struct {
	APIKey  string               `mapstructure:"api_key"`
	BaseURL string               `mapstructure:"base_url"`
	Models  map[string]ModelInfo `mapstructure:"models"`
}

// ModelInfo 模型信息
type ModelInfo struct {
	Name          string  `mapstructure:"name"`
	ContextWindow int     `mapstructure:"context_window"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
}

// DefaultsConfig 默认模型配置，格式 provider.model_key
type DefaultsConfig struct {
	LLM string `mapstructure:"llm"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// RateLimitsConfig 限流配置
type RateLimitsConfig struct {
	LLM map[string]LLMRateLimitConfig `mapstructure:"llm"`
}

// LLMRateLimitConfig 单个 LLM Provider 的限流配置
type LLMRateLimitConfig struct {
	TokensPerMinute   int     `mapstructure:"tokens_per_minute"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// SecretsConfig secret 来源配置；api_key / token 写成 secret://<key> 时经此解析
type SecretsConfig struct {
	Provider string      `mapstructure:"provider"` // env | vault
	Vault    VaultConfig `mapstructure:"vault"`
}

// VaultConfig Vault 连接配置
type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	PathPrefix string `mapstructure:"path_prefix"`
}

// Default 返回可离线运行的默认配置（memory checkpoint、mock GitHub、内置数据）
func Default() *Config {
	return &Config{
		API:   APIConfig{Host: "0.0.0.0", Port: 8080},
		Agent: AgentConfig{MaxSteps: 24, TurnTimeout: "2m", Temperature: 0.3},
		GitHub: GitHubConfig{
			Mode:       "mock",
			BaseURL:    "https://api.github.com",
			MaxResults: 15,
			Timeout:    "15s",
		},
		CheckpointStore: CheckpointStoreConfig{Type: "memory", KeyPrefix: "weekplan:checkpoint:"},
		Model: ModelConfig{
			LLM: LLMConfig{Providers: map[string]ProviderConfig{
				"openai": {
					APIKey: "${OPENAI_API_KEY}",
					Models: map[string]ModelInfo{
						"gpt_4o_mini": {Name: "gpt-4o-mini", Temperature: 0.3},
					},
				},
			}},
			Defaults: DefaultsConfig{LLM: "openai.gpt_4o_mini"},
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Secrets: SecretsConfig{Provider: "env"},
	}
}

// LoadConfig 加载配置文件；configPath 为空或文件不存在且为默认路径时返回 Default()
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvPrefix("WEEKPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath == "" {
		configPath = DefaultConfigPath
	}
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); !(os.IsNotExist(statErr) && configPath == DefaultConfigPath) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	replaceEnvVars(&config)
	return &config, nil
}

// setDefaults 将 Default() 注册为 viper 默认值，使文件缺项与环境变量覆盖都生效
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.host", d.API.Host)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("agent.max_steps", d.Agent.MaxSteps)
	v.SetDefault("agent.turn_timeout", d.Agent.TurnTimeout)
	v.SetDefault("agent.temperature", d.Agent.Temperature)
	v.SetDefault("data.dir", "")
	v.SetDefault("calendar.reference_date", "")
	v.SetDefault("calendar.timezone", "")
	v.SetDefault("github.mode", d.GitHub.Mode)
	v.SetDefault("github.base_url", d.GitHub.BaseURL)
	v.SetDefault("github.max_results", d.GitHub.MaxResults)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("github.repo", "")
	v.SetDefault("github.author", "")
	v.SetDefault("github.token", "")
	v.SetDefault("checkpoint_store.type", d.CheckpointStore.Type)
	v.SetDefault("checkpoint_store.key_prefix", d.CheckpointStore.KeyPrefix)
	v.SetDefault("model.llm.providers", map[string]any{
		"openai": map[string]any{
			"api_key": "${OPENAI_API_KEY}",
			"models": map[string]any{
				"gpt_4o_mini": map[string]any{"name": "gpt-4o-mini", "temperature": 0.3},
			},
		},
	})
	v.SetDefault("model.defaults.llm", d.Model.Defaults.LLM)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("secrets.provider", d.Secrets.Provider)
}

// replaceEnvVars 替换配置中 ${ENV} 形式的值
func replaceEnvVars(config *Config) {
	for provider, providerConfig := range config.Model.LLM.Providers {
		providerConfig.APIKey = expandEnv(providerConfig.APIKey)
		config.Model.LLM.Providers[provider] = providerConfig
	}
	config.GitHub.Token = expandEnv(config.GitHub.Token)
	config.CheckpointStore.DSN = expandEnv(config.CheckpointStore.DSN)
	config.CheckpointStore.Password = expandEnv(config.CheckpointStore.Password)
	config.Secrets.Vault.Token = expandEnv(config.Secrets.Vault.Token)
}

func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return s
	}
	envVar := strings.TrimSuffix(strings.TrimPrefix(s, "${"), "}")
	return os.Getenv(envVar)
}

// ParseDuration 解析配置中的时长字符串，空或非法时返回 def
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// SkipToolMessagesOrDefault 返回上下文策略，未配置时默认 true
func (a AgentConfig) SkipToolMessagesOrDefault() bool {
	if a.SkipToolMessages == nil {
		return true
	}
	return *a.SkipToolMessages
}

// ResolveDefaultLLM 按 model.defaults.llm（provider.model_key）解析出 provider 配置与模型信息
func (c *Config) ResolveDefaultLLM() (string, ProviderConfig, ModelInfo, error) {
	key := c.Model.Defaults.LLM
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ProviderConfig{}, ModelInfo{}, fmt.Errorf("default key 格式应为 provider.model_key，如 openai.gpt_4o_mini，当前: %q", key)
	}
	pc, ok := c.Model.LLM.Providers[parts[0]]
	if !ok {
		return "", ProviderConfig{}, ModelInfo{}, fmt.Errorf("LLM provider %q not configured", parts[0])
	}
	mi, ok := pc.Models[parts[1]]
	if !ok {
		return "", ProviderConfig{}, ModelInfo{}, fmt.Errorf("LLM model %q not configured in provider %q", parts[1], parts[0])
	}
	return parts[0], pc, mi, nil
}

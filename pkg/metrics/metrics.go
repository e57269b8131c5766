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

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 CLI/API 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		TurnTotal, TurnDuration, StepTotal,
		ToolDuration, ToolErrorTotal,
		LLMRequestTotal, RateLimitWaitSeconds,
	)
}

// TurnTotal 对话轮次总数（按结果）
var TurnTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "weekplan_turn_total",
		Help: "对话轮次总数（按结果）",
	},
	[]string{"status"}, // ok | failed
)

// TurnDuration 单轮耗时（秒）
var TurnDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "weekplan_turn_duration_seconds",
		Help:    "单轮耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
)

// StepTotal 图节点执行次数
var StepTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "weekplan_step_total",
		Help: "图节点执行次数",
	},
	[]string{"step"}, // greeting | model_call | tool_dispatch
)

// ToolDuration 工具调用耗时（秒）
var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "weekplan_tool_duration_seconds",
		Help:    "工具调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// ToolErrorTotal 工具返回可恢复错误或执行失败的次数
var ToolErrorTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "weekplan_tool_errors_total",
		Help: "工具错误次数",
	},
	[]string{"tool", "kind"}, // kind: result | failure
)

// LLMRequestTotal 模型调用次数
var LLMRequestTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "weekplan_llm_requests_total",
		Help: "模型调用次数",
	},
	[]string{"status"}, // ok | failed
)

// RateLimitWaitSeconds 限流等待耗时
var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "weekplan_rate_limit_wait_seconds",
		Help:    "限流等待耗时（秒）",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"kind", "provider"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

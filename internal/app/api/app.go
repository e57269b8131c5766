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

package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"week-planner/internal/api/http"
	"week-planner/internal/api/http/middleware"
	"week-planner/internal/app"
	"week-planner/pkg/log"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配 HTTP Router、Handler、Middleware）
type App struct {
	bootstrap    *app.Bootstrap
	router       *http.Router
	hertz        *server.Hertz
	logOutput    io.Closer
	otelProvider otelProviderShutdown
}

// NewApp 创建 API 应用（由 weekplan serve 调用）
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	if bootstrap == nil || bootstrap.Sessions == nil {
		return nil, fmt.Errorf("api: bootstrap without session manager")
	}
	handler := http.NewHandler(bootstrap.Sessions, bootstrap.Tools)
	router := http.NewRouter(handler, middleware.NewMiddleware(bootstrap.Logger))
	return &App{bootstrap: bootstrap, router: router}, nil
}

// Addr 由 api.host / api.port 得到监听地址
func Addr(host string, port int) string {
	if port <= 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Build 配置 hertz 日志与可选的链路追踪，创建服务实例
func (a *App) Build(addr string) (*server.Hertz, error) {
	cfg := a.bootstrap.Config

	// 使用 Hertz slog 扩展，与 bootstrap 配置对齐
	var output io.Writer = os.Stdout
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		output = f
		a.logOutput = f
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(log.ParseLevel(cfg.Log.Level))
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	))

	// 可选：启用链路追踪（OpenTelemetry）
	tracingCfg := cfg.Monitoring.Tracing
	exportEndpoint := tracingCfg.ExportEndpoint
	if exportEndpoint == "" {
		exportEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if !tracingCfg.Enable || exportEndpoint == "" {
		a.hertz = a.router.Build(addr)
		return a.hertz, nil
	}

	serviceName := tracingCfg.ServiceName
	if serviceName == "" {
		serviceName = "weekplan-api"
	}
	opts := []provider.Option{
		provider.WithServiceName(serviceName),
		provider.WithExportEndpoint(exportEndpoint),
	}
	if tracingCfg.Insecure {
		opts = append(opts, provider.WithInsecure())
	}
	a.otelProvider = provider.NewOpenTelemetryProvider(opts...)
	tracerOpt, tcfg := hertztracing.NewServerTracer()
	a.hertz = a.router.Build(addr, tracerOpt)
	a.hertz.Use(hertztracing.ServerMiddleware(tcfg))
	a.bootstrap.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint)
	return a.hertz, nil
}

// Run 启动 HTTP 服务，addr 如 ":8080"；阻塞直到服务关闭
func (a *App) Run(addr string) error {
	if a.hertz == nil {
		if _, err := a.Build(addr); err != nil {
			return err
		}
	}
	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)
	return a.hertz.Run()
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.logOutput != nil {
		_ = a.logOutput.Close()
	}
	return a.bootstrap.Close()
}

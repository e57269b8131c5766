package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"week-planner/internal/app"
	"week-planner/internal/app/cli"
	"week-planner/pkg/config"
	"week-planner/pkg/tracing"
)

func newChatCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "交互式对话（quit / exit / q 退出）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "不渲染 markdown")
	return cmd
}

func runChat(cmd *cobra.Command, plain bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := initTracing(ctx, cfg)
	defer shutdown()

	b, err := app.NewBootstrap(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer b.Close()

	loop := cli.New(b.Sessions, cli.Options{
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		Plain:  plain,
		Logger: b.Logger,
	})
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// initTracing monitoring.tracing.enable 时注册全局 TracerProvider，返回关闭函数
func initTracing(ctx context.Context, cfg *config.Config) func() {
	tc := cfg.Monitoring.Tracing
	endpoint := tc.ExportEndpoint
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if !tc.Enable || endpoint == "" {
		return func() {}
	}
	tp, err := tracing.InitTracer(tracing.OTelConfig{
		ServiceName:    tc.ServiceName,
		ExportEndpoint: endpoint,
		Insecure:       tc.Insecure,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化链路追踪失败: %v\n", err)
		return func() {}
	}
	return func() { _ = tp.Shutdown(context.Background()) }
}

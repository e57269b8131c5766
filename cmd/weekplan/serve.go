package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"week-planner/internal/app"
	"week-planner/internal/app/api"
	"week-planner/pkg/config"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP API 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			if port > 0 {
				cfg.API.Port = port
			}
			b, err := app.NewBootstrap(context.Background(), cfg, app.Options{})
			if err != nil {
				return err
			}
			application, err := api.NewApp(b)
			if err != nil {
				_ = b.Close()
				return fmt.Errorf("创建 API 应用失败: %w", err)
			}
			addr := api.Addr(cfg.API.Host, cfg.API.Port)

			errCh := make(chan error, 1)
			go func() {
				if err := application.Run(addr); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigChan:
			case err := <-errCh:
				b.Logger.Error("API 服务异常退出", "error", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := application.Shutdown(ctx); err != nil {
				return fmt.Errorf("关闭失败: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "API 服务已关闭")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口（覆盖 api.port）")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/spf13/cobra"

	"week-planner/internal/app"
	"week-planner/internal/runtime/graph"
	"week-planner/pkg/config"
)

// devops 启动 Eino Dev 调试服务并编译 weekplan_turn 图，供 IDE 插件（Eino Dev）连接后进行可视化调试。
// IDE 中配置连接地址 127.0.0.1:52538 后选择 weekplan_turn 进行 Test Run。
func newDevopsCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "devops",
		Short:  "启动 Eino Dev 调试服务并注册对话图",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			// 必须在任何 Compile 之前调用
			if err := devops.Init(ctx); err != nil {
				return fmt.Errorf("[eino dev] init failed: %w", err)
			}
			b, err := app.NewBootstrap(ctx, cfg, app.Options{})
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.ErrOrStderr()
			fmt.Fprintf(out, "[eino dev] graph %s registered; server listening on 127.0.0.1:52538\n", graph.GraphName)
			fmt.Fprintln(out, "[eino dev] press Ctrl+C to exit")

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			<-sigs
			fmt.Fprintln(out, "[eino dev] shutting down")
			return nil
		},
	}
}

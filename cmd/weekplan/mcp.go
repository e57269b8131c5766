package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"week-planner/internal/app"
	"week-planner/internal/mcpserver"
	"week-planner/pkg/config"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "通过 stdio 以 MCP 协议提供工具目录",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			// stdout 属于协议流，日志写 stderr
			cfg.Log.File = ""
			b, err := app.NewBootstrap(context.Background(), cfg, app.Options{ToolsOnly: true})
			if err != nil {
				return err
			}
			defer b.Close()
			return mcpserver.ServeStdio(b.Tools, Version)
		},
	}
}

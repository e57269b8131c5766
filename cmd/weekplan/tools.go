package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"week-planner/internal/app"
	"week-planner/pkg/config"
	"week-planner/pkg/log"
)

func newToolsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "列出工具目录",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			b, err := app.NewBootstrap(context.Background(), cfg, app.Options{ToolsOnly: true, Logger: log.Discard()})
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				raw, err := b.Tools.SchemasForLLM()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(raw))
				return nil
			}
			for _, s := range b.Tools.Schemas() {
				params := make([]string, 0, len(s.Parameters.Properties))
				for name := range s.Parameters.Properties {
					params = append(params, name)
				}
				fmt.Fprintf(out, "%-34s %s\n", s.Name, s.Description)
				if len(params) > 0 {
					fmt.Fprintf(out, "%-34s params: %s\n", "", strings.Join(sortedStrings(params), ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

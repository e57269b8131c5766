package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"week-planner/pkg/config"
	"week-planner/pkg/secrets"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "显示配置概要",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api.addr=%s:%d\n", cfg.API.Host, cfg.API.Port)
			fmt.Fprintf(out, "model.defaults.llm=%s\n", cfg.Model.Defaults.LLM)
			if _, pc, _, err := cfg.ResolveDefaultLLM(); err == nil {
				fmt.Fprintf(out, "model.api_key=%s\n", mask(pc.APIKey))
			}
			fmt.Fprintf(out, "agent.max_steps=%d\n", cfg.Agent.MaxSteps)
			fmt.Fprintf(out, "agent.turn_timeout=%s\n", cfg.Agent.TurnTimeout)
			fmt.Fprintf(out, "agent.skip_tool_messages=%t\n", cfg.Agent.SkipToolMessagesOrDefault())
			fmt.Fprintf(out, "calendar.reference_date=%s\n", cfg.Calendar.ReferenceDate)
			fmt.Fprintf(out, "calendar.timezone=%s\n", cfg.Calendar.Timezone)
			fmt.Fprintf(out, "github.mode=%s\n", cfg.GitHub.Mode)
			fmt.Fprintf(out, "checkpoint_store.type=%s\n", cfg.CheckpointStore.Type)
			fmt.Fprintf(out, "secrets.provider=%s\n", cfg.Secrets.Provider)
			if len(cfg.RateLimits.LLM) > 0 {
				providers := make([]string, 0, len(cfg.RateLimits.LLM))
				for p := range cfg.RateLimits.LLM {
					providers = append(providers, p)
				}
				fmt.Fprintf(out, "rate_limits.llm=%s\n", strings.Join(sortedStrings(providers), ","))
			}
			return nil
		},
	}
}

// mask 只显示引用或前 4 位
func mask(v string) string {
	switch {
	case v == "":
		return "(unset)"
	case strings.HasPrefix(v, secrets.RefPrefix):
		return v
	case len(v) <= 4:
		return "****"
	}
	return v[:4] + "****"
}

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}

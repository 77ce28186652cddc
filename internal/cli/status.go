package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show arena status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("arena %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			// Load config
			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			// LLM providers
			registry := llm.NewRegistryFromConfig(cfg.LLM, log)
			providers := registry.List()
			if len(providers) > 0 {
				fmt.Printf("LLM:     %s (model=%s)\n", strings.Join(providers, ", "), cfg.LLM.Model)
			} else {
				fmt.Println("LLM:     (none detected)")
			}

			// Debate settings
			fmt.Printf("Debate:  followups=%v delay=%ds personas=%d\n",
				cfg.Debate.Followups, cfg.Debate.StepDelaySeconds, len(cfg.Debate.Personas))

			// Gateway config
			if cfg.Gateway.Enabled {
				fmt.Printf("Gateway: port=%d bind=%s\n", cfg.Gateway.Port, cfg.Gateway.Bind)
			} else {
				fmt.Println("Gateway: disabled")
			}

			// Retention
			if cfg.Retention.Days > 0 {
				fmt.Printf("Purge:   after %d days (schedule %q)\n", cfg.Retention.Days, cfg.Retention.Schedule)
			} else {
				fmt.Println("Purge:   disabled")
			}

			// Store health
			lc, _, err := openLifecycle()
			if err != nil {
				fmt.Printf("Store:   error: %v\n", err)
			} else {
				defer lc.Close()
				h := lc.Store().Health()
				fmt.Printf("Store:   status=%s sessions=%d statements=%d size=%dB\n",
					h.Status, h.TotalSessions, h.TotalStatements, h.StorageSizeBytes)
			}

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <session-id>",
		Short: "Show statistics for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, _, err := openLifecycle()
			if err != nil {
				return err
			}
			defer lc.Close()

			stats := lc.Store().Statistics(args[0])
			if stats == nil {
				return fmt.Errorf("session %q not found", args[0])
			}

			fmt.Printf("Topic:      %s\n", stats.Topic)
			fmt.Printf("Status:     %s\n", stats.Status)
			fmt.Printf("Statements: %d\n", stats.TotalStatements)
			if stats.DurationMinutes > 0 {
				fmt.Printf("Duration:   %.1f minutes\n", stats.DurationMinutes)
			}

			if len(stats.StatementTypes) > 0 {
				fmt.Println("\nBy type:")
				for typ, n := range stats.StatementTypes {
					fmt.Printf("  %-15s %d\n", typ, n)
				}
			}
			if len(stats.AgentActivity) > 0 {
				fmt.Println("\nBy participant:")
				for agent, n := range stats.AgentActivity {
					fmt.Printf("  %-20s %d\n", agent, n)
				}
			}
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPurgeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete completed sessions older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, cfg, err := openLifecycle()
			if err != nil {
				return err
			}
			defer lc.Close()

			if days <= 0 {
				days = cfg.Retention.Days
			}
			if days <= 0 {
				return fmt.Errorf("retention is disabled; pass --days to purge anyway")
			}

			removed := lc.Store().PurgeOlderThan(days)
			fmt.Printf("Removed %d session(s) older than %d days.\n", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "retention window in days (default from config)")

	return cmd
}

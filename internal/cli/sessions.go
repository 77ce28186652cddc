package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	var (
		limit  int
		status string
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent debate sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, _, err := openLifecycle()
			if err != nil {
				return err
			}
			defer lc.Close()

			sessions := lc.Store().RecentSessions(limit, status)
			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			fmt.Printf("%-36s  %-10s  %-19s  %s\n", "ID", "STATUS", "CREATED", "TOPIC")
			for _, s := range sessions {
				topic := s.Topic
				if len(topic) > 50 {
					topic = topic[:47] + "..."
				}
				fmt.Printf("%-36s  %-10s  %-19s  %s (%s)\n",
					s.ID, s.Status, s.CreatedAt.Format(time.DateTime),
					topic, strings.Join(s.Participants, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum sessions to list")
	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (active, completed)")

	return cmd
}

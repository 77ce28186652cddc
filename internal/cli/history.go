package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/arena/internal/domain"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Print a session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, _, err := openLifecycle()
			if err != nil {
				return err
			}
			defer lc.Close()

			sess := lc.Store().GetSession(args[0])
			if sess == nil {
				return fmt.Errorf("session %q not found", args[0])
			}

			fmt.Printf("Topic: %s\nStatus: %s\n\n", sess.Topic, sess.Status)

			statements := lc.Store().History(args[0], limit)
			for _, entry := range domain.Transcript(statements) {
				if entry.Text == "" {
					continue
				}
				fmt.Printf("[%s] %s (%s):\n%s\n\n",
					entry.Timestamp.Format(time.TimeOnly), entry.Agent, entry.Type, entry.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum statements to print (0 = all)")

	return cmd
}

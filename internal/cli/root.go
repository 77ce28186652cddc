// Package cli implements the arena command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/debate"
	"github.com/soyeahso/arena/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arena",
		Short: "arena — multi-agent AI debate orchestrator",
		Long:  "Arena runs structured debates between AI personas through fixed phases and records every statement in a durable transcript.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.arena/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newPurgeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// openLifecycle loads config and opens the store; callers own Close.
func openLifecycle() (*debate.Lifecycle, config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, cfg, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, cfg, err
	}
	lc, err := debate.Open(cfg, paths, log)
	if err != nil {
		return nil, cfg, err
	}
	return lc, cfg, nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/EGRM23/fisica-computacional-2024/internal/logging"
)

type rootOptions struct {
	logLevel string
	logger   *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "gsa",
		Short: "Generalized simulated annealing over a box",
		Long: `gsa minimizes registered objective functions with generalized simulated
annealing, optionally restarting from random points and polishing the
result with Nelder-Mead.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logging.NewText(logging.ParseLevel(opts.logLevel), cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newObjectivesCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

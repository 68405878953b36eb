package cli

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string
)

// NewRootCmd creates the root command for lwosd.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lwosd",
		Short: "Cooperative task scheduler and software timer daemon",
		Long: "lwosd runs a fixed set of cooperative tasks in round-robin cycles and\n" +
			"drives software countdown timers whose expiry can suspend, resume or\n" +
			"remove tasks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(),
		newDemoCmd(),
		newValidateCmd(),
	)
	return root
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "./lwosd.yaml", "path to config file (json or yaml)")
}

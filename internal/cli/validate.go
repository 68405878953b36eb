package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lwos/internal/config"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config file without starting anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewManager(flagConfig).Load()
			if err != nil {
				return fmt.Errorf("%s: %w", flagConfig, err)
			}
			k, err := config.ResolveKernel(cfg.Kernel)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", flagConfig)
			fmt.Fprintf(out, "  tasks:  %d/%d\n", len(cfg.Tasks), k.TaskCapacity)
			fmt.Fprintf(out, "  timers: %d/%d\n", len(cfg.Timers), k.TimerCapacity)
			fmt.Fprintf(out, "  rules:  %d\n", len(cfg.Rules))
			fmt.Fprintf(out, "  tick:   %s, cycle: %s\n", k.TickInterval, k.CycleInterval)
			fmt.Fprintf(out, "  report: %s\n", cfg.ReportSchedule())
			return nil
		},
	}
	addConfigFlag(cmd)
	return cmd
}

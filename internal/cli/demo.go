package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lwos/pkg/scheduler"
	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

const demoTasks = 16

type printExecutor struct {
	w   io.Writer
	msg string
}

func (p printExecutor) Execute(task.TaskID) { fmt.Fprintln(p.w, p.msg) }

func newDemoCmd() *cobra.Command {
	var withTimer bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run two scheduler cycles, suspending one task in between",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := runDemo(out); err != nil {
				return err
			}
			if withTimer {
				return runTimerDemo(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withTimer, "timer", false, "also count an auto-restart timer down twice")
	return cmd
}

// runDemo prints "Hello scheduler world!" on the first cycle and
// "Hello world!" on the second.
func runDemo(out io.Writer) error {
	sched, err := scheduler.New(demoTasks)
	if err != nil {
		return err
	}
	var ids []task.TaskID
	for _, msg := range []string{"Hello", "scheduler", "world!"} {
		id, err := sched.Add(printExecutor{w: out, msg: msg}, task.Running)
		if err != nil {
			return fmt.Errorf("add %q: %w", msg, err)
		}
		ids = append(ids, id)
	}

	sched.Process()

	t, err := sched.Get(ids[1])
	if err != nil {
		return err
	}
	t.Suspend()

	sched.Process()
	return nil
}

func runTimerDemo(out io.Writer) error {
	reg := softtimer.NewDefaultRegistry()
	h, err := reg.Create()
	if err != nil {
		return err
	}
	if err := reg.Start(h, 3, true); err != nil {
		return err
	}
	for tick := 1; tick <= 6; tick++ {
		reg.Update()
		st, err := reg.SignalState(h)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "tick %d: %s\n", tick, st)
	}
	return nil
}

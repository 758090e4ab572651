package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/shiftlog/internal/attendance"
	"github.com/alexanderramin/shiftlog/internal/cli/formatter"
	"github.com/spf13/cobra"
)

type phaseFunc func(ctx context.Context, userID string) (attendance.Snapshot, error)

// newPhaseCmd builds a "<use> start|end" command pair around two service calls.
func newPhaseCmd(app *App, use, short string, start, end phaseFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.AddCommand(
		phaseActionCmd(app, "start", "Start "+use, use+" started", start),
		phaseActionCmd(app, "end", "End "+use, use+" ended", end),
	)

	return cmd
}

func phaseActionCmd(app *App, use, short, done string, fn phaseFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID()
			if err != nil {
				return err
			}
			snap, err := fn(commandContext(cmd), userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTransition(done, snap))
			return nil
		},
	}
}

func newWorkCmd(app *App) *cobra.Command {
	return newPhaseCmd(app, "work", "Clock in and out",
		app.Attendance.StartWork,
		app.Attendance.EndWork,
	)
}

func newBreakCmd(app *App) *cobra.Command {
	return newPhaseCmd(app, "break", "Start or end the lunch break",
		app.Attendance.StartBreak,
		app.Attendance.EndBreak,
	)
}

func newShortBreakCmd(app *App) *cobra.Command {
	return newPhaseCmd(app, "short-break", "Start or end a short break",
		app.Attendance.StartShortBreak,
		app.Attendance.EndShortBreak,
	)
}

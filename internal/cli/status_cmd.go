package cli

import (
	"fmt"

	"github.com/alexanderramin/shiftlog/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the worker's current state and break budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID()
			if err != nil {
				return err
			}
			snap, err := app.Attendance.Status(commandContext(cmd), userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(snap))
			return nil
		},
	}
}

func newTimelineCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the day's work, break and travel events in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID()
			if err != nil {
				return err
			}
			day, err := app.dayFlag(date)
			if err != nil {
				return err
			}
			events, err := app.Reports.Timeline(commandContext(cmd), userID, day)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimeline(day, app.now(), events))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default today)")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/alexanderramin/shiftlog/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily and monthly attendance reports",
	}

	cmd.AddCommand(
		newReportDayCmd(app),
		newReportMonthCmd(app),
	)

	return cmd
}

func newReportDayCmd(app *App) *cobra.Command {
	var date, output string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Totals for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "yaml" {
				return fmt.Errorf("invalid output %q (want table or yaml)", output)
			}
			userID, err := app.userID()
			if err != nil {
				return err
			}
			day, err := app.dayFlag(date)
			if err != nil {
				return err
			}
			r, err := app.Reports.DailyReport(commandContext(cmd), userID, day)
			if err != nil {
				return err
			}

			if output == "yaml" {
				data, err := formatter.DailyReportYAML(r)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDailyReport(r))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to report (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")

	return cmd
}

func newReportMonthCmd(app *App) *cobra.Command {
	var month string
	var rate float64

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Hours per day and earnings for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID()
			if err != nil {
				return err
			}
			first, err := app.monthFlag(month)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rate") {
				rate = app.HourlyRate
			}
			if rate < 0 {
				return fmt.Errorf("hourly rate must not be negative")
			}
			stats, err := app.Reports.MonthlyStats(commandContext(cmd), userID, first, rate)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMonthlyStats(stats))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to report (YYYY-MM, default current)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Hourly rate (default from config)")

	return cmd
}

func newDaysCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "days",
		Short: "Calendar of days with recorded work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID()
			if err != nil {
				return err
			}
			first, err := app.monthFlag(month)
			if err != nil {
				return err
			}
			days, err := app.Reports.WorkDays(commandContext(cmd), userID, first)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCalendar(first, days))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM, default current)")

	return cmd
}

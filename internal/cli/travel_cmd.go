package cli

import (
	"fmt"

	"github.com/alexanderramin/shiftlog/internal/cli/formatter"
	"github.com/alexanderramin/shiftlog/internal/geo"
	"github.com/alexanderramin/shiftlog/internal/service"
	"github.com/spf13/cobra"
)

func newTravelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "travel",
		Short: "Record trips between sites",
	}

	cmd.AddCommand(
		newTravelActionCmd(app, "start"),
		newTravelActionCmd(app, "end"),
	)

	return cmd
}

func newTravelActionCmd(app *App, use string) *cobra.Command {
	var req service.TravelRequest
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   use,
		Short: use + " a travel at the current position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			userID, err := app.userID()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
					return fmt.Errorf("--lat and --lng must be given together")
				}
				if err := app.Attendance.RecordPosition(ctx, userID, geo.Point{Lat: lat, Lng: lng}); err != nil {
					return err
				}
			}

			if use == "start" && req.Destination == "" && app.interactive() {
				if err := travelForm(&req).Run(); err != nil {
					return err
				}
			}

			call := app.Attendance.StartTravel
			done := "travel started"
			if use == "end" {
				call = app.Attendance.EndTravel
				done = "travel ended"
			}
			snap, err := call(ctx, userID, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTransition(done, snap))
			if s := snap.CurrentSession; use == "end" && s != nil && s.StartTime.Equal(snap.At) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Work session started on arrival."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Destination, "destination", "", "Where the trip goes")
	cmd.Flags().StringVar(&req.Purpose, "purpose", "", "Why the trip is made")
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "Project the trip is billed to")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Current latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Current longitude")

	return cmd
}

func newPositionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "position <lat> <lng>",
		Short: "Report the worker's current position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := app.userID()
			if err != nil {
				return err
			}
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			if err := app.Attendance.RecordPosition(commandContext(cmd), userID, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Position recorded: %s\n", geo.FormatCoordinates(p))
			return nil
		},
	}
}

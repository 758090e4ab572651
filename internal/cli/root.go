package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/shiftlog/internal/countdown"
	"github.com/alexanderramin/shiftlog/internal/service"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// TickSource streams countdown ticks for one worker.
type TickSource interface {
	Subscribe(userID string) (<-chan countdown.Tick, func())
}

// App holds references to the services and settings used by CLI commands.
type App struct {
	Attendance service.AttendanceService
	Reports    service.ReportService
	Ticks      TickSource

	User       string
	HourlyRate float64
	Location   *time.Location
	Clock      clockwork.Clock

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	clock := a.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return clock.Now().In(a.location())
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func (a *App) userID() (string, error) {
	if a.User == "" {
		return "", fmt.Errorf("no worker selected: pass --user or set SHIFTLOG_USER")
	}
	return a.User, nil
}

// NewRootCmd creates the top-level "shiftlog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "shiftlog",
		Short:         "Field-worker attendance: work, breaks and travel",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Runs after flags are parsed so --user picks the worker whose
		// countdown gets re-armed.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.User == "" {
				return nil
			}
			return app.Attendance.Restore(commandContext(cmd), app.User)
		},
	}
	root.PersistentFlags().StringVarP(&app.User, "user", "u", app.User, "Worker ID")

	root.AddCommand(
		newWorkCmd(app),
		newBreakCmd(app),
		newShortBreakCmd(app),
		newTravelCmd(app),
		newPositionCmd(app),
		newStatusCmd(app),
		newTimelineCmd(app),
		newReportCmd(app),
		newDaysCmd(app),
		newWatchCmd(app),
	)

	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

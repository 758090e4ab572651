package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/shiftlog/internal/attendance"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/alexanderramin/shiftlog/internal/geo"
)

const countdownBarWidth = 20

// FormatStatus renders a worker snapshot as a dashboard box.
func FormatStatus(snap attendance.Snapshot) string {
	var b strings.Builder

	b.WriteString(StatusIndicator(snap.Status) + "\n\n")

	rows := [][]string{}
	if s := snap.CurrentSession; s != nil {
		rows = append(rows,
			[]string{"Started", s.StartTime.In(snap.At.Location()).Format("15:04")},
			[]string{"Worked", FormatClock(snap.WorkDuration)},
		)
	}
	if t := snap.CurrentTravel; t != nil {
		rows = append(rows, []string{"Travelling", FormatClock(snap.TravelDuration)})
		if t.Destination != "" {
			rows = append(rows, []string{"Destination", t.Destination})
		}
		rows = append(rows, []string{"From", CoalesceAddress(t.StartLocation)})
	}
	rows = append(rows,
		[]string{"Break budget", FormatSeconds(snap.TotalBreakTimeLeft) + Dim(" of "+FormatSeconds(domain.TotalBreakAllowance))},
	)
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-14s %s\n", Dim(r[0]), r[1]))
	}

	if kind, left, ok := snap.ActiveBreak(); ok {
		b.WriteString("\n")
		b.WriteString(Bold(BreakTitle(kind)) + "  " + RenderCountdown(left, kind.Length(), countdownBarWidth) + "\n")
	}

	if snap.CurrentSession == nil && snap.CurrentTravel == nil {
		b.WriteString("\n" + Dim("No open session. Use `shiftlog work start` to clock in.") + "\n")
	}

	return RenderBox("Status · "+snap.UserID, b.String())
}

// FormatTransition is the one-line confirmation printed after an action.
func FormatTransition(action string, snap attendance.Snapshot) string {
	return fmt.Sprintf("%s %s  %s\n", StyleGreen.Render("✔"), Bold(action), StatusIndicator(snap.Status))
}

// CoalesceAddress returns the resolved address or formatted coordinates.
func CoalesceAddress(l domain.Location) string {
	if l.Address != "" {
		return l.Address
	}
	return geo.FormatCoordinates(geo.Point{Lat: l.Lat, Lng: l.Lng})
}

// BreakTitle names a break kind for display.
func BreakTitle(kind domain.BreakKind) string {
	if kind == domain.BreakShort {
		return "Short break"
	}
	return "Lunch break"
}

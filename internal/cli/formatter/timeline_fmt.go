package formatter

import (
	"strings"
	"time"

	"github.com/alexanderramin/shiftlog/internal/domain"
)

// FormatTimeline renders a day's events in start order. Open events end "now".
func FormatTimeline(date, now time.Time, events []domain.TimelineEvent) string {
	title := "Timeline · " + HumanDate(date, now)
	if len(events) == 0 {
		return RenderBox(title, Dim("Nothing recorded for this day."))
	}

	loc := date.Location()
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		start := ev.StartTime.In(loc)
		end := "now"
		if ev.EndTime != nil && !ev.Active {
			end = ev.EndTime.In(loc).Format("15:04")
		}
		label := EventLabel(ev.Kind)
		if ev.Active {
			label += Dim(" (active)")
		}
		rows = append(rows, []string{
			EventColor(ev.Kind).Render("▌") + " " + label,
			start.Format("15:04"),
			end,
			FormatSeconds(ev.Duration),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"EVENT", "FROM", "TO", "DURATION"}, rows, 3))
	return RenderBox(title, b.String())
}

package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/shiftlog/internal/report"
	"gopkg.in/yaml.v3"
)

// FormatDailyReport renders the totals of one day.
func FormatDailyReport(r *report.DailyReport) string {
	end := ClockTime(r.LastEndTime)
	if r.StillOpen {
		end = StyleGreen.Render("still open")
	}

	rows := [][]string{
		{"Work", FormatSeconds(r.TotalWorkTime)},
		{"Breaks", FormatSeconds(r.TotalBreakTime)},
		{"Travel", FormatSeconds(r.TotalTravelTime)},
		{"First start", ClockTime(r.FirstStartTime)},
		{"Last end", end},
		{"Sessions", fmt.Sprintf("%d", r.SessionCount)},
		{"Travels", fmt.Sprintf("%d", r.TravelCount)},
	}
	return RenderBox("Day · "+r.Date, RenderTable([]string{"METRIC", "VALUE"}, rows))
}

// FormatMonthlyStats renders per-day hours for days with activity plus totals.
func FormatMonthlyStats(m *report.MonthlyStats) string {
	var rows [][]string
	for _, d := range m.PerDay {
		if d.Hours == 0 {
			continue
		}
		rows = append(rows, []string{d.Date, FormatHours(d.Hours)})
	}

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(Dim("No sessions this month.") + "\n")
	} else {
		b.WriteString(RenderTable([]string{"DATE", "HOURS"}, rows, 1))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Total hours"), Bold(FormatHours(m.TotalHours))))
	if m.HourlyRate > 0 {
		b.WriteString(fmt.Sprintf("%s %s %s\n", Dim("Earnings   "), Bold(fmt.Sprintf("%.2f", m.TotalEarnings)),
			Dim(fmt.Sprintf("at %.2f/h", m.HourlyRate))))
	}
	return RenderBox("Month · "+m.Month, b.String())
}

// FormatCalendar renders a Monday-first month grid, highlighting work days.
func FormatCalendar(month time.Time, days []report.CalendarDay) string {
	var b strings.Builder
	b.WriteString(Dim("Mo Tu We Th Fr Sa Su") + "\n")
	if len(days) == 0 {
		return RenderBox("Work days · "+month.Format("January 2006"), b.String())
	}

	offset := (int(days[0].Weekday) + 6) % 7
	b.WriteString(strings.Repeat("   ", offset))
	col := offset
	marked := 0
	for _, d := range days {
		cell := fmt.Sprintf("%2d", d.Date.Day())
		if d.Marked {
			cell = StyleGreen.Render(cell)
			marked++
		} else {
			cell = Dim(cell)
		}
		b.WriteString(cell)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n%s %d\n", Dim("Days with activity:"), marked))
	return RenderBox("Work days · "+month.Format("January 2006"), b.String())
}

type dailyExport struct {
	Date            string `yaml:"date"`
	TotalWorkTime   int64  `yaml:"total_work_seconds"`
	TotalBreakTime  int64  `yaml:"total_break_seconds"`
	TotalTravelTime int64  `yaml:"total_travel_seconds"`
	FirstStartTime  string `yaml:"first_start,omitempty"`
	LastEndTime     string `yaml:"last_end,omitempty"`
	StillOpen       bool   `yaml:"still_open"`
	Sessions        int    `yaml:"sessions"`
	Travels         int    `yaml:"travels"`
}

// DailyReportYAML exports a daily report; timestamps are RFC 3339.
func DailyReportYAML(r *report.DailyReport) ([]byte, error) {
	out := dailyExport{
		Date:            r.Date,
		TotalWorkTime:   r.TotalWorkTime,
		TotalBreakTime:  r.TotalBreakTime,
		TotalTravelTime: r.TotalTravelTime,
		StillOpen:       r.StillOpen,
		Sessions:        r.SessionCount,
		Travels:         r.TravelCount,
	}
	if r.FirstStartTime != nil {
		out.FirstStartTime = r.FirstStartTime.Format(time.RFC3339)
	}
	if r.LastEndTime != nil {
		out.LastEndTime = r.LastEndTime.Format(time.RFC3339)
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding daily report: %w", err)
	}
	return data, nil
}

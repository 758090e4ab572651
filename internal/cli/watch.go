package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/shiftlog/internal/cli/formatter"
	"github.com/alexanderramin/shiftlog/internal/countdown"
	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const watchBarWidth = 30

type watchKeyMap struct {
	Quit key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k watchKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type tickMsg countdown.Tick

type ticksClosedMsg struct{}

// watchModel renders scheduler ticks for one worker until quit.
type watchModel struct {
	ticks  <-chan countdown.Tick
	last   countdown.Tick
	notice string
	keys   watchKeyMap
	help   help.Model
	done   bool
}

func newWatchModel(first countdown.Tick, ticks <-chan countdown.Tick) watchModel {
	return watchModel{
		ticks: ticks,
		last:  first,
		keys:  defaultWatchKeys(),
		help:  help.New(),
	}
}

func waitForTick(ch <-chan countdown.Tick) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return ticksClosedMsg{}
		}
		return tickMsg(t)
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForTick(m.ticks)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tickMsg:
		m.last = countdown.Tick(msg)
		if m.last.Expired != "" {
			m.notice = fmt.Sprintf("%s time is up, break ended automatically", formatter.BreakTitle(m.last.Expired))
		}
		return m, waitForTick(m.ticks)
	case ticksClosedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	t := m.last
	var b strings.Builder

	b.WriteString(formatter.StatusIndicator(t.Status) + "  " + formatter.Dim(t.At.Format("15:04:05")) + "\n\n")

	switch t.Status {
	case domain.StatusTraveling:
		b.WriteString(fmt.Sprintf("%-12s %s\n", formatter.Dim("Travelling"), formatter.FormatClock(t.TravelElapsed)))
	case domain.StatusHome, domain.StatusDone:
		b.WriteString(formatter.Dim("Nothing running.") + "\n")
	default:
		b.WriteString(fmt.Sprintf("%-12s %s\n", formatter.Dim("Worked"), formatter.FormatClock(t.WorkElapsed)))
	}

	switch t.Status {
	case domain.StatusOnBreak:
		b.WriteString(fmt.Sprintf("%-12s %s\n", formatter.Dim("Lunch"),
			formatter.RenderCountdown(t.BreakRemaining, domain.LunchBreakLength, watchBarWidth)))
	case domain.StatusOnShortBreak:
		b.WriteString(fmt.Sprintf("%-12s %s\n", formatter.Dim("Short break"),
			formatter.RenderCountdown(t.ShortBreakRemaining, domain.ShortBreakLength, watchBarWidth)))
	}
	b.WriteString(fmt.Sprintf("%-12s %s\n", formatter.Dim("Budget left"), formatter.FormatSeconds(t.TotalBreakRemaining)))

	if m.notice != "" {
		b.WriteString("\n" + formatter.StyleYellow.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")

	return formatter.RenderBox("Live · "+t.UserID, b.String())
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of the running countdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Ticks == nil {
				return fmt.Errorf("live view needs the countdown scheduler")
			}
			userID, err := app.userID()
			if err != nil {
				return err
			}
			snap, err := app.Attendance.Status(commandContext(cmd), userID)
			if err != nil {
				return err
			}

			ticks, cancel := app.Ticks.Subscribe(userID)
			defer cancel()

			p := tea.NewProgram(newWatchModel(countdown.TickFrom(snap), ticks),
				tea.WithContext(commandContext(cmd)),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}

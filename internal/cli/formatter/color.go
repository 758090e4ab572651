package formatter

import (
	"strings"

	"github.com/alexanderramin/shiftlog/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusColor returns the style used for a worker status.
func StatusColor(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusOnSite:
		return StyleGreen
	case domain.StatusOnBreak, domain.StatusOnShortBreak:
		return StyleYellow
	case domain.StatusTraveling:
		return StyleBlue
	case domain.StatusDone:
		return StylePurple
	default:
		return StyleDim
	}
}

// StatusIndicator returns a colored status pill such as "● ON-SITE".
func StatusIndicator(status domain.Status) string {
	symbol := "●"
	switch status {
	case domain.StatusHome:
		symbol = "○"
	case domain.StatusDone:
		symbol = "✔"
	case domain.StatusTraveling:
		symbol = "➜"
	}
	return StatusColor(status).Render(symbol + " " + strings.ToUpper(string(status)))
}

// EventColor returns the style for a timeline event kind.
func EventColor(kind domain.EventKind) lipgloss.Style {
	switch kind {
	case domain.EventWork:
		return StyleGreen
	case domain.EventBreak:
		return StyleYellow
	case domain.EventShortBreak:
		return StylePurple
	case domain.EventTravel:
		return StyleBlue
	default:
		return StyleDim
	}
}

// EventLabel returns the display name of a timeline event kind.
func EventLabel(kind domain.EventKind) string {
	switch kind {
	case domain.EventWork:
		return "Work"
	case domain.EventBreak:
		return "Lunch break"
	case domain.EventShortBreak:
		return "Short break"
	case domain.EventTravel:
		return "Travel"
	default:
		return string(kind)
	}
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

package tui

import "github.com/charmbracelet/lipgloss"

// Colors follow the card palette.
var (
	ColorHeader = lipgloss.Color("#CD853F")
	ColorText   = lipgloss.Color("#333333")
	ColorMuted  = lipgloss.Color("#999999")
	ColorStar   = lipgloss.Color("#F4B400")
	ColorLink   = lipgloss.Color("#4169E1")
	ColorError  = lipgloss.Color("#EF4444")
)

// Styles holds the styles for the chat TUI.
type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Bot       lipgloss.Style
	CardTitle lipgloss.Style
	Card      lipgloss.Style
	Chips     lipgloss.Style
	Note      lipgloss.Style
	Error     lipgloss.Style
	Input     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader),
		User: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorLink),
		Bot: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader),
		CardTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorHeader).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHeader).
			Padding(0, 1),
		Chips: lipgloss.NewStyle().
			Foreground(ColorStar),
		Note: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(ColorMuted),
	}
}

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Color Palette ---
var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Indigo
	ColorSecondary = lipgloss.Color("#04B575") // Green
	ColorError     = lipgloss.Color("#FF5F87") // Pink/Red
	ColorWarning   = lipgloss.Color("#FFAF00") // Gold
	ColorText      = lipgloss.Color("#FAFAFA")
	ColorSubtle    = lipgloss.Color("#767676")
	ColorBorder    = lipgloss.Color("#3C3C3C")
	ColorBanner    = lipgloss.Color("#2BB673") // Fresh green
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorSubtle)

	// Stage headings in the run log
	Stage = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	Text   = lipgloss.NewStyle().Foreground(ColorText)
	Subtle = lipgloss.NewStyle().Foreground(ColorSubtle)

	Value = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

	// Alerts
	Error   = lipgloss.NewStyle().Foreground(ColorError)
	Warn    = lipgloss.NewStyle().Foreground(ColorWarning)
	Success = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

	// Menu entries
	Item         = lipgloss.NewStyle().PaddingLeft(2)
	ItemSelected = lipgloss.NewStyle().PaddingLeft(0).Foreground(ColorPrimary).Bold(true)

	Footer = lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Padding(1, 1, 0, 1)
)

// Marker returns the one-glyph status prefix used for an operation line.
func Marker(severity string) string {
	switch severity {
	case "ok":
		return Success.Render("✓")
	case "warning":
		return Warn.Render("!")
	case "error":
		return Error.Render("✗")
	}
	return Subtle.Render("·")
}

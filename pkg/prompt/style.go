package prompt

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// LaunchWolf palette.
var (
	ColorAccent  = lipgloss.Color("13")
	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError   = lipgloss.Color("9")
	ColorMuted   = lipgloss.Color("8")
)

// Styles are the text styles used for command output.
var Styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1),
}

// Success renders a "✓ msg" line.
func Success(msg string) string {
	return Styles.Success.Render("✓") + " " + msg
}

// Warning renders a "⚠ msg" line.
func Warning(msg string) string {
	return Styles.Warning.Render("⚠") + " " + msg
}

// Failure renders a "✗ msg" line.
func Failure(msg string) string {
	return Styles.Error.Render("✗") + " " + msg
}

// Theme returns the form theme.
func Theme() *huh.Theme {
	t := huh.ThemeCharm()
	t.Focused.Title = t.Focused.Title.Foreground(ColorAccent)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorAccent)
	return t
}

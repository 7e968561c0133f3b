package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines all keyboard shortcuts shown in the help overlay.
var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "up / k", Desc: "Select previous process"},
	{Key: "down / j", Desc: "Select next process"},
	{Key: "g / Home", Desc: "Select first process"},
	{Key: "G / End", Desc: "Select last process"},
	{Key: "s", Desc: "Cycle sort order"},
	{Key: "t", Desc: "Toggle tree view"},
	{Key: "/", Desc: "Filter by process name"},
	{Key: "x / K", Desc: "Terminate selected process"},
	{Key: "n", Desc: "Cycle network interface"},
	{Key: "c", Desc: "Cycle color theme"},
	{Key: "C", Desc: "Save current theme"},
	{Key: "?", Desc: "Toggle this help"},
}

// renderHelpOverlay renders a centered help box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	theme := ActiveTheme()

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 2)
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true).
		MarginBottom(1)
	keyStyle := lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(14)
	descStyle := lipgloss.NewStyle().
		Foreground(theme.TextDim)

	var lines []string
	lines = append(lines, titleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, binding := range helpBindings {
		lines = append(lines, keyStyle.Render(binding.Key)+descStyle.Render(binding.Desc))
	}

	lines = append(lines, "")
	lines = append(lines, LabelStyle().Render("Press ? to close"))

	helpBox := boxStyle.Render(strings.Join(lines, "\n"))

	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBox,
		lipgloss.WithWhitespaceChars(" "))
}

package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// activeTheme backs every derived style. Render code runs on the
// program goroutine, so a plain package variable is safe; tests call
// SetTheme directly.
var activeTheme = DefaultTheme

// SetTheme makes the given palette active for all subsequent renders.
func SetTheme(t Theme) {
	activeTheme = t
}

// ActiveTheme returns the palette currently in effect.
func ActiveTheme() Theme {
	return activeTheme
}

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Styles are functions rather than vars so theme cycling takes effect
// without rebuilding cached state.

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Text).Bold(true).Padding(0, 1)
}

func FooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Muted).Padding(0, 1)
}

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Accent).Bold(true)
}

func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.TextDim)
}

func ValueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Text)
}

func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Muted)
}

// NoteStyle renders availability notes ("No perm", "Warmup") beside
// absent readings.
func NoteStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Muted).Italic(true)
}

func CardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(activeTheme.Border).
		Padding(0, 1).
		MarginRight(1)
}

func SelectedRowStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Text).Background(activeTheme.Border).Bold(true)
}

func StatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.AccentAlt).Bold(true)
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(activeTheme.Critical)
}

// MetricColor returns the appropriate color for a percentage-based metric.
// Uses threshold-based coloring: healthy < 70%, warning 70-90%, critical > 90%.
func MetricColor(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, int(WarningThreshold), int(CriticalThreshold))
}

// MetricColorWithThresholds returns the appropriate color for a percentage-based
// metric using the provided warning and critical threshold values.
func MetricColorWithThresholds(percent float64, warning, critical int) lipgloss.Color {
	switch {
	case percent >= float64(critical):
		return activeTheme.Critical
	case percent >= float64(warning):
		return activeTheme.Warning
	default:
		return activeTheme.Healthy
	}
}

// MetricStyle returns a style with the appropriate foreground color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// ProgressBar renders a progress bar with the given width and percentage.
// Bracketless style with threshold-based coloring.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("▰")
		} else {
			bar.WriteString("▱")
		}
	}

	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(bar.String())
}

// ThinProgressBar renders a minimal line-based progress bar using thin
// characters: ━ for filled segments and ─ for empty segments.
func ThinProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("━")
		} else {
			bar.WriteString("─")
		}
	}

	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(bar.String())
}

// SectionHeader renders a section header with the title on the left and value
// on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// "╭─ " + title + " " on the left, " " + value + " ╮" on the right
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(activeTheme.Border)
	titleStyle := lipgloss.NewStyle().Foreground(activeTheme.Accent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(activeTheme.AccentAlt).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}

	middle := strings.Repeat("─", width-2)
	return lipgloss.NewStyle().Foreground(activeTheme.Border).Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders,
// padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(activeTheme.Border)

	contentWidth := lipgloss.Width(content)
	innerWidth := width - 4

	padding := innerWidth - contentWidth
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

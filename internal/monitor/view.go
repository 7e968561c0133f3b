package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	header := m.renderHeader(width)
	cards := m.renderMetricCards(width)
	footer := m.renderFooter(width)

	// The process table gets whatever vertical room remains. Four
	// lines cover its own borders and column heading.
	used := lipgloss.Height(header) + lipgloss.Height(cards) + lipgloss.Height(footer)
	tableRows := m.height - used - 4
	if m.height <= 0 {
		tableRows = 15
	}
	if tableRows < 3 {
		tableRows = 3
	}
	table := m.renderProcessTable(width, tableRows)

	view := lipgloss.JoinVertical(lipgloss.Left, header, cards, table, footer)

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.mode == ModeConfirmKill {
		return m.renderConfirmKill(view)
	}
	return view
}

// renderHeader renders the top line: program name plus host identity
// and load, with the sample age on the right.
func (m Model) renderHeader(width int) string {
	title := lipgloss.NewStyle().
		Foreground(ActiveTheme().Accent).
		Bold(true).
		Render("vitals")

	var parts []string
	if host := hostOf(m.snap); host != nil {
		parts = append(parts, host.Hostname)
		parts = append(parts, "up "+formatUptime(host.Uptime))
		parts = append(parts, fmt.Sprintf("load %.2f %.2f %.2f", host.Load1, host.Load5, host.Load15))
		if host.Battery.Ok() {
			batt := fmt.Sprintf("batt %.0f%%", host.Battery.Value)
			if host.Charging {
				batt += "+"
			}
			parts = append(parts, batt)
		}
	}

	age := m.SecondsSinceSample()
	var ageText string
	switch {
	case m.lastSample.IsZero():
		ageText = "sampling..."
	case age <= 0:
		ageText = "just now"
	case age == 1:
		ageText = "1s ago"
	default:
		ageText = fmt.Sprintf("%ds ago", age)
	}

	stats := LabelStyle().Render(" | " + strings.Join(append(parts, ageText), " | "))
	return HeaderStyle().Render(padLine(title+stats, width))
}

// renderMetricCards lays the five telemetry cards out in rows sized to
// the terminal width.
func (m Model) renderMetricCards(width int) string {
	perRow := cardsPerRow(width)
	cardWidth := width/perRow - 1
	if cardWidth < 24 {
		cardWidth = 24
	}

	cards := []string{
		m.renderCPUCard(cardWidth),
		m.renderMemoryCard(cardWidth),
		m.renderGPUCard(cardWidth),
		m.renderNetworkCard(cardWidth),
		m.renderDiskCard(cardWidth),
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// cardsPerRow picks how many metric cards share a row at this width.
func cardsPerRow(width int) int {
	switch {
	case width >= 150:
		return 5
	case width >= 90:
		return 3
	default:
		return 2
	}
}

// renderFooter renders the bottom line: the search input while typing,
// otherwise key hints and any transient status message.
func (m Model) renderFooter(width int) string {
	if m.mode == ModeSearching {
		return FooterStyle().Render(padLine(m.searchInput.View(), width))
	}

	hints := []string{
		"q quit",
		"/ search",
		"s sort",
		"t tree",
		"x kill",
		"? help",
	}
	line := strings.Join(hints, " | ")

	if status := m.statusLine(); status != "" {
		line = StatusStyle().Render(status) + "  " + MutedStyle().Render(line)
		return FooterStyle().Render(padLine(line, width))
	}
	if m.query != "" {
		line = StatusStyle().Render("filter: "+m.query) + "  " + MutedStyle().Render(line)
		return FooterStyle().Render(padLine(line, width))
	}
	return FooterStyle().Render(padLine(MutedStyle().Render(line), width))
}

// renderConfirmKill overlays the termination dialog on the dashboard.
func (m Model) renderConfirmKill(base string) string {
	theme := ActiveTheme()

	question := fmt.Sprintf("Terminate %s (pid %d)?", m.kill.name, m.kill.pid)

	option := func(label string, active bool) string {
		style := lipgloss.NewStyle().Padding(0, 2).Foreground(theme.TextDim)
		if active {
			style = style.Foreground(theme.Text).Background(theme.Critical).Bold(true)
		}
		return style.Render(label)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		option("Yes", m.kill.yes),
		"  ",
		option("No", !m.kill.yes),
	)

	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Critical).Bold(true).Render("Confirm"),
		"",
		lipgloss.NewStyle().Foreground(theme.Text).Render(question),
		"",
		buttons,
		"",
		MutedStyle().Render("enter confirm · esc cancel"),
	)

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Critical).
		Padding(1, 3).
		Render(content)

	width, height := m.width, m.height
	if width <= 0 {
		width = lipgloss.Width(base)
	}
	if height <= 0 {
		height = lipgloss.Height(base)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dialog,
		lipgloss.WithWhitespaceChars(" "))
}

// formatUptime renders an uptime compactly: "3d 4h", "4h 12m", "12m".
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// FormatRate formats a bytes-per-second rate as a human-readable string.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.0f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB/s", bytesPerSecond/(1024*1024*1024))
}

func hostOf(s *metrics.SystemSnapshot) *metrics.HostStatus {
	if s == nil {
		return nil
	}
	return s.Host
}

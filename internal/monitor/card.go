package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/util"
)

// Card layout constants
const (
	cardGraphHeight = 2  // braille graph rows
	cardMinBarWidth = 10 // minimum graph width
	maxDiskMounts   = 4  // mounts shown before the card summarizes
)

// renderCardDivider creates a subtle thin divider line.
func renderCardDivider(width int) string {
	return MutedStyle().Render(strings.Repeat("─", width))
}

// padLine pads a rendered line to the card's inner width so joined
// cards keep their columns aligned.
func padLine(content string, width int) string {
	contentWidth := lipgloss.Width(content)
	if width <= contentWidth {
		return content
	}
	return content + strings.Repeat(" ", width-contentWidth)
}

// lineBetween lays out left and right content on one line with the gap
// between them padded to the full width.
func lineBetween(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// sensorText formats an optional sensor reading, falling back to its
// absence note in a dimmer style.
func sensorText(r metrics.Reading, format string) string {
	if r.Ok() {
		return ValueStyle().Render(fmt.Sprintf(format, r.Value))
	}
	if r.Note != "" {
		return NoteStyle().Render(r.Note)
	}
	return NoteStyle().Render("n/a")
}

// renderCPUCard renders processor usage, its history graph, a per-core
// strip, and whichever sensors the host exposes.
func (m Model) renderCPUCard(width int) string {
	innerWidth := width - 4
	if innerWidth < cardMinBarWidth {
		innerWidth = cardMinBarWidth
	}

	var lines []string
	cpu := cpuOf(m.snap)

	title := TitleStyle().Render("CPU")
	if cpu == nil {
		lines = append(lines, padLine(title, innerWidth))
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, padLine(m.problemLine("cpu", "Collecting..."), innerWidth))
		return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
	}

	pct := MetricStyle(cpu.Usage).Render(fmt.Sprintf("%5.1f%%", cpu.Usage))
	coresText := LabelStyle().Render(fmt.Sprintf("%d cores", cpu.Cores))
	lines = append(lines, padLine(lineBetween(title, pct+" "+coresText, innerWidth), innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	lines = append(lines, m.historyGraph(metrics.SeriesCPU, cpu.Usage, innerWidth)...)

	// One column per core, downsampled only when cores outnumber the
	// card width.
	if len(cpu.PerCore) > 1 {
		stripWidth := len(cpu.PerCore)
		if most := innerWidth - 6; stripWidth > most {
			stripWidth = most
		}
		strip := RenderMiniSparkline(cpu.PerCore, stripWidth)
		lines = append(lines, padLine(LabelStyle().Render("Cores")+" "+strip, innerWidth))
	}

	sensors := []string{}
	if cpu.FreqMHz.Ok() {
		sensors = append(sensors, ValueStyle().Render(fmt.Sprintf("%.2fGHz", cpu.FreqMHz.Value/1000)))
	}
	if cpu.Temp.Ok() {
		sensors = append(sensors, MetricStyle(cpu.Temp.Value).Render(fmt.Sprintf("%.0f°C", cpu.Temp.Value)))
	}
	if cpu.Power.Ok() {
		sensors = append(sensors, ValueStyle().Render(fmt.Sprintf("%.1fW", cpu.Power.Value)))
	}
	if len(sensors) > 0 {
		line := lineBetween(LabelStyle().Render("Sensors"), strings.Join(sensors, " "), innerWidth)
		lines = append(lines, padLine(line, innerWidth))
	}

	return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderMemoryCard renders memory pressure with its history graph and
// swap usage when the host has swap at all.
func (m Model) renderMemoryCard(width int) string {
	innerWidth := width - 4
	if innerWidth < cardMinBarWidth {
		innerWidth = cardMinBarWidth
	}

	var lines []string
	mem := memOf(m.snap)

	title := TitleStyle().Render("MEM")
	if mem == nil || mem.Total == 0 {
		lines = append(lines, padLine(title, innerWidth))
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, padLine(m.problemLine("memory", "Collecting..."), innerWidth))
		return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
	}

	percent := float64(mem.Used) / float64(mem.Total) * 100
	pct := MetricStyle(percent).Render(fmt.Sprintf("%5.1f%%", percent))
	lines = append(lines, padLine(lineBetween(title, pct, innerWidth), innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	lines = append(lines, m.historyGraph(metrics.SeriesMemory, percent, innerWidth)...)

	usedText := ValueStyle().Render(formatBytes(int64(mem.Used))) +
		LabelStyle().Render(" / "+formatBytes(int64(mem.Total)))
	lines = append(lines, padLine(lineBetween(LabelStyle().Render("Used"), usedText, innerWidth), innerWidth))

	if mem.SwapTotal > 0 {
		swapPct := float64(mem.SwapUsed) / float64(mem.SwapTotal) * 100
		swapText := MetricStyle(swapPct).Render(fmt.Sprintf("%.0f%%", swapPct)) +
			LabelStyle().Render(" "+formatBytes(int64(mem.SwapUsed))+" / "+formatBytes(int64(mem.SwapTotal)))
		lines = append(lines, padLine(lineBetween(LabelStyle().Render("Swap"), swapText, innerWidth), innerWidth))
	}

	return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderGPUCard renders GPU telemetry. Every field is optional on its
// own: a card can show usage with no power draw, or memory with no
// usage, depending on what the driver exposes.
func (m Model) renderGPUCard(width int) string {
	innerWidth := width - 4
	if innerWidth < cardMinBarWidth {
		innerWidth = cardMinBarWidth
	}

	var lines []string
	gpu := gpuOf(m.snap)

	title := TitleStyle().Render("GPU")
	if gpu == nil {
		lines = append(lines, padLine(title, innerWidth))
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, padLine(m.problemLine("gpu", "No GPU detected"), innerWidth))
		return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
	}

	var usageText string
	if gpu.Usage.Ok() {
		usageText = MetricStyle(gpu.Usage.Value).Render(fmt.Sprintf("%5.1f%%", gpu.Usage.Value))
	} else {
		usageText = sensorText(gpu.Usage, "%.1f%%")
	}
	lines = append(lines, padLine(lineBetween(title, usageText, innerWidth), innerWidth))

	if gpu.Name != "" {
		name := util.Truncate(gpu.Name, innerWidth)
		lines = append(lines, padLine(LabelStyle().Render(name), innerWidth))
	}
	lines = append(lines, renderCardDivider(innerWidth))

	if gpu.Usage.Ok() {
		lines = append(lines, m.historyGraph(metrics.SeriesGPU, gpu.Usage.Value, innerWidth)...)
	}

	if gpu.MemTotal.Ok() && gpu.MemTotal.Value > 0 {
		memText := ValueStyle().Render(formatBytes(int64(gpu.MemUsed.Value))) +
			LabelStyle().Render(" / "+formatBytes(int64(gpu.MemTotal.Value)))
		if !gpu.MemUsed.Ok() {
			memText = sensorText(gpu.MemUsed, "")
		}
		lines = append(lines, padLine(lineBetween(LabelStyle().Render("VRAM"), memText, innerWidth), innerWidth))
	}

	tempText := sensorText(gpu.Temp, "%.0f°C")
	if gpu.Temp.Ok() {
		tempText = MetricStyle(gpu.Temp.Value).Render(fmt.Sprintf("%.0f°C", gpu.Temp.Value))
	}
	line := lineBetween(LabelStyle().Render("Temp"), tempText, innerWidth/2-1)
	line += " " + lineBetween(LabelStyle().Render("Pwr"), sensorText(gpu.Power, "%.1fW"), innerWidth-lipgloss.Width(line)-1)
	lines = append(lines, padLine(line, innerWidth))

	return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderNetworkCard renders throughput for the selected interface, or
// for all interfaces combined when none is selected.
func (m Model) renderNetworkCard(width int) string {
	innerWidth := width - 4
	if innerWidth < cardMinBarWidth {
		innerWidth = cardMinBarWidth
	}

	var lines []string
	net := netOf(m.snap)

	title := TitleStyle().Render("NET")
	if net == nil || len(net.Interfaces) == 0 {
		lines = append(lines, padLine(title, innerWidth))
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, padLine(m.problemLine("network", "No interfaces"), innerWidth))
		return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
	}

	var rx, tx float64
	var rxTotal, txTotal uint64
	rxSeries, txSeries := metrics.SeriesNetRx, metrics.SeriesNetTx
	scope := "all"

	if m.ifaceIndex >= 0 && m.ifaceIndex < len(net.Interfaces) {
		iface := net.Interfaces[m.ifaceIndex]
		rx, tx = iface.RxRate, iface.TxRate
		rxTotal, txTotal = iface.RxTotal, iface.TxTotal
		rxSeries, txSeries = metrics.RxSeries(iface.Name), metrics.TxSeries(iface.Name)
		scope = iface.Name
	} else {
		rx, tx = net.Aggregate()
		for _, iface := range net.Interfaces {
			if iface.IsLoopback() {
				continue
			}
			rxTotal += iface.RxTotal
			txTotal += iface.TxTotal
		}
	}

	lines = append(lines, padLine(lineBetween(title, StatusStyle().Render(scope), innerWidth), innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	theme := ActiveTheme()
	downArrow := lipgloss.NewStyle().Foreground(theme.Accent).Render("↓")
	upArrow := lipgloss.NewStyle().Foreground(theme.AccentAlt).Render("↑")

	sparkWidth := innerWidth - 13
	if sparkWidth < 4 {
		sparkWidth = 4
	}
	rxSpark := RenderColoredMiniSparkline(m.history.Get(rxSeries, sparkWidth), sparkWidth, theme.Accent)
	txSpark := RenderColoredMiniSparkline(m.history.Get(txSeries, sparkWidth), sparkWidth, theme.AccentAlt)

	rxLine := lineBetween(downArrow+" "+rxSpark, ValueStyle().Render(FormatRate(rx)), innerWidth)
	txLine := lineBetween(upArrow+" "+txSpark, ValueStyle().Render(FormatRate(tx)), innerWidth)
	lines = append(lines, padLine(rxLine, innerWidth))
	lines = append(lines, padLine(txLine, innerWidth))

	totals := LabelStyle().Render("↓ "+formatBytes(int64(rxTotal))) + "  " +
		LabelStyle().Render("↑ "+formatBytes(int64(txTotal)))
	lines = append(lines, padLine(lineBetween(LabelStyle().Render("Total"), totals, innerWidth), innerWidth))

	return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderDiskCard renders one usage line per mounted filesystem.
func (m Model) renderDiskCard(width int) string {
	innerWidth := width - 4
	if innerWidth < cardMinBarWidth {
		innerWidth = cardMinBarWidth
	}

	var lines []string
	disk := diskOf(m.snap)

	title := TitleStyle().Render("DISK")
	if disk == nil || len(disk.Disks) == 0 {
		lines = append(lines, padLine(title, innerWidth))
		lines = append(lines, renderCardDivider(innerWidth))
		lines = append(lines, padLine(m.problemLine("disk", "No filesystems"), innerWidth))
		return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
	}

	count := LabelStyle().Render(fmt.Sprintf("%d %s", len(disk.Disks), util.Pluralize(len(disk.Disks), "mount", "mounts")))
	lines = append(lines, padLine(lineBetween(title, count, innerWidth), innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	shown := disk.Disks
	if len(shown) > maxDiskMounts {
		shown = shown[:maxDiskMounts]
	}
	for _, d := range shown {
		var pct float64
		if d.Total > 0 {
			pct = float64(d.Used) / float64(d.Total) * 100
		}
		mount := util.Truncate(d.Mount, 12)
		usage := MetricStyle(pct).Render(fmt.Sprintf("%3.0f%%", pct)) +
			LabelStyle().Render(" "+formatBytes(int64(d.Used))+" / "+formatBytes(int64(d.Total)))

		barWidth := innerWidth - lipgloss.Width(mount) - lipgloss.Width(usage) - 2
		if barWidth >= 4 {
			bar := ThinProgressBar(barWidth, pct)
			lines = append(lines, padLine(mount+" "+bar+" "+usage, innerWidth))
		} else {
			lines = append(lines, padLine(lineBetween(LabelStyle().Render(mount), usage, innerWidth), innerWidth))
		}
	}
	if len(disk.Disks) > maxDiskMounts {
		more := fmt.Sprintf("+%d more", len(disk.Disks)-maxDiskMounts)
		lines = append(lines, padLine(MutedStyle().Render(more), innerWidth))
	}

	return CardStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// historyGraph renders a braille sparkline for a series, or a gradient
// bar of the current value while the ring is still warming up.
func (m Model) historyGraph(series string, current float64, width int) []string {
	data := m.history.Get(series, metrics.DefaultHistorySize)
	if len(data) > 1 {
		graph := RenderBrailleSparkline(data, width, cardGraphHeight, ActiveTheme().Graph)
		out := make([]string, 0, cardGraphHeight)
		for _, gl := range strings.Split(graph, "\n") {
			out = append(out, padLine(gl, width))
		}
		return out
	}
	return []string{padLine(RenderGradientBar(width, current), width)}
}

// problemLine surfaces a source failure recorded in the snapshot, or
// the fallback text when the source simply has nothing yet.
func (m Model) problemLine(source, fallback string) string {
	if m.snap != nil {
		if msg, ok := m.snap.Problems[source]; ok {
			return ErrorStyle().Render("✗ ") + NoteStyle().Render(msg)
		}
	}
	return MutedStyle().Render(fallback)
}

func cpuOf(s *metrics.SystemSnapshot) *metrics.CPUStatus {
	if s == nil {
		return nil
	}
	return s.CPU
}

func memOf(s *metrics.SystemSnapshot) *metrics.MemoryStatus {
	if s == nil {
		return nil
	}
	return s.Memory
}

func gpuOf(s *metrics.SystemSnapshot) *metrics.GPUStatus {
	if s == nil {
		return nil
	}
	return s.GPU
}

func netOf(s *metrics.SystemSnapshot) *metrics.NetworkStatus {
	if s == nil {
		return nil
	}
	return s.Network
}

func diskOf(s *metrics.SystemSnapshot) *metrics.DiskStatus {
	if s == nil {
		return nil
	}
	return s.Disk
}

package monitor

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/vitals/internal/proc"
	"github.com/rileyhilliard/vitals/internal/util"
)

// Process table column widths. NAME takes whatever is left.
const (
	colPID  = 7
	colUser = 10
	colCPU  = 6
	colMem  = 6
	colRSS  = 9
)

// renderProcessTable renders the process list as a bordered section
// filling the given width, with at most maxRows process rows.
func (m Model) renderProcessTable(width, maxRows int) string {
	innerWidth := width - 4
	if innerWidth < 40 {
		innerWidth = 40
	}
	if maxRows < 1 {
		maxRows = 1
	}

	var b strings.Builder
	b.WriteString(SectionHeader("Processes", m.tableSummary(), width))
	b.WriteString("\n")
	b.WriteString(SectionContentLine(LabelStyle().Render(tableHeading()), width))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		empty := "No processes"
		if m.query != "" {
			empty = fmt.Sprintf("No processes match %q", m.query)
		}
		b.WriteString(SectionContentLine(MutedStyle().Render(empty), width))
		b.WriteString("\n")
	} else {
		start := tableWindow(m.selected, len(m.rows), maxRows)
		end := start + maxRows
		if end > len(m.rows) {
			end = len(m.rows)
		}
		for i := start; i < end; i++ {
			line := m.renderProcessRow(m.rows[i], innerWidth, i == m.selected)
			b.WriteString(SectionContentLine(line, width))
			b.WriteString("\n")
		}
		if end < len(m.rows) {
			more := MutedStyle().Render(fmt.Sprintf("… %d more", len(m.rows)-end))
			b.WriteString(SectionContentLine(more, width))
			b.WriteString("\n")
		}
	}

	b.WriteString(SectionFooter(width))
	return b.String()
}

// tableSummary builds the header's right-hand value: sort order, row
// count, and the active filter and view toggles.
func (m Model) tableSummary() string {
	parts := []string{fmt.Sprintf("%s ▼", m.sortMode)}
	if m.treeView {
		parts = []string{"tree"}
	}
	parts = append(parts, fmt.Sprintf("%d %s", len(m.rows), util.Pluralize(len(m.rows), "proc", "procs")))
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("filter: %s", m.query))
	}
	return strings.Join(parts, " · ")
}

// tableHeading renders the column titles padded to their widths.
func tableHeading() string {
	return fmt.Sprintf("%*s  %-*s  %*s  %*s  %*s  NAME",
		colPID, "PID",
		colUser, "USER",
		colCPU, "CPU%",
		colMem, "MEM%",
		colRSS, "RSS")
}

// renderProcessRow renders one process line, highlighted when it holds
// the cursor. Cells are padded as plain text first so the styling does
// not disturb column alignment.
func (m Model) renderProcessRow(row proc.TreeRow, innerWidth int, selected bool) string {
	e := row.Entry

	name := e.Name
	if row.Depth > 0 {
		name = strings.Repeat("  ", row.Depth-1) + "└ " + name
	}
	fixed := colPID + colUser + colCPU + colMem + colRSS + 10
	nameWidth := innerWidth - fixed
	if nameWidth < 8 {
		nameWidth = 8
	}
	name = util.Truncate(name, nameWidth)

	pidCell := fmt.Sprintf("%*d", colPID, e.PID)
	userCell := fmt.Sprintf("%-*s", colUser, util.Truncate(e.User, colUser))
	cpuCell := fmt.Sprintf("%*.1f", colCPU, e.CPUPercent)
	memCell := fmt.Sprintf("%*.1f", colMem, e.MemPercent)
	rssCell := fmt.Sprintf("%*s", colRSS, formatBytes(int64(e.MemRSS)))

	if selected {
		plain := strings.Join([]string{pidCell, userCell, cpuCell, memCell, rssCell, name}, "  ")
		return SelectedRowStyle().Render(padLine(plain, innerWidth))
	}

	return ValueStyle().Render(pidCell) + "  " +
		LabelStyle().Render(userCell) + "  " +
		MetricStyle(e.CPUPercent).Render(cpuCell) + "  " +
		MetricStyle(e.MemPercent).Render(memCell) + "  " +
		ValueStyle().Render(rssCell) + "  " +
		name
}

// tableWindow picks the first visible row so the cursor stays within a
// window of visible rows, preferring to keep it centered.
func tableWindow(selected, total, visible int) int {
	if total <= visible {
		return 0
	}
	start := selected - visible/2
	if start < 0 {
		start = 0
	}
	if start > total-visible {
		start = total - visible
	}
	return start
}

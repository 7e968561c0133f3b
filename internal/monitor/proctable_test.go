package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableWindow(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		total    int
		visible  int
		want     int
	}{
		{"everything fits", 3, 5, 10, 0},
		{"cursor at top", 0, 50, 10, 0},
		{"cursor in the middle stays centered", 25, 50, 10, 20},
		{"cursor near the end clamps", 49, 50, 10, 40},
		{"cursor just past half", 6, 50, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tableWindow(tt.selected, tt.total, tt.visible))
		})
	}
}

func TestTableSummary(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, "cpu ▼ · 3 procs", m.tableSummary())

	m.HandleKeyMsg(key("t"))
	assert.Contains(t, m.tableSummary(), "tree")
	assert.NotContains(t, m.tableSummary(), "▼", "tree view has no sort column")
	m.HandleKeyMsg(key("t"))

	m.query = "po"
	m.rebuildRows()
	assert.Equal(t, "cpu ▼ · 1 proc · filter: po", m.tableSummary())
}

func TestRenderProcessTable(t *testing.T) {
	m := newTestModel()

	out := m.renderProcessTable(100, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Bordered section: header, column heading, three rows, footer
	require.Len(t, lines, 6)
	for _, line := range lines {
		assert.Equal(t, 100, lipgloss.Width(line))
	}

	assert.Contains(t, out, "Processes")
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "postgres")
	assert.Contains(t, out, "worker")
	assert.Contains(t, out, "vitals")
}

func TestRenderProcessTableScrollIndicator(t *testing.T) {
	m := newTestModel()

	out := m.renderProcessTable(100, 2)
	assert.Contains(t, out, "… 1 more")
	assert.Contains(t, out, "postgres", "window holds the cursor")
}

func TestRenderProcessTableEmpty(t *testing.T) {
	t.Run("no processes at all", func(t *testing.T) {
		m := NewModel(nil, nil, Options{})
		m.rebuildRows()
		out := m.renderProcessTable(80, 5)
		assert.Contains(t, out, "No processes")
	})

	t.Run("filter without matches", func(t *testing.T) {
		m := newTestModel()
		m.query = "kafka"
		m.rebuildRows()
		out := m.renderProcessTable(80, 5)
		assert.Contains(t, out, `No processes match "kafka"`)
	})
}

func TestRenderProcessTableTreeIndent(t *testing.T) {
	m := newTestModel()
	m.HandleKeyMsg(key("t"))
	require.True(t, m.treeView)

	out := m.renderProcessTable(100, 10)
	assert.Contains(t, out, "└ worker", "children carry a branch marker")
}

func TestRenderProcessRowSelection(t *testing.T) {
	m := newTestModel()

	selected := m.renderProcessRow(m.rows[0], 80, true)
	plain := m.renderProcessRow(m.rows[0], 80, false)

	assert.Contains(t, selected, "postgres")
	assert.Contains(t, plain, "postgres")
	assert.NotEqual(t, selected, plain, "selection changes the styling")
	assert.Equal(t, 80, lipgloss.Width(selected), "selected row fills the width")
}

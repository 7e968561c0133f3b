package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/proc"
)

// DefaultInterval is the sampling cadence when config does not set one.
const DefaultInterval = time.Second

// statusTTL is how long a transient status message stays in the footer.
const statusTTL = 3 * time.Second

// sampleBudget bounds one full sampling pass. The aggregator times out
// individual sources long before this; the budget is a backstop so a
// wedged pass cannot block sampling forever.
const sampleBudget = 10 * time.Second

// killTarget identifies the process a confirmation dialog is about.
// yes mirrors the highlighted dialog option.
type killTarget struct {
	pid  int32
	name string
	yes  bool
}

// Options configures a dashboard model.
type Options struct {
	Interval  time.Duration
	History   int                     // ring capacity per series, 0 = default
	Theme     string                  // initial theme name, "" = default
	Interface string                  // preferred network interface, "" = aggregate
	SaveTheme func(name string) error // persists a theme choice, nil disables C
	Logger    logger.Logger
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	collector *metrics.Aggregator
	table     *proc.Table
	history   *metrics.History
	log       logger.Logger

	// Latest assembled telemetry. The snapshot is immutable once
	// stored, so the render path reads it without locking.
	snap       *metrics.SystemSnapshot
	entries    []proc.Entry
	rows       []proc.TreeRow
	lastSample time.Time

	mode        Mode
	searchInput textinput.Model
	query       string
	prevQuery   string
	kill        killTarget

	sortMode    proc.SortMode
	treeView    bool
	selected    int
	selectedPID int32

	ifaceIndex     int    // -1 = aggregate across interfaces
	preferredIface string // resolved to an index on the first snapshot

	themeIndex int
	saveTheme  func(name string) error
	terminate  func(pid int32) error

	interval time.Duration
	sampling bool

	width  int
	height int

	showHelp bool
	quitting bool

	status      string
	statusUntil time.Time

	now func() time.Time
}

// tickMsg drives the sampling cadence.
type tickMsg time.Time

// sampleMsg carries one completed sampling pass back to the model.
type sampleMsg struct {
	snap    *metrics.SystemSnapshot
	entries []proc.Entry
	procErr error
	at      time.Time
}

// NewModel creates a dashboard model wired to the given collector and
// process table. Init dispatches the first sample immediately.
func NewModel(collector *metrics.Aggregator, table *proc.Table, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	themeIndex := ThemeIndex(opts.Theme)
	if themeIndex < 0 {
		themeIndex = 0
	}
	SetTheme(Themes[themeIndex])

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "process name"
	input.CharLimit = 64

	return Model{
		collector:      collector,
		table:          table,
		history:        metrics.NewHistory(opts.History),
		log:            log,
		searchInput:    input,
		sortMode:       proc.SortCPU,
		ifaceIndex:     -1,
		preferredIface: opts.Interface,
		themeIndex:     themeIndex,
		saveTheme:      opts.SaveTheme,
		terminate:      proc.Terminate,
		interval:       interval,
		sampling:       true, // Init dispatches the first sample
		now:            time.Now,
	}
}

// Init starts the tick timer and the initial sampling pass.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.sampleCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = msg.Width - 8

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		// Skip the pass when the previous one is still in flight; it
		// will resume on the next tick.
		if !m.sampling {
			m.sampling = true
			cmds = append(cmds, m.sampleCmd())
		}
		return m, tea.Batch(cmds...)

	case sampleMsg:
		m.sampling = false
		m.applySample(msg)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// tickCmd returns a command that fires after the sampling interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sampleCmd runs one sampling pass off the program goroutine: all
// telemetry sources plus a process table refresh.
func (m Model) sampleCmd() tea.Cmd {
	collector := m.collector
	table := m.table
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sampleBudget)
		defer cancel()

		snap := collector.Collect(ctx)
		entries, err := table.Refresh(ctx)
		return sampleMsg{snap: snap, entries: entries, procErr: err, at: time.Now()}
	}
}

// applySample folds a completed sampling pass into the model.
func (m *Model) applySample(msg sampleMsg) {
	m.lastSample = msg.at

	if msg.snap != nil {
		m.snap = msg.snap
		m.history.Push(msg.snap)
		m.resolvePreferredIface()
	}

	if msg.procErr != nil {
		// Keep showing the previous table; the error is transient
		m.log.Warn("process refresh failed: %v", msg.procErr)
		m.setStatus(errors.Summary(msg.procErr))
	} else {
		m.entries = msg.entries
	}

	m.rebuildRows()
}

// resolvePreferredIface maps a configured interface name to its cycling
// index once real interfaces are known. Unknown names fall back to the
// aggregate view.
func (m *Model) resolvePreferredIface() {
	if m.preferredIface == "" || m.snap.Network == nil {
		return
	}
	for i, iface := range m.snap.Network.Interfaces {
		if iface.Name == m.preferredIface {
			m.ifaceIndex = i
			break
		}
	}
	m.preferredIface = ""
}

// rebuildRows recomputes the visible process rows from the raw entries
// and the current query, sort mode, and view shape.
func (m *Model) rebuildRows() {
	if m.treeView {
		m.rows = proc.Tree(m.entries, m.query)
	} else {
		filtered := proc.Filter(m.entries, m.query)
		ordered := make([]proc.Entry, len(filtered))
		copy(ordered, filtered)
		proc.Sort(ordered, m.sortMode)

		rows := make([]proc.TreeRow, len(ordered))
		for i, e := range ordered {
			rows[i] = proc.TreeRow{Entry: e}
		}
		m.rows = rows
	}

	m.restoreSelection()
}

// restoreSelection keeps the cursor on the same process across
// refreshes and re-sorts, falling back to a clamped index when the
// process is gone.
func (m *Model) restoreSelection() {
	if len(m.rows) == 0 {
		m.selected = 0
		m.selectedPID = 0
		return
	}

	if m.selectedPID != 0 {
		for i, r := range m.rows {
			if r.Entry.PID == m.selectedPID {
				m.selected = i
				return
			}
		}
	}

	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.selectedPID = m.rows[m.selected].Entry.PID
}

// moveSelection moves the cursor by delta rows, clamped to the table.
func (m *Model) moveSelection(delta int) {
	m.selectIndex(m.selected + delta)
}

// selectIndex moves the cursor to the given row, clamped to the table.
func (m *Model) selectIndex(i int) {
	if len(m.rows) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.rows) {
		i = len(m.rows) - 1
	}
	m.selected = i
	m.selectedPID = m.rows[i].Entry.PID
}

// selectedRow returns the row under the cursor.
func (m *Model) selectedRow() (proc.TreeRow, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return proc.TreeRow{}, false
	}
	return m.rows[m.selected], true
}

// setStatus shows a transient footer message.
func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusUntil = m.now().Add(statusTTL)
}

// statusLine returns the current transient message, or "" once expired.
func (m Model) statusLine() string {
	if m.status == "" || m.now().After(m.statusUntil) {
		return ""
	}
	return m.status
}

// SecondsSinceSample returns how many seconds have passed since the
// last completed sampling pass.
func (m Model) SecondsSinceSample() int {
	if m.lastSample.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.lastSample).Seconds())
}

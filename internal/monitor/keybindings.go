package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// Mode is the interaction state of the dashboard. At most one modal
// state is active at a time; a modal must resolve before another can
// open, so an in-flight kill confirmation cannot be abandoned by
// starting a search.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearching
	ModeConfirmKill
)

// String returns a human-readable label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeSearching:
		return "search"
	case ModeConfirmKill:
		return "confirm-kill"
	default:
		return "normal"
	}
}

// Key bindings as constants for consistency.
// Selection uses vim keys, so kill lives on x (and K, which cannot
// collide with k-as-up).
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "g"
	KeySelectLast  = "G"
	KeyHome        = "home"
	KeyEnd         = "end"
	KeyCycleSort   = "s"
	KeyToggleTree  = "t"
	KeyCycleIface  = "n"
	KeyCycleTheme  = "c"
	KeySaveTheme   = "C"
	KeySearch      = "/"
	KeyKill        = "x"
	KeyKillAlt     = "K"
	KeyConfirm     = "enter"
	KeyCancel      = "esc"
	KeyToggleHelp  = "?"
	KeyLeft        = "left"
	KeyRight       = "right"
	KeyTab         = "tab"
	KeyShiftTab    = "shift+tab"
)

// HandleKeyMsg processes keyboard input and returns updated model state and
// command. Returns true if the key was handled. Modal states take the key
// first; normal bindings only apply in ModeNormal.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// ctrl+c leaves from any state
	if key == KeyQuitAlt {
		m.quitting = true
		return true, tea.Quit
	}

	switch m.mode {
	case ModeSearching:
		return m.handleSearchKey(msg)
	case ModeConfirmKill:
		return m.handleConfirmKey(key)
	}

	// Help overlay: ? toggles, esc closes. While it is open only quit
	// passes through, so nothing can change under the overlay.
	if m.showHelp {
		switch key {
		case KeyToggleHelp, KeyCancel:
			m.showHelp = false
		case KeyQuit:
			m.quitting = true
			return true, tea.Quit
		}
		return true, nil
	}
	if key == KeyToggleHelp {
		m.showHelp = true
		return true, nil
	}

	switch key {
	case KeyQuit:
		m.quitting = true
		return true, tea.Quit

	case KeySelectPrev, KeySelectPrevK:
		m.moveSelection(-1)
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		m.moveSelection(1)
		return true, nil

	case KeySelectFirst, KeyHome:
		m.selectIndex(0)
		return true, nil

	case KeySelectLast, KeyEnd:
		m.selectIndex(len(m.rows) - 1)
		return true, nil

	case KeyCycleSort:
		m.sortMode = m.sortMode.Next()
		m.rebuildRows()
		return true, nil

	case KeyToggleTree:
		m.treeView = !m.treeView
		m.rebuildRows()
		return true, nil

	case KeyCycleIface:
		m.cycleInterface()
		return true, nil

	case KeyCycleTheme:
		m.cycleTheme()
		return true, nil

	case KeySaveTheme:
		m.saveCurrentTheme()
		return true, nil

	case KeySearch:
		m.enterSearch()
		return true, nil

	case KeyKill, KeyKillAlt:
		m.requestKill()
		return true, nil
	}

	return false, nil
}

// handleSearchKey routes keys while the search field is focused. Every
// key is consumed here, including q, which types a literal q.
func (m *Model) handleSearchKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case KeyCancel:
		m.query = m.prevQuery
		m.searchInput.SetValue(m.prevQuery)
		m.searchInput.Blur()
		m.mode = ModeNormal
		m.rebuildRows()
		m.setStatus("Search canceled")
		return true, nil

	case KeyConfirm:
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.searchInput.Blur()
		m.mode = ModeNormal
		m.rebuildRows()
		return true, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live preview: the table narrows while typing, esc restores
	m.query = m.searchInput.Value()
	m.rebuildRows()
	return true, cmd
}

// handleConfirmKey routes keys while the kill dialog is open. Unbound
// keys are swallowed so a stray keystroke cannot leak into the table.
func (m *Model) handleConfirmKey(key string) (bool, tea.Cmd) {
	switch key {
	case KeyQuit:
		m.quitting = true
		return true, tea.Quit

	case KeyLeft, KeyRight, KeyTab, KeyShiftTab:
		m.kill.yes = !m.kill.yes
		return true, nil

	case KeyCancel:
		m.mode = ModeNormal
		m.setStatus("Termination canceled")
		return true, nil

	case KeyConfirm:
		m.mode = ModeNormal
		if !m.kill.yes {
			m.setStatus("Termination canceled")
			return true, nil
		}
		// Exactly one signal per confirmed request; the result becomes
		// a status message either way, never a retry.
		if err := m.terminate(m.kill.pid); err != nil {
			m.setStatus(errors.Summary(err))
		} else {
			m.setStatus(fmt.Sprintf("SIGTERM sent to %s (%d)", m.kill.name, m.kill.pid))
		}
		return true, nil
	}

	return true, nil
}

// enterSearch opens the search field, remembering the committed query
// so esc can restore it.
func (m *Model) enterSearch() {
	m.prevQuery = m.query
	m.searchInput.SetValue(m.query)
	m.searchInput.CursorEnd()
	m.searchInput.Focus()
	m.mode = ModeSearching
}

// requestKill opens the confirmation dialog for the selected process.
// Without a selection it is a no-op apart from a status hint.
func (m *Model) requestKill() {
	row, ok := m.selectedRow()
	if !ok {
		m.setStatus("No process selected")
		return
	}
	m.kill = killTarget{
		pid:  row.Entry.PID,
		name: row.Entry.Name,
		yes:  true,
	}
	m.mode = ModeConfirmKill
}

// cycleTheme switches to the next palette and reports it.
func (m *Model) cycleTheme() {
	m.themeIndex = (m.themeIndex + 1) % len(Themes)
	SetTheme(Themes[m.themeIndex])
	m.setStatus("Theme: " + Themes[m.themeIndex].Name)
}

// saveCurrentTheme persists the active theme name through the config
// collaborator.
func (m *Model) saveCurrentTheme() {
	if m.saveTheme == nil {
		m.setStatus("No config to save to")
		return
	}
	if err := m.saveTheme(Themes[m.themeIndex].Name); err != nil {
		m.setStatus(errors.Summary(err))
		return
	}
	m.setStatus("Theme saved")
}

// cycleInterface steps the network panel through aggregate (-1) and
// each interface of the latest snapshot, wrapping back to aggregate.
func (m *Model) cycleInterface() {
	if m.snap == nil || m.snap.Network == nil || len(m.snap.Network.Interfaces) == 0 {
		m.ifaceIndex = -1
		return
	}
	m.ifaceIndex++
	if m.ifaceIndex >= len(m.snap.Network.Interfaces) {
		m.ifaceIndex = -1
	}
}

// Package monitor implements the live terminal dashboard.
//
// The dashboard shows CPU, memory, GPU, network, and disk telemetry for
// the local host alongside a sortable, filterable process table, with
// color-coded thresholds and a layout that adapts to terminal size.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm
// Architecture (Model-Update-View pattern):
//
//   - Model: Holds dashboard state (snapshot, process rows, selection, mode)
//   - Update: Processes messages (keystrokes, tick events, completed samples)
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// The dashboard operates on a tick-based sampling cycle:
//
//  1. tickMsg fires at the configured interval (default 1s)
//  2. sampleCmd() collects telemetry and refreshes the process table
//     off the program goroutine
//  3. sampleMsg arrives with the results, updating Model state and the
//     history rings
//  4. View() re-renders the dashboard with new data
//
// A tick that arrives while a sample is still in flight is skipped
// rather than queued, so a slow source can never make passes pile up.
// Rendering continues on every message regardless.
//
// # Interaction Modes
//
// Keystrokes are interpreted through a small mode machine defined in
// keybindings.go:
//
//	ModeNormal      - Navigation, sorting, view toggles
//	ModeSearching   - Keystrokes edit the filter query
//	ModeConfirmKill - A termination dialog holds the keyboard
//
// Only one dialog can be open at a time, and quitting works from every
// mode. Confirming a termination sends exactly one signal; whatever the
// outcome, the dialog closes and the result shows as a transient
// footer status.
//
// # History and Sparklines
//
// The metrics.History type stores recent values in ring buffers for
// sparkline rendering: CPU, memory, and GPU percentages, plus network
// throughput both aggregated and per interface. Cards fall back to a
// gradient bar until a series has at least two points.
package monitor

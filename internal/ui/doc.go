// Package ui holds the shared palette and status symbols for vitals'
// plain CLI output (doctor reports, init messages). The full-screen
// dashboard has its own themed styles in internal/monitor; this package
// stays ANSI-coded so command output degrades cleanly on basic terminals.
package ui

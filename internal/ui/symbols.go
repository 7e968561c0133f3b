package ui

// Unicode symbols for check and status output.
const (
	SymbolPass = "✓" // Source available, check passed
	SymbolWarn = "⚠" // Optional source missing or degraded
	SymbolFail = "✗" // Required source broken
)

package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is one named color palette. Every style in the package is
// derived from the active theme, so swapping it restyles the whole
// dashboard on the next render.
type Theme struct {
	Name string

	Border  lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
	Muted   lipgloss.Color

	Accent    lipgloss.Color
	AccentAlt lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	Graph lipgloss.Color
}

// Themes is the built-in palette set, in cycling order. Graphite is
// the default.
var Themes = []Theme{
	{
		Name:      "graphite",
		Border:    lipgloss.Color("#3A3A3A"),
		Text:      lipgloss.Color("#E4E4E4"),
		TextDim:   lipgloss.Color("#A8A8A8"),
		Muted:     lipgloss.Color("#6C6C6C"),
		Accent:    lipgloss.Color("#5FAFFF"),
		AccentAlt: lipgloss.Color("#87D7FF"),
		Healthy:   lipgloss.Color("#87D787"),
		Warning:   lipgloss.Color("#FFD75F"),
		Critical:  lipgloss.Color("#FF5F5F"),
		Graph:     lipgloss.Color("#5FAFFF"),
	},
	{
		Name:      "midnight",
		Border:    lipgloss.Color("#1F2A44"),
		Text:      lipgloss.Color("#DCE3F4"),
		TextDim:   lipgloss.Color("#8B9BC4"),
		Muted:     lipgloss.Color("#54618C"),
		Accent:    lipgloss.Color("#7AA2F7"),
		AccentAlt: lipgloss.Color("#BB9AF7"),
		Healthy:   lipgloss.Color("#9ECE6A"),
		Warning:   lipgloss.Color("#E0AF68"),
		Critical:  lipgloss.Color("#F7768E"),
		Graph:     lipgloss.Color("#7DCFFF"),
	},
	{
		Name:      "nord",
		Border:    lipgloss.Color("#434C5E"),
		Text:      lipgloss.Color("#ECEFF4"),
		TextDim:   lipgloss.Color("#D8DEE9"),
		Muted:     lipgloss.Color("#4C566A"),
		Accent:    lipgloss.Color("#88C0D0"),
		AccentAlt: lipgloss.Color("#81A1C1"),
		Healthy:   lipgloss.Color("#A3BE8C"),
		Warning:   lipgloss.Color("#EBCB8B"),
		Critical:  lipgloss.Color("#BF616A"),
		Graph:     lipgloss.Color("#88C0D0"),
	},
	{
		Name:      "solarized",
		Border:    lipgloss.Color("#073642"),
		Text:      lipgloss.Color("#FDF6E3"),
		TextDim:   lipgloss.Color("#93A1A1"),
		Muted:     lipgloss.Color("#586E75"),
		Accent:    lipgloss.Color("#268BD2"),
		AccentAlt: lipgloss.Color("#2AA198"),
		Healthy:   lipgloss.Color("#859900"),
		Warning:   lipgloss.Color("#B58900"),
		Critical:  lipgloss.Color("#DC322F"),
		Graph:     lipgloss.Color("#2AA198"),
	},
	{
		Name:      "gruvbox",
		Border:    lipgloss.Color("#504945"),
		Text:      lipgloss.Color("#EBDBB2"),
		TextDim:   lipgloss.Color("#BDAE93"),
		Muted:     lipgloss.Color("#7C6F64"),
		Accent:    lipgloss.Color("#FE8019"),
		AccentAlt: lipgloss.Color("#FABD2F"),
		Healthy:   lipgloss.Color("#B8BB26"),
		Warning:   lipgloss.Color("#FABD2F"),
		Critical:  lipgloss.Color("#FB4934"),
		Graph:     lipgloss.Color("#83A598"),
	},
	{
		Name:      "neon",
		Border:    lipgloss.Color("#2A2A4A"),
		Text:      lipgloss.Color("#FFFFFF"),
		TextDim:   lipgloss.Color("#B4B4D0"),
		Muted:     lipgloss.Color("#6B6B8D"),
		Accent:    lipgloss.Color("#FF2E97"),
		AccentAlt: lipgloss.Color("#BF40FF"),
		Healthy:   lipgloss.Color("#39FF14"),
		Warning:   lipgloss.Color("#FFAA00"),
		Critical:  lipgloss.Color("#FF0055"),
		Graph:     lipgloss.Color("#00FFFF"),
	},
}

// DefaultTheme is the palette used until config says otherwise.
var DefaultTheme = Themes[0]

// ThemeIndex returns the position of the named theme in the cycling
// order, or -1 if the name is unknown. Matching ignores case so config
// values like "Nord" still resolve.
func ThemeIndex(name string) int {
	name = strings.ToLower(name)
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// ThemeNames lists the available theme names in cycling order.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

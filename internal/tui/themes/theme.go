// Package themes holds the color palettes of the interactive views.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Selected   lipgloss.Style
	Overspent  lipgloss.Style
	Muted      lipgloss.Style
	StatusBar  lipgloss.Style
	ErrorText  lipgloss.Style
	BarStart   string
	BarEnd     string
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:    lipgloss.Color("#2a9d8f"),
	Foreground: lipgloss.Color("#fafafa"),
	Border:     lipgloss.Color("#404040"),
	BarStart:   "#2a9d8f",
	BarEnd:     "#e9c46a",

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#2a9d8f")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Overspent: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	StatusBar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		MarginTop(1),
	ErrorText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
}

// Mono renders without colors, for dumb terminals.
var Mono = Theme{
	BarStart:  "#ffffff",
	BarEnd:    "#ffffff",
	Title:     lipgloss.NewStyle().Bold(true).MarginBottom(1),
	Subtitle:  lipgloss.NewStyle(),
	Normal:    lipgloss.NewStyle(),
	Selected:  lipgloss.NewStyle().Reverse(true),
	Overspent: lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Faint(true),
	StatusBar: lipgloss.NewStyle().MarginTop(1),
	ErrorText: lipgloss.NewStyle().Bold(true),
}

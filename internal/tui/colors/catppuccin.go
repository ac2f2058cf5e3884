package colors

import "github.com/charmbracelet/lipgloss"

// Catppuccin Macchiato color palette
var (
	// Base colors
	Base     = lipgloss.Color("#24273a") // Dark background
	Surface0 = lipgloss.Color("#363a4f") // Surface colors
	Surface1 = lipgloss.Color("#494d64")
	Surface2 = lipgloss.Color("#5b6078")
	Overlay0 = lipgloss.Color("#6e738d") // Overlay colors
	Subtext0 = lipgloss.Color("#a5adcb") // Text colors
	Subtext1 = lipgloss.Color("#b8c0e0")
	Text     = lipgloss.Color("#cad3f5") // Main text

	// Accent colors
	Blue   = lipgloss.Color("#8aadf4") // Blue
	Sky    = lipgloss.Color("#91d7e3") // Sky blue
	Green  = lipgloss.Color("#a6da95") // Green
	Yellow = lipgloss.Color("#eed49f") // Yellow
	Peach  = lipgloss.Color("#f5a97f") // Orange
	Red    = lipgloss.Color("#ed8796") // Red
	Mauve  = lipgloss.Color("#c6a0f6") // Purple
)

package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colGray     = lipgloss.Color("#646464")
	colDirBlue  = lipgloss.Color("#5F87D7")
	colSelected = lipgloss.Color("#C8DCFF")
	colDanger   = lipgloss.Color("#DC3545")
	colSuccess  = lipgloss.Color("#28A745")
	colAccent   = lipgloss.Color("#4285F4")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colAccent).
			Padding(0, 1)

	rowStyle    = lipgloss.NewStyle()
	dirRowStyle = lipgloss.NewStyle().Foreground(colDirBlue).Bold(true)
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(colSelected)
	markStyle = lipgloss.NewStyle().Foreground(colAccent).Bold(true)

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colGray).
			Padding(0, 1)
	badgeStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colGray).
			Align(lipgloss.Center, lipgloss.Center)

	statusStyle  = lipgloss.NewStyle().Foreground(colGray)
	errorStyle   = lipgloss.NewStyle().Foreground(colDanger)
	successStyle = lipgloss.NewStyle().Foreground(colSuccess)
	promptStyle  = lipgloss.NewStyle().Foreground(colAccent).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(colGray).Italic(true)
)

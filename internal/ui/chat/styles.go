package chat

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 28

var (
	accent = lipgloss.Color("#7C3AED")
	muted  = lipgloss.Color("#6B7280")

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(muted)

	brandStyle         = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	sessionStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))
	activeSessionStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	userLineStyle      = lipgloss.NewStyle().Foreground(muted).MarginTop(1)

	youLabel     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	advisorLabel = lipgloss.NewStyle().Bold(true).Foreground(accent)
	statusStyle  = lipgloss.NewStyle().Foreground(muted).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

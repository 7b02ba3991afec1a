package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("62")
	ColorSuccess = lipgloss.Color("42")
	ColorDanger  = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("241")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	QuestionStyle = lipgloss.NewStyle().
			Bold(true)

	EligibleStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	IneligibleStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)
)

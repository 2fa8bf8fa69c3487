package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("1")).
		Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("14")) // Cyan

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")) // Yellow

	buttonEnabledStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("9")).
		Padding(0, 2)

	buttonDisabledStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Background(lipgloss.Color("0")).
		Padding(0, 2)

	toggleOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	toggleOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	frameStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("1"))
)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Bold(true)
	speakerStyle = lipgloss.NewStyle().Bold(true)
	emotionStyle = lipgloss.NewStyle().Faint(true).Italic(true)
)

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("62")
	colorBorder  = lipgloss.Color("240")
	colorMuted   = lipgloss.Color("245")
	colorError   = lipgloss.Color("196")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
)

type styleSet struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Muted     lipgloss.Style
	Spinner   lipgloss.Style
	Modal     lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Info      lipgloss.Style
}

var styles = styleSet{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(colorPrimary).Padding(0, 1),
	Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted),
	ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(colorPrimary),
	Muted:     lipgloss.NewStyle().Foreground(colorMuted),
	Spinner:   lipgloss.NewStyle().Foreground(colorPrimary),
	Modal:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1),
	Help:      lipgloss.NewStyle().Foreground(colorMuted),
	Error:     lipgloss.NewStyle().Bold(true).Foreground(colorError),
	Success:   lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	Info:      lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("230")).
		Background(colorPrimary).
		Bold(false)
	return s
}

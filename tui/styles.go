package tui

import (
	"cofoundr/types"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
const (
	colorPrimary   = "#7D56F4"
	colorSuccess   = "#04B575"
	colorError     = "#FF5F87"
	colorLoading   = "#F5A623"
	colorInfo      = "#626262"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#874BFD"
)

// Styles for the TUI application
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorLoading))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(1, 2)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ActiveTabStyle = TabStyle.
			Bold(true).
			Underline(true)

	ToastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorHighlight)).
				Background(lipgloss.Color(colorSuccess)).
				Padding(0, 1)

	ToastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorError)).
			Padding(0, 1)

	BarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimary))
)

// statusStyle returns the tracker style for a step status
func statusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusDone:
		return StatusStyle
	case types.StatusError:
		return ErrorStyle
	case types.StatusLoading:
		return LoadingStyle
	default:
		return InfoStyle
	}
}

// statusIcon returns the tracker marker for a step status
func statusIcon(s types.Status) string {
	switch s {
	case types.StatusDone:
		return "✓"
	case types.StatusError:
		return "✗"
	case types.StatusLoading:
		return "…"
	default:
		return "○"
	}
}

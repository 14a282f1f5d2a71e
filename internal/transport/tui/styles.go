package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bravo68web/confdash/internal/domain/models"
)

var (
	colorAccent  = lipgloss.Color("39")
	colorMuted   = lipgloss.Color("243")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")
	colorAdded   = lipgloss.Color("34")
	colorRemoved = lipgloss.Color("160")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	crumbStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	actionStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	dangerStyle   = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	emptyStyle    = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
	dangerModalStyle = modalStyle.BorderForeground(colorError)

	addedStyle   = lipgloss.NewStyle().Foreground(colorAdded)
	removedStyle = lipgloss.NewStyle().Foreground(colorRemoved)
	lineNoStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

func severityStyle(s models.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case models.SeveritySuccess:
		return base.Foreground(colorSuccess)
	case models.SeverityWarning:
		return base.Foreground(colorWarning)
	case models.SeverityError:
		return base.Foreground(colorError)
	default:
		return base.Foreground(colorAccent)
	}
}

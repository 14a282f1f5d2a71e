package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bravo68web/confdash/internal/application/dialog"
)

// renderModal draws a bordered dialog centered in the body area
func renderModal(width, height int, title string, danger bool, state dialog.State, lines ...string) string {
	style := modalStyle
	if danger {
		style = dangerModalStyle
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	for _, l := range lines {
		b.WriteString("\n\n")
		b.WriteString(l)
	}
	if state == dialog.Submitting {
		b.WriteString("\n\n" + emptyStyle.Render("Working…"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, style.Render(b.String()))
}

func hint(text string) string {
	return subtitleStyle.Render(text)
}

func fieldError(msg string) string {
	if msg == "" {
		return ""
	}
	return dangerStyle.Render(msg)
}

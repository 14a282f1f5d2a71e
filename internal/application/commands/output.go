package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/view"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

// consoleNotifier prints success and info notifications to stderr.
// Failures come back as errors and are printed once by main.
type consoleNotifier struct {
	w io.Writer
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

// Notify implements service.Notifier
func (c *consoleNotifier) Notify(n models.Notification) {
	var mark string
	switch n.Severity {
	case models.SeveritySuccess:
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	case models.SeverityInfo:
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("•")
	default:
		return
	}
	fmt.Fprintf(c.w, "%s %s\n", mark, n.Message)
}

// ErrorMessage renders a failure for stderr
func ErrorMessage(msg string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("✗") + " " + msg
}

func (r *CommandRegistry) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *CommandRegistry) printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, mutedStyle.Render("(none)"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(r.out, t.Render())
}

// printItems renders list items as a two column table, or as JSON
func (r *CommandRegistry) printItems(cmd *cli.Command, headers []string, items []view.ListItem, raw any) error {
	if cmd.Bool("json") {
		return r.printJSON(raw)
	}
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.Title(), it.Subtitle()}
	}
	r.printTable(headers, rows)
	return nil
}

func (r *CommandRegistry) printCommits(cmd *cli.Command, commits []models.Commit) error {
	if cmd.Bool("json") {
		return r.printJSON(commits)
	}
	rows := make([][]string, len(commits))
	for i, c := range commits {
		rows[i] = []string{c.ShortID(), c.Message, c.Author, c.Date}
	}
	r.printTable([]string{"COMMIT", "MESSAGE", "AUTHOR", "DATE"}, rows)
	return nil
}

func (r *CommandRegistry) printDiff(cmd *cli.Command, text string) error {
	rows := diff.Parse(text)
	if cmd.Bool("json") {
		return r.printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(r.out, mutedStyle.Render("No changes"))
		return nil
	}
	added, removed := diff.Stats(rows)
	fmt.Fprintln(r.out, mutedStyle.Render(fmt.Sprintf("+%d -%d", added, removed)))
	for _, row := range rows {
		line := row.Prefix() + row.Content
		switch row.Type {
		case diff.Added:
			line = addedStyle.Render(line)
		case diff.Removed:
			line = removedStyle.Render(line)
		}
		fmt.Fprintf(r.out, "%s %s %s\n", mutedStyle.Render(lineNo(row.OldLine)), mutedStyle.Render(lineNo(row.NewLine)), line)
	}
	return nil
}

func lineNo(n int) string {
	if n == 0 {
		return strings.Repeat(" ", 4)
	}
	return fmt.Sprintf("%4d", n)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bravo68web/confdash/internal/transport/view"
)

// listView renders view.ListItems with a cursor and a search box
type listView struct {
	env      *env
	items    []view.ListItem
	shown    []view.ListItem
	cursor   int
	offset   int
	search   textinput.Model
	empty    string
	loading  bool
	loadErr  error
	subtitle bool
}

func newListView(e *env, empty string) listView {
	s := newInput("Search…", 100)
	s.Prompt = "/ "
	return listView{env: e, empty: empty, search: s, subtitle: true, loading: true}
}

func (l *listView) setItems(items []view.ListItem) {
	l.items = items
	l.loading = false
	l.loadErr = nil
	l.apply()
}

func (l *listView) fail(err error) {
	l.loading = false
	l.loadErr = err
	l.items = nil
	l.apply()
}

func (l *listView) apply() {
	l.shown = view.Search(l.items, l.search.Value())
	if l.cursor >= len(l.shown) {
		l.cursor = len(l.shown) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *listView) selected() (view.ListItem, bool) {
	if l.cursor < 0 || l.cursor >= len(l.shown) {
		return nil, false
	}
	return l.shown[l.cursor], true
}

func (l *listView) move(delta int) {
	l.cursor += delta
	if l.cursor >= len(l.shown) {
		l.cursor = len(l.shown) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *listView) searching() bool {
	return l.search.Focused()
}

func (l *listView) focusSearch() tea.Cmd {
	return l.search.Focus()
}

// clearSearch empties the query first and blurs on the second call.
// It reports false once there is nothing left to clear.
func (l *listView) clearSearch() bool {
	if l.search.Value() != "" {
		l.search.SetValue("")
		l.apply()
		return true
	}
	if l.search.Focused() {
		l.search.Blur()
		return true
	}
	return false
}

// update handles navigation and search typing. It reports whether the
// message was consumed.
func (l *listView) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch act {
	case ActionUp:
		l.move(-1)
		return nil, true
	case ActionDown:
		l.move(1)
		return nil, true
	case ActionFocusSearch:
		return l.focusSearch(), true
	case ActionEscape:
		return nil, l.clearSearch()
	case ActionOpen:
		l.search.Blur()
		return nil, false
	}
	if l.search.Focused() {
		if km, ok := msg.(tea.KeyMsg); ok && act == ActionNone {
			var cmd tea.Cmd
			l.search, cmd = l.search.Update(km)
			l.apply()
			return cmd, true
		}
	}
	return nil, false
}

func (l *listView) view(width, height int) string {
	var b strings.Builder
	if l.search.Focused() || l.search.Value() != "" {
		b.WriteString(l.search.View())
		b.WriteString("\n\n")
		height -= 2
	}
	switch {
	case l.loading:
		b.WriteString(l.env.loading("Loading…"))
		return b.String()
	case l.loadErr != nil:
		b.WriteString(dangerStyle.Render(l.loadErr.Error()))
		return b.String()
	case len(l.shown) == 0 && len(l.items) > 0:
		b.WriteString(emptyStyle.Render(fmt.Sprintf("No results for %q", strings.TrimSpace(l.search.Value()))))
		return b.String()
	case len(l.shown) == 0:
		b.WriteString(emptyStyle.Render(l.empty))
		return b.String()
	}

	rows := height
	if l.subtitle {
		rows = height / 2
	}
	if rows < 1 {
		rows = 1
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
	end := min(l.offset+rows, len(l.shown))
	for i := l.offset; i < end; i++ {
		b.WriteString(renderItem(l.shown[i], i == l.cursor, l.subtitle, width))
	}
	return b.String()
}

func renderItem(it view.ListItem, selected, subtitle bool, width int) string {
	marker := "  "
	title := it.Title()
	if selected {
		marker = "› "
		title = selectedStyle.Render(title)
	}
	line := marker + title + "\n"
	if subtitle && it.Subtitle() != "" {
		sub := it.Subtitle()
		if width > 6 && len(sub) > width-4 {
			sub = sub[:width-5] + "…"
		}
		line += "    " + subtitleStyle.Render(sub) + "\n"
	}
	return line
}

// renderHeader draws a view.Header: crumbs, title, subtitle and the actions
// that have a key binding
func renderHeader(h view.Header) string {
	var b strings.Builder
	if len(h.Crumbs) > 0 {
		names := make([]string, len(h.Crumbs))
		for i, c := range h.Crumbs {
			names[i] = c.Name
		}
		b.WriteString(crumbStyle.Render(strings.Join(names, " / ")))
		b.WriteString("\n")
	}
	b.WriteString(titleStyle.Render(h.Title))
	if h.Subtitle != "" {
		b.WriteString("  " + subtitleStyle.Render(h.Subtitle))
	}
	var acts []string
	for _, a := range h.Actions {
		if a.Key == "" {
			continue
		}
		label := "[" + a.Key + "] " + a.Label
		if a.Danger {
			acts = append(acts, dangerStyle.Render(label))
		} else {
			acts = append(acts, actionStyle.Render(label))
		}
	}
	if len(acts) > 0 {
		b.WriteString("\n" + strings.Join(acts, "  "))
	}
	return b.String()
}

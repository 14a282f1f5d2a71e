package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type feedKind int

const (
	feedEvents feedKind = iota
	feedNotify
)

type feedLoadedMsg struct {
	items []view.ListItem
	err   error
}

// feedScreen lists the events or notification deliveries of a namespace
type feedScreen struct {
	env       *env
	namespace string
	kind      feedKind
	list      listView
}

func newFeedScreen(e *env, namespace string, kind feedKind) *feedScreen {
	empty := "No events yet."
	if kind == feedNotify {
		empty = "No notifications have been sent."
	}
	return &feedScreen{env: e, namespace: namespace, kind: kind, list: newListView(e, empty)}
}

func (s *feedScreen) title() string {
	if s.kind == feedNotify {
		return "Notifications"
	}
	return "Events"
}

func (s *feedScreen) init() tea.Cmd {
	ctx, api, ns, kind := s.env.ctx, s.env.api, s.namespace, s.kind
	return func() tea.Msg {
		items, err := loadFeed(ctx, api, ns, kind)
		return feedLoadedMsg{items, err}
	}
}

func loadFeed(ctx context.Context, api *service.APIService, ns string, kind feedKind) ([]view.ListItem, error) {
	if kind == feedNotify {
		recs, err := api.ListNotifications(ctx, ns)
		if err != nil {
			return nil, err
		}
		items := make([]view.NotifyItem, len(recs))
		for i, r := range recs {
			items[i] = view.NotifyItem(r)
		}
		return view.Items(items), nil
	}
	events, err := api.ListEvents(ctx, ns)
	if err != nil {
		return nil, err
	}
	items := make([]view.EventItem, len(events))
	for i, ev := range events {
		items[i] = view.EventItem(ev)
	}
	return view.Items(items), nil
}

func (s *feedScreen) typing() bool { return s.list.searching() }

func (s *feedScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if m, ok := msg.(feedLoadedMsg); ok {
		if m.err != nil {
			s.list.fail(m.err)
		} else {
			s.list.setItems(m.items)
		}
		return nil, true
	}
	if cmd, ok := s.list.update(msg, act); ok {
		return cmd, true
	}
	switch act {
	case ActionRefresh:
		s.list.loading = true
		return s.init(), true
	case ActionOpen:
		return nil, true
	}
	if cmd := namespaceShortcut(s.env, s.namespace, act); cmd != nil {
		return cmd, true
	}
	return nil, false
}

func (s *feedScreen) view(width, height int) string {
	head := renderHeader(view.Header{
		Title:    s.title(),
		Subtitle: fmt.Sprintf("%d entries", len(s.list.items)),
		Crumbs:   []tree.Crumb{{Name: s.namespace}},
		Actions:  []view.Action{{Label: "refresh", Key: "r"}, {Label: "search", Key: "ctrl+k"}},
	})
	return head + "\n\n" + s.list.view(width, height-countLines(head)-2)
}

type docsLoadedMsg struct{ docs *service.Docs }

// docsScreen shows the config-server README
type docsScreen struct {
	env  *env
	docs *service.Docs
	body viewport.Model
	wrap int
}

func newDocsScreen(e *env) *docsScreen {
	return &docsScreen{env: e, body: viewport.New(80, 20)}
}

func (s *docsScreen) init() tea.Cmd {
	if s.docs != nil || s.env.docs == nil {
		return nil
	}
	ctx, docs := s.env.ctx, s.env.docs
	return func() tea.Msg {
		return docsLoadedMsg{docs.Get(ctx)}
	}
}

func (s *docsScreen) typing() bool { return false }

func (s *docsScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if m, ok := msg.(docsLoadedMsg); ok {
		s.docs = m.docs
		s.wrap = 0
		return nil, true
	}
	if act == ActionDocs || act == ActionOpen {
		return nil, true
	}
	if km, ok := msg.(tea.KeyMsg); ok && (act == ActionNone || act == ActionUp || act == ActionDown) {
		var cmd tea.Cmd
		s.body, cmd = s.body.Update(km)
		return cmd, true
	}
	return nil, false
}

func (s *docsScreen) view(width, height int) string {
	h := view.Header{Title: "Documentation"}
	if s.docs != nil {
		h.Subtitle = s.docs.Source
		if s.docs.Fallback {
			h.Subtitle = "offline copy"
		}
	}
	head := renderHeader(h)
	switch {
	case s.env.docs == nil:
		return head + "\n\n" + emptyStyle.Render("Documentation is not configured.")
	case s.docs == nil:
		return head + "\n\n" + s.env.loading("Loading documentation…")
	}
	if s.wrap != width {
		s.wrap = width
		s.body.SetContent(lipgloss.NewStyle().Width(width).Render(s.docs.Markdown))
	}
	s.body.Width = width
	s.body.Height = max(height-countLines(head)-2, 3)
	return head + "\n\n" + s.body.View()
}

// errorScreen replaces the stack after a screen panicked
type errorScreen struct {
	env *env
	err error
}

func newErrorScreen(e *env, err error) *errorScreen {
	return &errorScreen{env: e, err: err}
}

func (s *errorScreen) init() tea.Cmd { return nil }

func (s *errorScreen) typing() bool { return false }

func (s *errorScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch act {
	case ActionOpen, ActionBack, ActionEscape, ActionRefresh:
		if s.env.api == nil {
			return nil, true
		}
		return replace(newNamespacesScreen(s.env)), true
	}
	return nil, false
}

func (s *errorScreen) view(width, height int) string {
	body := titleStyle.Render("Something went wrong") + "\n\n" +
		dangerStyle.Render(apperrors.Message(s.err)) + "\n\n" +
		hint("enter to return to namespaces · ctrl+c to quit")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dangerModalStyle.Render(body))
}

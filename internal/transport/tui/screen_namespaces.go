package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bravo68web/confdash/internal/application/dialog"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/transport/view"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type (
	nsLoadedMsg struct{ err error }
	nsDoneMsg   struct{ ok bool }
)

type namespacesScreen struct {
	env   *env
	names *service.NamespaceList
	list  listView

	create      *dialog.Dialog[string]
	createInput textinput.Model
	createErr   string
	remove      *dialog.Dialog[string]
}

func newNamespacesScreen(e *env) *namespacesScreen {
	in := newInput("my-namespace", 100)
	in.Prompt = "Name: "
	return &namespacesScreen{
		env:         e,
		names:       service.NewNamespaceList(e.api),
		list:        newListView(e, "No namespaces yet. Press n to create one."),
		create:      dialog.New(""),
		createInput: in,
		remove:      dialog.New(""),
	}
}

func (s *namespacesScreen) init() tea.Cmd {
	ctx, names := s.env.ctx, s.names
	return func() tea.Msg {
		return nsLoadedMsg{names.Refresh(ctx)}
	}
}

func (s *namespacesScreen) typing() bool {
	return s.create.IsOpen() || s.list.searching()
}

func (s *namespacesScreen) sync(err error) {
	if err != nil {
		s.list.fail(err)
		return
	}
	s.list.setItems(view.Items(namespaceItems(s.names.Names())))
}

func namespaceItems(names []string) []view.NamespaceItem {
	out := make([]view.NamespaceItem, len(names))
	for i, n := range names {
		out[i] = view.NamespaceItem(n)
	}
	return out
}

func (s *namespacesScreen) selected() (string, bool) {
	it, ok := s.list.selected()
	if !ok {
		return "", false
	}
	return it.Title(), true
}

func (s *namespacesScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch m := msg.(type) {
	case nsLoadedMsg:
		s.sync(m.err)
		return nil, true
	case nsDoneMsg:
		if m.ok {
			s.createInput.SetValue("")
			s.createErr = ""
			s.sync(s.names.Err())
		}
		return nil, true
	}

	switch {
	case s.create.IsOpen():
		return s.updateCreate(msg, act)
	case s.remove.IsOpen():
		return s.updateRemove(act)
	}

	if cmd, ok := s.list.update(msg, act); ok {
		return cmd, true
	}

	ns, hasSel := s.selected()
	switch act {
	case ActionOpen:
		if hasSel {
			return push(newFilesScreen(s.env, ns, "")), true
		}
	case ActionNew:
		s.create.Open()
		s.createInput.SetValue("")
		s.createErr = ""
		return s.createInput.Focus(), true
	case ActionDelete:
		if hasSel {
			s.remove.OpenWith(ns)
		}
		return nil, true
	case ActionRefresh:
		s.list.loading = true
		return s.init(), true
	case ActionVault:
		if hasSel {
			return push(newVaultScreen(s.env, ns)), true
		}
	case ActionEvents:
		if hasSel {
			return push(newFeedScreen(s.env, ns, feedEvents)), true
		}
	case ActionNotify:
		if hasSel {
			return push(newFeedScreen(s.env, ns, feedNotify)), true
		}
	case ActionExport:
		if hasSel {
			return exportCmd(s.env, ns), true
		}
	case ActionBack, ActionEscape:
		// root screen
		return nil, true
	}
	return nil, false
}

func (s *namespacesScreen) updateCreate(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if s.create.State() == dialog.Submitting {
		return nil, true
	}
	switch act {
	case ActionEscape:
		s.create.Close()
		s.createInput.Blur()
		return nil, true
	case ActionOpen:
		name := strings.TrimSpace(s.createInput.Value())
		if err := s.env.api.Validator().Namespace(name); err != nil {
			s.createErr = apperrors.Message(err)
			return nil, true
		}
		s.create.Set(name)
		ctx, d, names := s.env.ctx, s.create, s.names
		return func() tea.Msg {
			return nsDoneMsg{d.HandleSubmit(ctx, names.Create)}
		}, true
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	var cmd tea.Cmd
	s.createInput, cmd = s.createInput.Update(km)
	s.create.Set(s.createInput.Value())
	s.createErr = ""
	if v := strings.TrimSpace(s.createInput.Value()); v != "" {
		if err := s.env.api.Validator().Namespace(v); err != nil {
			s.createErr = apperrors.Message(err)
		}
	}
	return cmd, true
}

func (s *namespacesScreen) updateRemove(act Action) (tea.Cmd, bool) {
	if s.remove.State() == dialog.Submitting {
		return nil, true
	}
	switch act {
	case ActionEscape, ActionBack:
		s.remove.Close()
	case ActionConfirm, ActionOpen:
		ctx, d, names := s.env.ctx, s.remove, s.names
		return func() tea.Msg {
			return nsDoneMsg{d.HandleSubmit(ctx, names.Delete)}
		}, true
	}
	return nil, true
}

func (s *namespacesScreen) header() view.Header {
	return view.Header{
		Title:    "Namespaces",
		Subtitle: fmt.Sprintf("%d total", len(s.list.items)),
		Actions: []view.Action{
			{Label: "open", Key: "enter"},
			{Label: "new", Key: "n"},
			{Label: "delete", Key: "d", Danger: true},
			{Label: "vault", Key: "v"},
			{Label: "events", Key: "E"},
			{Label: "export", Key: "x"},
			{Label: "docs", Key: "?"},
		},
	}
}

func (s *namespacesScreen) view(width, height int) string {
	switch {
	case s.create.IsOpen():
		return renderModal(width, height, "New namespace", false, s.create.State(),
			s.createInput.View(),
			fieldError(s.createErr),
			hint("letters, numbers, hyphens and underscores · enter to create · esc to cancel"))
	case s.remove.IsOpen():
		return renderModal(width, height, "Delete namespace", true, s.remove.State(),
			fmt.Sprintf("Delete %q and every file and secret in it?", s.remove.Data()),
			hint("y to delete · esc to cancel"))
	}
	head := renderHeader(s.header())
	return head + "\n\n" + s.list.view(width, height-countLines(head)-2)
}

func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}

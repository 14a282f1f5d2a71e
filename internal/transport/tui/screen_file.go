package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type (
	fileLoadedMsg    struct{ err error }
	fileCommittedMsg struct{ err error }
)

type fileScreen struct {
	env    *env
	ref    models.FileRef
	editor *service.FileEditor

	loaded  bool
	loadErr error
	saving  bool

	body    viewport.Model
	area    textarea.Model
	message textinput.Model
}

func newFileScreen(e *env, ref models.FileRef) *fileScreen {
	ta := textarea.New()
	ta.KeyMap = EditorKeyMap()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	msg := newInput("Describe the change", 200)
	msg.Prompt = "Commit message: "
	return &fileScreen{
		env:     e,
		ref:     ref,
		editor:  service.NewFileEditor(e.api, ref, e.email),
		body:    viewport.New(80, 20),
		area:    ta,
		message: msg,
	}
}

func (s *fileScreen) init() tea.Cmd {
	if s.loaded {
		return nil
	}
	ctx, ed := s.env.ctx, s.editor
	return func() tea.Msg {
		return fileLoadedMsg{ed.Load(ctx)}
	}
}

func (s *fileScreen) typing() bool {
	switch s.editor.State().(type) {
	case service.Editing, service.Committing:
		return true
	}
	return false
}

func (s *fileScreen) showContent() {
	s.body.SetContent(numberLines(s.editor.Content()))
	s.body.GotoTop()
}

func (s *fileScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch m := msg.(type) {
	case fileLoadedMsg:
		s.loadErr = m.err
		s.loaded = m.err == nil
		if s.loaded {
			s.showContent()
		}
		return nil, true
	case fileCommittedMsg:
		s.saving = false
		if m.err == nil {
			s.message.SetValue("")
			s.message.Blur()
			s.showContent()
		}
		return nil, true
	}
	if !s.loaded {
		if act == ActionRefresh {
			s.loadErr = nil
			return s.init(), true
		}
		return nil, false
	}

	switch st := s.editor.State().(type) {
	case service.Viewing:
		return s.updateViewing(msg, act)
	case service.Editing:
		return s.updateEditing(msg, act, st)
	case service.Committing:
		return s.updateCommitting(msg, act)
	}
	return nil, false
}

func (s *fileScreen) updateViewing(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch act {
	case ActionEdit:
		if err := s.editor.StartEdit(); err != nil {
			s.env.status.Notify(notify.New(models.SeverityWarning, apperrors.Message(err)))
			return nil, true
		}
		s.area.SetValue(s.editor.Content())
		return s.area.Focus(), true
	case ActionHistory:
		return push(newFileHistoryScreen(s.env, s.ref)), true
	case ActionRefresh:
		s.loaded = false
		return s.init(), true
	case ActionNone, ActionUp, ActionDown:
		if km, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			s.body, cmd = s.body.Update(km)
			return cmd, true
		}
	}
	if cmd := namespaceShortcut(s.env, s.ref.Namespace, act); cmd != nil {
		return cmd, true
	}
	return nil, false
}

func (s *fileScreen) updateEditing(msg tea.Msg, act Action, st service.Editing) (tea.Cmd, bool) {
	switch act {
	case ActionEscape:
		s.area.Blur()
		s.editor.Cancel()
		s.showContent()
		if st.Dirty {
			s.env.status.Notify(notify.New(models.SeverityInfo, "Changes discarded"))
		}
		return nil, true
	case ActionCommit:
		if err := s.editor.BeginCommit(); err != nil {
			s.env.status.Notify(notify.New(models.SeverityWarning, apperrors.Message(err)))
			return nil, true
		}
		s.area.Blur()
		s.body.SetContent(renderRows(s.editor.Preview()))
		s.body.GotoTop()
		return s.message.Focus(), true
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(km)
	_ = s.editor.SetContent(s.area.Value())
	return cmd, true
}

func (s *fileScreen) updateCommitting(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if s.saving {
		return nil, true
	}
	switch act {
	case ActionEscape:
		s.message.Blur()
		s.editor.AbortCommit()
		return s.area.Focus(), true
	case ActionOpen, ActionCommit:
		message := strings.TrimSpace(s.message.Value())
		if err := s.env.api.Validator().CommitMessage(message); err != nil {
			s.env.status.Notify(notify.New(models.SeverityWarning, apperrors.Message(err)))
			return nil, true
		}
		s.saving = true
		ctx, ed := s.env.ctx, s.editor
		return func() tea.Msg {
			return fileCommittedMsg{ed.Commit(ctx, message)}
		}, true
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	var cmd tea.Cmd
	if act == ActionUp || act == ActionDown {
		s.body, cmd = s.body.Update(km)
		return cmd, true
	}
	s.message, cmd = s.message.Update(km)
	return cmd, true
}

func (s *fileScreen) header() view.Header {
	crumbs := []tree.Crumb{{Name: s.ref.Namespace}}
	crumbs = append(crumbs, tree.Breadcrumbs(s.ref.FullPath())...)
	h := view.Header{Title: s.ref.Name, Crumbs: crumbs}

	switch st := s.editor.State().(type) {
	case service.Viewing:
		if id := s.editor.CommitID(); id != "" {
			h.Subtitle = "at " + shortCommit(id)
		}
		h.Actions = []view.Action{
			{Label: "edit", Key: "e"},
			{Label: "history", Key: "H"},
			{Label: "reload", Key: "r"},
		}
	case service.Editing:
		h.Subtitle = "editing"
		if st.Dirty {
			h.Subtitle = "editing · modified"
		}
		h.Actions = []view.Action{
			{Label: "commit", Key: "ctrl+s"},
			{Label: "discard", Key: "esc", Danger: true},
		}
	case service.Committing:
		added, removed := diff.Stats(s.editor.Preview())
		h.Subtitle = fmt.Sprintf("committing · +%d -%d", added, removed)
		h.Actions = []view.Action{
			{Label: "commit", Key: "enter"},
			{Label: "back to editor", Key: "esc"},
		}
	}
	return h
}

func (s *fileScreen) view(width, height int) string {
	head := renderHeader(s.header())
	avail := height - countLines(head) - 2
	switch {
	case s.loadErr != nil:
		return head + "\n\n" + dangerStyle.Render(apperrors.Message(s.loadErr)) + "\n" + hint("r to retry")
	case !s.loaded:
		return head + "\n\n" + s.env.loading("Loading file…")
	}

	switch s.editor.State().(type) {
	case service.Editing:
		s.area.SetWidth(width)
		s.area.SetHeight(max(avail, 3))
		return head + "\n\n" + s.area.View()
	case service.Committing:
		footer := s.message.View()
		if s.saving {
			footer = s.env.loading("Committing…")
		}
		s.body.Width = width
		s.body.Height = max(avail-2, 3)
		return head + "\n\n" + s.body.View() + "\n\n" + footer
	default:
		s.body.Width = width
		s.body.Height = max(avail, 3)
		if strings.TrimSpace(s.editor.Content()) == "" {
			return head + "\n\n" + emptyStyle.Render("This file is empty. Press e to edit.")
		}
		return head + "\n\n" + s.body.View()
	}
}

func numberLines(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(lineNoStyle.Render(fmt.Sprintf("%4d ", i+1)))
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// renderRows draws diff rows with both line number columns. A zero line
// number is the absent side and renders blank.
func renderRows(rows []diff.Row) string {
	if len(rows) == 0 {
		return emptyStyle.Render("No changes")
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(lineNoStyle.Render(lineNo(r.OldLine) + " " + lineNo(r.NewLine) + " "))
		text := r.Prefix() + r.Content
		switch r.Type {
		case diff.Added:
			text = addedStyle.Render(text)
		case diff.Removed:
			text = removedStyle.Render(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

func lineNo(n int) string {
	if n == 0 {
		return "    "
	}
	return fmt.Sprintf("%4d", n)
}

func shortCommit(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

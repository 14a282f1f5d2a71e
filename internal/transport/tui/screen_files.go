package tui

import (
	"context"
	"fmt"
	"path"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bravo68web/confdash/internal/application/dialog"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type (
	filesLoadedMsg struct {
		entries []models.TreeEntry
		err     error
	}
	fileCreatedMsg struct {
		ok  bool
		ref models.FileRef
	}
	fileDeletedMsg struct{ ok bool }
	exportedMsg    struct{}
)

type filesScreen struct {
	env       *env
	namespace string
	dir       string
	list      listView

	create    *dialog.Dialog[string]
	nameInput textinput.Model
	nameErr   string
	remove    *dialog.Dialog[models.FileRef]
}

func newFilesScreen(e *env, namespace, dir string) *filesScreen {
	in := newInput("app.yaml", 200)
	in.Prompt = "File name: "
	return &filesScreen{
		env:       e,
		namespace: namespace,
		dir:       dir,
		list:      newListView(e, "This directory is empty. Press n to add a file."),
		create:    dialog.New(""),
		nameInput: in,
		remove:    dialog.New(models.FileRef{}),
	}
}

func (s *filesScreen) init() tea.Cmd {
	ctx, api, ns, dir := s.env.ctx, s.env.api, s.namespace, s.dir
	return func() tea.Msg {
		entries, err := api.ListFiles(ctx, ns, dir)
		return filesLoadedMsg{entries, err}
	}
}

func (s *filesScreen) typing() bool {
	return s.create.IsOpen() || s.list.searching()
}

func (s *filesScreen) entryItems(entries []models.TreeEntry) []view.ListItem {
	items := make([]view.EntryItem, len(entries))
	for i, e := range entries {
		items[i] = view.EntryItem{Namespace: s.namespace, Dir: s.dir, Entry: e}
	}
	return view.Items(items)
}

func (s *filesScreen) ref(name string) models.FileRef {
	return models.FileRef{Namespace: s.namespace, Path: s.dir, Name: name}
}

func (s *filesScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch m := msg.(type) {
	case filesLoadedMsg:
		if m.err != nil {
			s.list.fail(m.err)
		} else {
			s.list.setItems(s.entryItems(m.entries))
		}
		return nil, true
	case fileCreatedMsg:
		if !m.ok {
			return nil, true
		}
		s.nameInput.SetValue("")
		return tea.Batch(s.init(), push(newFileScreen(s.env, m.ref))), true
	case fileDeletedMsg:
		if m.ok {
			return s.init(), true
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

	it, hasSel := s.list.selected()
	entry, _ := it.(view.EntryItem)
	switch act {
	case ActionOpen:
		if !hasSel {
			return nil, true
		}
		if entry.IsDir() {
			return push(newFilesScreen(s.env, s.namespace, path.Join(s.dir, entry.Title()))), true
		}
		return push(newFileScreen(s.env, s.ref(entry.Entry.Name))), true
	case ActionNew:
		s.create.Open()
		s.nameErr = ""
		s.nameInput.SetValue("")
		return s.nameInput.Focus(), true
	case ActionDelete:
		if hasSel && !entry.IsDir() {
			s.remove.OpenWith(s.ref(entry.Entry.Name))
		}
		return nil, true
	case ActionRefresh:
		s.list.loading = true
		return s.init(), true
	}
	if cmd := namespaceShortcut(s.env, s.namespace, act); cmd != nil {
		return cmd, true
	}
	return nil, false
}

func (s *filesScreen) updateCreate(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if s.create.State() == dialog.Submitting {
		return nil, true
	}
	switch act {
	case ActionEscape:
		s.create.Close()
		s.nameInput.Blur()
		return nil, true
	case ActionOpen:
		name := s.nameInput.Value()
		if err := s.env.api.Validator().FileName(name); err != nil {
			s.nameErr = apperrors.Message(err)
			return nil, true
		}
		s.create.Set(name)
		ctx, d, api, email := s.env.ctx, s.create, s.env.api, s.env.email
		ref := s.ref(name)
		return func() tea.Msg {
			ok := d.HandleSubmit(ctx, func(ctx context.Context, name string) error {
				_, err := api.CreateFile(ctx, ref, "", "Create "+ref.FullPath(), email)
				return err
			})
			return fileCreatedMsg{ok, ref}
		}, true
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	var cmd tea.Cmd
	s.nameInput, cmd = s.nameInput.Update(km)
	s.create.Set(s.nameInput.Value())
	s.nameErr = ""
	return cmd, true
}

func (s *filesScreen) updateRemove(act Action) (tea.Cmd, bool) {
	if s.remove.State() == dialog.Submitting {
		return nil, true
	}
	switch act {
	case ActionEscape, ActionBack:
		s.remove.Close()
	case ActionConfirm, ActionOpen:
		ctx, d, api, email := s.env.ctx, s.remove, s.env.api, s.env.email
		return func() tea.Msg {
			return fileDeletedMsg{d.HandleSubmit(ctx, func(ctx context.Context, ref models.FileRef) error {
				return api.DeleteFile(ctx, ref, "", email)
			})}
		}, true
	}
	return nil, true
}

func (s *filesScreen) header() view.Header {
	crumbs := append([]tree.Crumb{{Name: s.namespace}}, tree.Breadcrumbs(s.dir)...)
	title := s.namespace
	if s.dir != "" {
		title = path.Base(s.dir)
	}
	return view.Header{
		Title:    title,
		Subtitle: fmt.Sprintf("%d entries", len(s.list.items)),
		Crumbs:   crumbs,
		Actions: []view.Action{
			{Label: "new file", Key: "n"},
			{Label: "delete", Key: "d", Danger: true},
			{Label: "vault", Key: "v"},
			{Label: "events", Key: "E"},
			{Label: "notify", Key: "N"},
			{Label: "export", Key: "x"},
		},
	}
}

func (s *filesScreen) view(width, height int) string {
	switch {
	case s.create.IsOpen():
		return renderModal(width, height, "New file", false, s.create.State(),
			s.nameInput.View(),
			fieldError(s.nameErr),
			hint("created in /"+s.dir+" · enter to create · esc to cancel"))
	case s.remove.IsOpen():
		return renderModal(width, height, "Delete file", true, s.remove.State(),
			fmt.Sprintf("Delete %s?", s.remove.Data().FullPath()),
			hint("y to delete · esc to cancel"))
	}
	head := renderHeader(s.header())
	return head + "\n\n" + s.list.view(width, height-countLines(head)-2)
}

// namespaceShortcut opens the namespace-wide screens bound to bare keys
func namespaceShortcut(e *env, namespace string, act Action) tea.Cmd {
	switch act {
	case ActionVault:
		return push(newVaultScreen(e, namespace))
	case ActionEvents:
		return push(newFeedScreen(e, namespace, feedEvents))
	case ActionNotify:
		return push(newFeedScreen(e, namespace, feedNotify))
	case ActionExport:
		return exportCmd(e, namespace)
	}
	return nil
}

// exportCmd copies every file of namespace to export storage and reports
// the outcome on the status line
func exportCmd(e *env, namespace string) tea.Cmd {
	if e.export == nil {
		return func() tea.Msg {
			e.status.Notify(notify.New(models.SeverityWarning, "Export storage is not configured"))
			return exportedMsg{}
		}
	}
	e.status.Notify(notify.New(models.SeverityInfo, "Exporting "+namespace+"…"))
	ctx, api, export, email := e.ctx, e.api, e.export, e.email
	return func() tea.Msg {
		res, err := export.Export(ctx, api, namespace, email)
		if err != nil {
			e.status.Notify(notify.New(models.SeverityError, "Export failed: "+apperrors.Message(err)))
			return exportedMsg{}
		}
		msg := fmt.Sprintf("Exported %d files to %s", len(res.Files), res.Prefix)
		if res.Revision != "" {
			msg += " (" + shortCommit(res.Revision) + ")"
		}
		e.status.Notify(notify.New(models.SeveritySuccess, msg))
		return exportedMsg{}
	}
}

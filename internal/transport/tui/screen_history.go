package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type historyLoadedMsg struct {
	commits []models.Commit
	err     error
}

// historyScreen lists the commits of a file or a vault
type historyScreen struct {
	env    *env
	title  string
	crumbs []tree.Crumb
	list   listView
	load   func(ctx context.Context) ([]models.Commit, error)
	// changes loads the diff of one commit
	changes func(ctx context.Context, commitID string) (string, error)
}

func newFileHistoryScreen(e *env, ref models.FileRef) *historyScreen {
	api := e.api
	crumbs := append([]tree.Crumb{{Name: ref.Namespace}}, tree.Breadcrumbs(ref.FullPath())...)
	return &historyScreen{
		env:    e,
		title:  "History of " + ref.Name,
		crumbs: crumbs,
		list:   newListView(e, "No commits yet."),
		load: func(ctx context.Context) ([]models.Commit, error) {
			return api.FileHistory(ctx, ref)
		},
		changes: func(ctx context.Context, commitID string) (string, error) {
			return api.FileChanges(ctx, ref, commitID)
		},
	}
}

func newVaultHistoryScreen(e *env, namespace string) *historyScreen {
	api := e.api
	return &historyScreen{
		env:    e,
		title:  "Vault history",
		crumbs: []tree.Crumb{{Name: namespace}, {Name: "vault"}},
		list:   newListView(e, "The vault has no commits yet."),
		load: func(ctx context.Context) ([]models.Commit, error) {
			return api.VaultHistory(ctx, namespace)
		},
		changes: func(ctx context.Context, commitID string) (string, error) {
			return api.VaultChanges(ctx, namespace, commitID)
		},
	}
}

func (s *historyScreen) init() tea.Cmd {
	ctx, load := s.env.ctx, s.load
	return func() tea.Msg {
		commits, err := load(ctx)
		return historyLoadedMsg{commits, err}
	}
}

func (s *historyScreen) typing() bool { return s.list.searching() }

func (s *historyScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if m, ok := msg.(historyLoadedMsg); ok {
		if m.err != nil {
			s.list.fail(m.err)
			return nil, true
		}
		items := make([]view.CommitItem, len(m.commits))
		for i, c := range m.commits {
			items[i] = view.CommitItem{Commit: c}
		}
		s.list.setItems(view.Items(items))
		return nil, true
	}
	if cmd, ok := s.list.update(msg, act); ok {
		return cmd, true
	}
	switch act {
	case ActionOpen:
		it, ok := s.list.selected()
		if !ok {
			return nil, true
		}
		c := it.(view.CommitItem).Commit
		crumbs := append(append([]tree.Crumb{}, s.crumbs...), tree.Crumb{Name: c.ShortID()})
		return push(newDiffScreen(s.env, c, crumbs, s.changes)), true
	case ActionRefresh:
		s.list.loading = true
		return s.init(), true
	}
	return nil, false
}

func (s *historyScreen) view(width, height int) string {
	head := renderHeader(view.Header{
		Title:    s.title,
		Subtitle: fmt.Sprintf("%d commits", len(s.list.items)),
		Crumbs:   s.crumbs,
		Actions:  []view.Action{{Label: "show changes", Key: "enter"}},
	})
	return head + "\n\n" + s.list.view(width, height-countLines(head)-2)
}

type diffLoadedMsg struct {
	text string
	err  error
}

// diffScreen shows the changes of one commit
type diffScreen struct {
	env     *env
	commit  models.Commit
	crumbs  []tree.Crumb
	load    func(ctx context.Context, commitID string) (string, error)
	rows    []diff.Row
	loaded  bool
	loadErr error
	body    viewport.Model
}

func newDiffScreen(e *env, c models.Commit, crumbs []tree.Crumb, load func(context.Context, string) (string, error)) *diffScreen {
	return &diffScreen{env: e, commit: c, crumbs: crumbs, load: load, body: viewport.New(80, 20)}
}

func (s *diffScreen) init() tea.Cmd {
	if s.loaded {
		return nil
	}
	ctx, load, id := s.env.ctx, s.load, s.commit.CommitID
	return func() tea.Msg {
		text, err := load(ctx, id)
		return diffLoadedMsg{text, err}
	}
}

func (s *diffScreen) typing() bool { return false }

func (s *diffScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if m, ok := msg.(diffLoadedMsg); ok {
		s.loadErr = m.err
		if m.err == nil {
			s.loaded = true
			s.rows = diff.Parse(m.text)
			s.body.SetContent(renderRows(s.rows))
		}
		return nil, true
	}
	if act == ActionOpen {
		return nil, true
	}
	if km, ok := msg.(tea.KeyMsg); ok && (act == ActionNone || act == ActionUp || act == ActionDown) {
		var cmd tea.Cmd
		s.body, cmd = s.body.Update(km)
		return cmd, true
	}
	return nil, false
}

func (s *diffScreen) view(width, height int) string {
	added, removed := diff.Stats(s.rows)
	head := renderHeader(view.Header{
		Title:    s.commit.Message,
		Subtitle: fmt.Sprintf("%s · %s · +%d -%d", s.commit.ShortID(), s.commit.Author, added, removed),
		Crumbs:   s.crumbs,
	})
	switch {
	case s.loadErr != nil:
		return head + "\n\n" + dangerStyle.Render(apperrors.Message(s.loadErr))
	case !s.loaded:
		return head + "\n\n" + s.env.loading("Loading changes…")
	}
	s.body.Width = width
	s.body.Height = max(height-countLines(head)-2, 3)
	return head + "\n\n" + s.body.View()
}

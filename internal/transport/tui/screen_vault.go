package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bravo68web/confdash/internal/application/dialog"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type (
	vaultLoadedMsg struct{ err error }
	vaultSavedMsg  struct{ ok bool }
)

type secretForm struct {
	Key   string
	Value string
}

type vaultScreen struct {
	env       *env
	namespace string
	vault     *service.VaultEditor
	list      listView

	set      *dialog.Dialog[secretForm]
	keyInput textinput.Model
	valInput textinput.Model
	field    int
	formErr  string
	remove   *dialog.Dialog[string]
}

func newVaultScreen(e *env, namespace string) *vaultScreen {
	k := newInput("DATABASE_URL", 128)
	k.Prompt = "Key:   "
	v := newInput("value", 4096)
	v.Prompt = "Value: "
	return &vaultScreen{
		env:       e,
		namespace: namespace,
		vault:     service.NewVaultEditor(e.api, namespace, e.email),
		list:      newListView(e, "The vault is empty. Press n to add a secret."),
		set:       dialog.New(secretForm{}),
		keyInput:  k,
		valInput:  v,
		remove:    dialog.New(""),
	}
}

func (s *vaultScreen) init() tea.Cmd {
	ctx, v := s.env.ctx, s.vault
	return func() tea.Msg {
		return vaultLoadedMsg{v.Load(ctx)}
	}
}

func (s *vaultScreen) typing() bool {
	return s.set.IsOpen() || s.list.searching()
}

func (s *vaultScreen) sync() {
	keys := s.vault.Secrets().Keys()
	items := make([]view.SecretItem, len(keys))
	for i, k := range keys {
		items[i] = view.SecretItem{
			Namespace: s.namespace,
			Key:       k,
			Value:     s.vault.Display(k),
			Revealed:  s.vault.Revealed(k),
		}
	}
	s.list.setItems(view.Items(items))
}

func (s *vaultScreen) selectedKey() (string, bool) {
	it, ok := s.list.selected()
	if !ok {
		return "", false
	}
	return it.Title(), true
}

func (s *vaultScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	switch m := msg.(type) {
	case vaultLoadedMsg:
		if m.err != nil {
			s.list.fail(m.err)
		} else {
			s.sync()
		}
		return nil, true
	case vaultSavedMsg:
		if m.ok {
			s.keyInput.Blur()
			s.valInput.Blur()
			s.sync()
		}
		return nil, true
	}

	switch {
	case s.set.IsOpen():
		return s.updateSet(msg, act)
	case s.remove.IsOpen():
		return s.updateRemove(act)
	}

	if cmd, ok := s.list.update(msg, act); ok {
		return cmd, true
	}

	key, hasSel := s.selectedKey()
	switch act {
	case ActionReveal, ActionOpen:
		if hasSel {
			s.vault.ToggleReveal(key)
			s.sync()
		}
		return nil, true
	case ActionNew:
		return s.openSet(secretForm{}), true
	case ActionEdit:
		if hasSel {
			return s.openSet(secretForm{Key: key, Value: s.vault.Secrets()[key]}), true
		}
		return nil, true
	case ActionDelete:
		if hasSel {
			s.remove.OpenWith(key)
		}
		return nil, true
	case ActionHistory:
		return push(newVaultHistoryScreen(s.env, s.namespace)), true
	case ActionRefresh:
		s.list.loading = true
		return s.init(), true
	case ActionEvents, ActionNotify, ActionExport:
		return namespaceShortcut(s.env, s.namespace, act), true
	}
	return nil, false
}

func (s *vaultScreen) openSet(form secretForm) tea.Cmd {
	s.set.OpenWith(form)
	s.keyInput.SetValue(form.Key)
	s.valInput.SetValue(form.Value)
	s.formErr = ""
	if form.Key != "" {
		s.field = 1
		s.keyInput.Blur()
		return s.valInput.Focus()
	}
	s.field = 0
	s.valInput.Blur()
	return s.keyInput.Focus()
}

func (s *vaultScreen) updateSet(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if s.set.State() == dialog.Submitting {
		return nil, true
	}
	km, isKey := msg.(tea.KeyMsg)
	switch {
	case act == ActionEscape:
		s.set.Close()
		s.keyInput.Blur()
		s.valInput.Blur()
		return nil, true
	case isKey && (km.String() == "tab" || km.String() == "shift+tab" || act == ActionUp || act == ActionDown):
		s.field = 1 - s.field
		if s.field == 0 {
			s.valInput.Blur()
			return s.keyInput.Focus(), true
		}
		s.keyInput.Blur()
		return s.valInput.Focus(), true
	case act == ActionOpen:
		form := secretForm{Key: strings.TrimSpace(s.keyInput.Value()), Value: s.valInput.Value()}
		if err := s.env.api.Validator().SecretKey(form.Key); err != nil {
			s.formErr = apperrors.Message(err)
			return nil, true
		}
		s.set.Set(form)
		ctx, d, v := s.env.ctx, s.set, s.vault
		return func() tea.Msg {
			return vaultSavedMsg{d.HandleSubmit(ctx, func(ctx context.Context, f secretForm) error {
				return v.Set(ctx, f.Key, f.Value, "")
			})}
		}, true
	}
	if !isKey {
		return nil, false
	}
	var cmd tea.Cmd
	if s.field == 0 {
		s.keyInput, cmd = s.keyInput.Update(km)
	} else {
		s.valInput, cmd = s.valInput.Update(km)
	}
	s.formErr = ""
	return cmd, true
}

func (s *vaultScreen) updateRemove(act Action) (tea.Cmd, bool) {
	if s.remove.State() == dialog.Submitting {
		return nil, true
	}
	switch act {
	case ActionEscape, ActionBack:
		s.remove.Close()
	case ActionConfirm, ActionOpen:
		ctx, d, v := s.env.ctx, s.remove, s.vault
		return func() tea.Msg {
			return vaultSavedMsg{d.HandleSubmit(ctx, func(ctx context.Context, key string) error {
				return v.Delete(ctx, key, "")
			})}
		}, true
	}
	return nil, true
}

func (s *vaultScreen) view(width, height int) string {
	switch {
	case s.set.IsOpen():
		title := "Add secret"
		if _, exists := s.vault.Secrets()[s.set.Data().Key]; exists && s.set.Data().Key != "" {
			title = "Update secret"
		}
		return renderModal(width, height, title, false, s.set.State(),
			s.keyInput.View()+"\n"+s.valInput.View(),
			fieldError(s.formErr),
			hint("the whole vault is rewritten on save · enter to save · esc to cancel"))
	case s.remove.IsOpen():
		return renderModal(width, height, "Delete secret", true, s.remove.State(),
			fmt.Sprintf("Remove %s from the %s vault?", s.remove.Data(), s.namespace),
			hint("y to delete · esc to cancel"))
	}
	head := renderHeader(view.Header{
		Title:    "Vault",
		Subtitle: fmt.Sprintf("%d secrets", len(s.list.items)),
		Crumbs:   []tree.Crumb{{Name: s.namespace}, {Name: "vault"}},
		Actions: []view.Action{
			{Label: "reveal", Key: "space"},
			{Label: "add", Key: "n"},
			{Label: "edit", Key: "e"},
			{Label: "delete", Key: "d", Danger: true},
			{Label: "history", Key: "H"},
		},
	})
	return head + "\n\n" + s.list.view(width, height-countLines(head)-2)
}

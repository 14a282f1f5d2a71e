package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what a key press means to the current screen
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionFocusSearch
	ActionEscape
	ActionBack
	ActionOpen
	ActionUp
	ActionDown
	ActionNew
	ActionDelete
	ActionEdit
	ActionCommit
	ActionHistory
	ActionVault
	ActionEvents
	ActionNotify
	ActionDocs
	ActionExport
	ActionReveal
	ActionRefresh
	ActionConfirm
)

// KeyMap binds keys to actions. Global bindings work while a text input has
// focus; shortcut bindings are bare keys and are ignored while typing.
type KeyMap struct {
	// global
	Quit   key.Binding
	Search key.Binding
	Escape key.Binding
	Open   key.Binding
	Up     key.Binding
	Down   key.Binding
	Commit key.Binding

	// shortcuts
	Back    key.Binding
	New     key.Binding
	Delete  key.Binding
	Edit    key.Binding
	History key.Binding
	Vault   key.Binding
	Events  key.Binding
	Notify  key.Binding
	Docs    key.Binding
	Export  key.Binding
	Reveal  key.Binding
	Refresh key.Binding
	Confirm key.Binding
}

// DefaultKeyMap returns the bindings shown in the help line
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Search: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "search")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear/back")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Commit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "commit")),

		Back:    key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("←", "back")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		History: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "history")),
		Vault:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vault")),
		Events:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "events")),
		Notify:  key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "notify")),
		Docs:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "docs")),
		Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Reveal:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "reveal")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	}
}

// Resolve maps a key press to an action. While inputFocused only the
// global bindings apply, so typing never triggers a shortcut.
func (k KeyMap) Resolve(msg tea.KeyMsg, inputFocused bool) Action {
	switch {
	case key.Matches(msg, k.Quit):
		return ActionQuit
	case key.Matches(msg, k.Search):
		return ActionFocusSearch
	case key.Matches(msg, k.Escape):
		return ActionEscape
	case key.Matches(msg, k.Commit):
		return ActionCommit
	case key.Matches(msg, k.Open):
		return ActionOpen
	case key.Matches(msg, k.Up):
		return ActionUp
	case key.Matches(msg, k.Down):
		return ActionDown
	}
	if inputFocused {
		return ActionNone
	}

	shortcuts := []struct {
		binding key.Binding
		action  Action
	}{
		{k.Back, ActionBack},
		{k.New, ActionNew},
		{k.Delete, ActionDelete},
		{k.Edit, ActionEdit},
		{k.History, ActionHistory},
		{k.Vault, ActionVault},
		{k.Events, ActionEvents},
		{k.Notify, ActionNotify},
		{k.Docs, ActionDocs},
		{k.Export, ActionExport},
		{k.Reveal, ActionReveal},
		{k.Refresh, ActionRefresh},
		{k.Confirm, ActionConfirm},
	}
	for _, s := range shortcuts {
		if key.Matches(msg, s.binding) {
			return s.action
		}
	}
	// vim-style movement outside inputs
	switch msg.String() {
	case "k":
		return ActionUp
	case "j":
		return ActionDown
	case "l":
		return ActionOpen
	}
	return ActionNone
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Search, k.New, k.Delete, k.Docs, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back, k.Escape},
		{k.Search, k.New, k.Delete, k.Edit, k.Commit},
		{k.History, k.Vault, k.Events, k.Notify, k.Export},
		{k.Reveal, k.Refresh, k.Docs, k.Quit},
	}
}

// EditingKeyMap is the text input key map with word-wise movement and
// deletion on both the alt and ctrl modifiers
func EditingKeyMap() textinput.KeyMap {
	km := textinput.DefaultKeyMap
	km.WordForward = key.NewBinding(key.WithKeys("alt+right", "ctrl+right", "alt+f"))
	km.WordBackward = key.NewBinding(key.WithKeys("alt+left", "ctrl+left", "alt+b"))
	km.DeleteWordBackward = key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w"))
	km.DeleteWordForward = key.NewBinding(key.WithKeys("alt+delete", "alt+d"))
	return km
}

// EditorKeyMap applies the same word-wise bindings to the file editor
func EditorKeyMap() textarea.KeyMap {
	km := textarea.DefaultKeyMap
	km.WordForward = key.NewBinding(key.WithKeys("alt+right", "ctrl+right", "alt+f"))
	km.WordBackward = key.NewBinding(key.WithKeys("alt+left", "ctrl+left", "alt+b"))
	km.DeleteWordBackward = key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w"))
	km.DeleteWordForward = key.NewBinding(key.WithKeys("alt+delete", "alt+d"))
	return km
}

// newInput creates a text input using EditingKeyMap
func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.KeyMap = EditingKeyMap()
	ti.Width = 40
	return ti
}

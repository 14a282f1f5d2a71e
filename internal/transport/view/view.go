// Package view adapts domain records to the small interfaces the list and
// header renderers of the web dashboard and the TUI consume.
package view

import (
	"fmt"
	"net/url"
	"path"

	"github.com/bravo68web/confdash/internal/application/search"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/tree"
)

// ListItem is one row of a rendered list
type ListItem interface {
	Title() string
	Subtitle() string
	Href() string
}

// Action is a button or key binding offered next to a header or row
type Action struct {
	Label  string
	Href   string
	Method string // GET or POST
	Key    string // TUI binding, empty when none
	Danger bool
}

// Header is the title block above a list
type Header struct {
	Title    string
	Subtitle string
	Crumbs   []tree.Crumb
	Actions  []Action
}

// Search filters items by title and subtitle
func Search[T ListItem](items []T, query string) []T {
	return search.Filter(items, query,
		func(it T) string { return it.Title() },
		func(it T) string { return it.Subtitle() },
	)
}

// Items widens a typed slice for the list renderers
func Items[T ListItem](items []T) []ListItem {
	out := make([]ListItem, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// NamespaceItem is a card on the dashboard grid
type NamespaceItem string

func (n NamespaceItem) Title() string    { return string(n) }
func (n NamespaceItem) Subtitle() string { return "" }
func (n NamespaceItem) Href() string     { return NamespaceURL(string(n)) }

// EntryItem is a file or directory inside a namespace
type EntryItem struct {
	Namespace string
	Dir       string
	Entry     models.TreeEntry
}

func (e EntryItem) Title() string { return e.Entry.BaseName() }

func (e EntryItem) Subtitle() string {
	if e.Entry.IsDir() {
		return "directory"
	}
	return "file"
}

func (e EntryItem) Href() string {
	child := path.Join(e.Dir, e.Entry.BaseName())
	if e.Entry.IsDir() {
		return FilesURL(e.Namespace, child)
	}
	return FileURL(e.Namespace, e.Dir, e.Entry.Name)
}

// IsDir reports whether the entry is a directory
func (e EntryItem) IsDir() bool { return e.Entry.IsDir() }

// CommitItem is a row of a history panel
type CommitItem struct {
	Commit models.Commit
	// DiffHref is where the commit's changes are shown
	DiffHref string
}

func (c CommitItem) Title() string { return c.Commit.Message }

func (c CommitItem) Subtitle() string {
	return fmt.Sprintf("%s · %s · %s", c.Commit.ShortID(), c.Commit.Author, c.Commit.Date)
}

func (c CommitItem) Href() string { return c.DiffHref }

// EventItem is a row of the events feed
type EventItem models.Event

func (e EventItem) Title() string { return e.CommitMessage }

func (e EventItem) Subtitle() string {
	return fmt.Sprintf("%s · %s · %s", shortID(e.CommitID), e.Author, e.Date)
}

func (e EventItem) Href() string { return "" }

// NotifyItem is a row of the notification delivery feed
type NotifyItem models.NotifyRecord

func (n NotifyItem) Title() string    { return n.ID }
func (n NotifyItem) Subtitle() string { return n.Status + " · " + n.InitiatedTime }
func (n NotifyItem) Href() string     { return "" }

// SecretItem is a vault row with its value already masked or revealed
type SecretItem struct {
	Namespace string
	Key       string
	Value     string
	Revealed  bool
}

func (s SecretItem) Title() string    { return s.Key }
func (s SecretItem) Subtitle() string { return s.Value }

func (s SecretItem) Href() string {
	if s.Revealed {
		return VaultURL(s.Namespace)
	}
	return VaultURL(s.Namespace) + "?reveal=" + url.QueryEscape(s.Key)
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

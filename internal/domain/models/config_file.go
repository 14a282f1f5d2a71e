package models

import (
	"encoding/json"
	"strings"
)

// TreeEntry is one child of a directory in a namespace tree.
// Directories carry a trailing slash.
type TreeEntry struct {
	Name string `json:"name"`
}

// IsDir reports whether the entry is a directory
func (e TreeEntry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// BaseName returns the entry name without the directory marker
func (e TreeEntry) BaseName() string {
	return strings.TrimSuffix(e.Name, "/")
}

// FileRef addresses a config file: Path is the directory inside the namespace,
// Name is the file name (sent to the backend as appName).
type FileRef struct {
	Namespace string `json:"namespace"`
	Path      string `json:"path"`
	Name      string `json:"appName"`
}

// FullPath returns directory and name joined with a slash
func (r FileRef) FullPath() string {
	if r.Path == "" {
		return r.Name
	}
	return strings.TrimSuffix(r.Path, "/") + "/" + r.Name
}

// FileContent is a file body together with the commit it was read at.
// CommitID must be echoed back on the next update.
type FileContent struct {
	Content  string `json:"content"`
	CommitID string `json:"commitId"`
}

// UnmarshalJSON accepts the shapes the backend has used over time:
// {content, commitId}, {content, commit_id} and {data: {...}}.
func (f *FileContent) UnmarshalJSON(b []byte) error {
	var raw struct {
		Content   *string          `json:"content"`
		CommitID  string           `json:"commitId"`
		CommitID2 string           `json:"commit_id"`
		Data      *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Content == nil && raw.Data != nil {
		return f.UnmarshalJSON(*raw.Data)
	}
	if raw.Content != nil {
		f.Content = *raw.Content
	}
	f.CommitID = raw.CommitID
	if f.CommitID == "" {
		f.CommitID = raw.CommitID2
	}
	return nil
}

// Commit is one entry of a file or vault history, newest first as returned
type Commit struct {
	CommitID string `json:"commitId"`
	Message  string `json:"message"`
	Author   string `json:"author"`
	Email    string `json:"email,omitempty"`
	Date     string `json:"date"`
}

// UnmarshalJSON accepts message or commitMessage for the commit message
func (c *Commit) UnmarshalJSON(b []byte) error {
	var raw struct {
		CommitID      string `json:"commitId"`
		Hash          string `json:"hash"`
		Message       string `json:"message"`
		CommitMessage string `json:"commitMessage"`
		Author        string `json:"author"`
		Email         string `json:"email"`
		Date          string `json:"date"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.CommitID = raw.CommitID
	if c.CommitID == "" {
		c.CommitID = raw.Hash
	}
	c.Message = raw.Message
	if c.Message == "" {
		c.Message = raw.CommitMessage
	}
	c.Author = raw.Author
	c.Email = raw.Email
	c.Date = raw.Date
	return nil
}

// ShortID returns the first seven characters of the commit id
func (c Commit) ShortID() string {
	if len(c.CommitID) > 7 {
		return c.CommitID[:7]
	}
	return c.CommitID
}

// SaveResult is what the backend returns after a create or update
type SaveResult struct {
	CommitID string `json:"commitId"`
	Message  string `json:"message,omitempty"`
}

package dto

import (
	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
)

// CreateFileRequest creates a config file
type CreateFileRequest struct {
	Path    string `json:"path"`
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
	Message string `json:"message" binding:"required"`
}

// UpdateFileRequest replaces the content of a config file. CommitID must be
// the commit the content was read at.
type UpdateFileRequest struct {
	Path     string `json:"path"`
	Name     string `json:"name" binding:"required"`
	Content  string `json:"content"`
	Message  string `json:"message" binding:"required"`
	CommitID string `json:"commitId" binding:"required"`
}

// FileResponse is a file body with its commit id
type FileResponse struct {
	Namespace string `json:"namespace"`
	Path      string `json:"path"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	CommitID  string `json:"commitId"`
}

// SaveResponse carries the commit id created by a save
type SaveResponse struct {
	CommitID string `json:"commitId"`
	Message  string `json:"message,omitempty"`
}

// HistoryResponse lists commits newest first
type HistoryResponse struct {
	Commits []models.Commit `json:"commits"`
}

// ChangesResponse is the diff of one commit, raw and parsed
type ChangesResponse struct {
	CommitID string     `json:"commitId"`
	Diff     string     `json:"diff"`
	Rows     []diff.Row `json:"rows"`
	Added    int        `json:"added"`
	Removed  int        `json:"removed"`
}

// NewChangesResponse parses text into a ChangesResponse
func NewChangesResponse(commitID, text string) ChangesResponse {
	rows := diff.Parse(text)
	added, removed := diff.Stats(rows)
	return ChangesResponse{
		CommitID: commitID,
		Diff:     text,
		Rows:     rows,
		Added:    added,
		Removed:  removed,
	}
}

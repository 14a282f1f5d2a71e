package service

import (
	"context"
	"sync"

	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

// EditorState is one of Viewing, Editing or Committing
type EditorState interface {
	editorState()
	String() string
}

// Viewing shows the last fetched content read-only
type Viewing struct{}

// Editing holds a working copy; Dirty is true once it differs from the original
type Editing struct{ Dirty bool }

// Committing waits for a commit message before the update is sent
type Committing struct{}

func (Viewing) editorState()    {}
func (Editing) editorState()    {}
func (Committing) editorState() {}

func (Viewing) String() string    { return "viewing" }
func (Editing) String() string    { return "editing" }
func (Committing) String() string { return "committing" }

type editorMode int

const (
	modeViewing editorMode = iota
	modeEditing
	modeCommitting
)

// FileEditor drives viewing and editing of one config file. It owns the
// commit id the current content was read at: every save sends it and a
// successful save replaces it with the id the backend returns.
type FileEditor struct {
	api   *APIService
	ref   models.FileRef
	email string

	mu       sync.Mutex
	original string
	content  string
	commitID string
	mode     editorMode
	loaded   bool
}

// NewFileEditor creates an editor for ref acting as email
func NewFileEditor(api *APIService, ref models.FileRef, email string) *FileEditor {
	return &FileEditor{api: api, ref: ref, email: email}
}

// Ref returns the file being edited
func (e *FileEditor) Ref() models.FileRef {
	return e.ref
}

// Load fetches the file and returns to Viewing
func (e *FileEditor) Load(ctx context.Context) error {
	fc, err := e.api.FetchFile(ctx, e.ref, e.email)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.original = fc.Content
	e.content = fc.Content
	e.commitID = fc.CommitID
	e.mode = modeViewing
	e.loaded = true
	return nil
}

// Restore seeds the editor from a previously fetched revision without a
// network call. The web dashboard uses it to rebuild an editor from a form post.
func (e *FileEditor) Restore(original, commitID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.original = original
	e.content = original
	e.commitID = commitID
	e.mode = modeViewing
	e.loaded = true
}

// State returns the current state
func (e *FileEditor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.mode {
	case modeEditing:
		return Editing{Dirty: e.content != e.original}
	case modeCommitting:
		return Committing{}
	default:
		return Viewing{}
	}
}

// Content returns the working copy
func (e *FileEditor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Original returns the content as last fetched or saved
func (e *FileEditor) Original() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.original
}

// CommitID returns the commit id the next save will be based on
func (e *FileEditor) CommitID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitID
}

// Dirty reports whether the working copy differs from the original
func (e *FileEditor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content != e.original
}

// StartEdit moves from Viewing to Editing
func (e *FileEditor) StartEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "File is not loaded", apperrors.ErrInvalidState)
	}
	if e.mode == modeViewing {
		e.mode = modeEditing
	}
	return nil
}

// SetContent replaces the working copy while editing
func (e *FileEditor) SetContent(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != modeEditing {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "Not editing", apperrors.ErrInvalidState)
	}
	e.content = content
	return nil
}

// Cancel drops the working copy and returns to Viewing
func (e *FileEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = e.original
	e.mode = modeViewing
}

// BeginCommit moves from Editing to Committing. It is refused while the
// working copy equals the original.
func (e *FileEditor) BeginCommit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != modeEditing {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "Not editing", apperrors.ErrInvalidState)
	}
	if e.content == e.original {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "No changes to commit", apperrors.ErrNoChanges)
	}
	e.mode = modeCommitting
	return nil
}

// AbortCommit returns from Committing to Editing with the working copy kept
func (e *FileEditor) AbortCommit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == modeCommitting {
		e.mode = modeEditing
	}
}

// Commit sends the working copy with message. On success the editor goes
// back to Viewing with the new commit id; on failure it stays in Committing.
func (e *FileEditor) Commit(ctx context.Context, message string) error {
	e.mu.Lock()
	if e.mode != modeCommitting {
		e.mu.Unlock()
		return apperrors.NewAppError(apperrors.CodeBadRequest, "Nothing to commit", apperrors.ErrInvalidState)
	}
	in := UpdateInput{
		Ref:      e.ref,
		Content:  e.content,
		Message:  message,
		CommitID: e.commitID,
		Email:    e.email,
	}
	e.mu.Unlock()

	res, err := e.api.UpdateFile(ctx, in)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if res.CommitID != "" {
		e.commitID = res.CommitID
	}
	e.original = in.Content
	e.content = in.Content
	e.mode = modeViewing
	return nil
}

// Preview returns the rows of the diff between the original and the working copy
func (e *FileEditor) Preview() []diff.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return diff.Parse(diff.Unified(e.ref.FullPath(), e.original, e.content, diff.DefaultContext))
}

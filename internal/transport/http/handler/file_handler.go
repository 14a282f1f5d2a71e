package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

// FileHandler serves the file tree, the file viewer and the editor
type FileHandler struct {
	pages *Pages
}

// NewFileHandler creates a new FileHandler instance
func NewFileHandler(pages *Pages) *FileHandler {
	return &FileHandler{pages: pages}
}

type fileForm struct {
	Name    string
	Content string
	Message string
}

type filesData struct {
	Dir        string
	Entries    []view.ListItem
	CreateOpen bool
	Form       fileForm
	LoadErr    string
}

type fileData struct {
	Ref      models.FileRef
	Content  string
	CommitID string
	LoadErr  string
}

type editData struct {
	Ref      models.FileRef
	Content  string
	Original string
	CommitID string
	State    string
	Dirty    bool
	Rows     []diff.Row
	Added    int
	Removed  int
	Message  string
}

type historyData struct {
	Items   []view.ListItem
	LoadErr string
}

type diffData struct {
	CommitID string
	Rows     []diff.Row
	Added    int
	Removed  int
	BackHref string
	LoadErr  string
}

// Index handles GET /ns/:namespace
func (h *FileHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, view.NamespaceURL(c.Param("namespace")))
}

// Files handles GET /ns/:namespace/files
func (h *FileHandler) Files(c *gin.Context) {
	status := http.StatusOK
	data := filesData{CreateOpen: c.Query("new") != ""}
	h.renderFiles(c, status, data)
}

// CreateFile handles POST /ns/:namespace/files
func (h *FileHandler) CreateFile(c *gin.Context) {
	ref := formRef(c)
	form := fileForm{
		Name:    ref.Name,
		Content: formText(c, "content"),
		Message: strings.TrimSpace(c.PostForm("message")),
	}

	_, err := middleware.GetAPI(c).CreateFile(c.Request.Context(), ref, form.Content, form.Message, middleware.GetEmail(c))
	if err != nil {
		h.renderFiles(c, failureStatus(err), filesData{Dir: ref.Path, CreateOpen: true, Form: form})
		return
	}
	Redirect(c, view.FileURL(ref.Namespace, ref.Path, ref.Name))
}

func (h *FileHandler) renderFiles(c *gin.Context, status int, data filesData) {
	ns := c.Param("namespace")
	if data.Dir == "" {
		data.Dir = c.Query("path")
	}
	if dir, err := tree.Normalize(data.Dir); err == nil {
		data.Dir = dir
	}

	entries, err := middleware.GetAPI(c).ListFiles(c.Request.Context(), ns, data.Dir)
	data.LoadErr = loadError(err)
	items := make([]view.EntryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, view.EntryItem{Namespace: ns, Dir: data.Dir, Entry: e})
	}
	data.Entries = view.Items(items)

	actions := []view.Action{
		{Label: "New file", Href: view.FilesURL(ns, data.Dir) + newFileQuery(data.Dir), Method: http.MethodGet, Key: "n"},
	}
	if data.Dir != "" {
		actions = append(actions, view.Action{Label: "Up", Href: view.FilesURL(ns, tree.Parent(data.Dir)), Method: http.MethodGet, Key: "u"})
	}

	title := ns
	if data.Dir != "" {
		title = "/" + data.Dir
	}
	h.pages.Render(c, status, "files", Page{
		Title:     title,
		Namespace: ns,
		Section:   "files",
		Header: view.Header{
			Title:   title,
			Crumbs:  tree.Breadcrumbs(data.Dir),
			Actions: actions,
		},
		Data: data,
	})
}

// ViewFile handles GET /ns/:namespace/file
func (h *FileHandler) ViewFile(c *gin.Context) {
	ref := queryRef(c)
	ed := service.NewFileEditor(middleware.GetAPI(c), ref, middleware.GetEmail(c))
	err := ed.Load(c.Request.Context())

	status := http.StatusOK
	if err != nil {
		status = failureStatus(err)
	}
	h.renderFile(c, status, ed.Ref(), "file", fileData{
		Ref:      ed.Ref(),
		Content:  ed.Content(),
		CommitID: ed.CommitID(),
		LoadErr:  loadError(err),
	}, []view.Action{
		{Label: "Edit", Href: view.FileEditURL(ref.Namespace, ref.Path, ref.Name), Method: http.MethodGet, Key: "e"},
		{Label: "History", Href: view.FileHistoryURL(ref.Namespace, ref.Path, ref.Name), Method: http.MethodGet, Key: "h"},
		{Label: "Download", Href: view.FileRawURL(ref.Namespace, ref.Path, ref.Name), Method: http.MethodGet, Key: "d"},
	})
}

// EditFile handles GET and POST /ns/:namespace/file/edit. A POST comes back
// from the review step and keeps the working copy.
func (h *FileHandler) EditFile(c *gin.Context) {
	var ed *service.FileEditor
	if c.Request.Method == http.MethodPost {
		ed = h.restore(c)
	} else {
		ed = service.NewFileEditor(middleware.GetAPI(c), queryRef(c), middleware.GetEmail(c))
		if err := ed.Load(c.Request.Context()); err != nil {
			ref := ed.Ref()
			Redirect(c, view.FilesURL(ref.Namespace, ref.Path))
			return
		}
		_ = ed.StartEdit()
	}
	h.renderEditor(c, http.StatusOK, ed, "")
}

// PreviewFile handles POST /ns/:namespace/file/preview
func (h *FileHandler) PreviewFile(c *gin.Context) {
	ed := h.restore(c)
	if err := ed.BeginCommit(); err != nil {
		middleware.GetRecorder(c).Notify(notify.New(models.SeverityWarning, apperrors.Message(err)))
		h.renderEditor(c, http.StatusUnprocessableEntity, ed, "")
		return
	}
	h.renderEditor(c, http.StatusOK, ed, "")
}

// CommitFile handles POST /ns/:namespace/file/commit
func (h *FileHandler) CommitFile(c *gin.Context) {
	ed := h.restore(c)
	if err := ed.BeginCommit(); err != nil {
		middleware.GetRecorder(c).Notify(notify.New(models.SeverityWarning, apperrors.Message(err)))
		h.renderEditor(c, http.StatusUnprocessableEntity, ed, "")
		return
	}

	message := strings.TrimSpace(c.PostForm("message"))
	if err := ed.Commit(c.Request.Context(), message); err != nil {
		h.renderEditor(c, failureStatus(err), ed, message)
		return
	}
	ref := ed.Ref()
	Redirect(c, view.FileURL(ref.Namespace, ref.Path, ref.Name))
}

// restore rebuilds the editor from the hidden fields of the editor form
func (h *FileHandler) restore(c *gin.Context) *service.FileEditor {
	ed := service.NewFileEditor(middleware.GetAPI(c), formRef(c), middleware.GetEmail(c))
	ed.Restore(formText(c, "original"), c.PostForm("commit_id"))
	_ = ed.StartEdit()
	_ = ed.SetContent(formText(c, "content"))
	return ed
}

func (h *FileHandler) renderEditor(c *gin.Context, status int, ed *service.FileEditor, message string) {
	ref := ed.Ref()
	data := editData{
		Ref:      ref,
		Content:  ed.Content(),
		Original: ed.Original(),
		CommitID: ed.CommitID(),
		State:    ed.State().String(),
		Dirty:    ed.Dirty(),
		Message:  message,
	}
	if _, ok := ed.State().(service.Committing); ok {
		data.Rows = ed.Preview()
		data.Added, data.Removed = diff.Stats(data.Rows)
	}
	h.renderFile(c, status, ref, "edit", data, nil)
}

// FileHistory handles GET /ns/:namespace/file/history
func (h *FileHandler) FileHistory(c *gin.Context) {
	ref := queryRef(c)
	commits, err := middleware.GetAPI(c).FileHistory(c.Request.Context(), ref)
	items := make([]view.CommitItem, 0, len(commits))
	for _, cm := range commits {
		items = append(items, view.CommitItem{
			Commit:   cm,
			DiffHref: view.FileDiffURL(ref.Namespace, ref.Path, ref.Name, cm.CommitID),
		})
	}
	h.renderFile(c, http.StatusOK, ref, "history", historyData{
		Items:   view.Items(items),
		LoadErr: loadError(err),
	}, []view.Action{
		{Label: "Back to file", Href: view.FileURL(ref.Namespace, ref.Path, ref.Name), Method: http.MethodGet, Key: "b"},
	})
}

// FileDiff handles GET /ns/:namespace/file/diff
func (h *FileHandler) FileDiff(c *gin.Context) {
	ref := queryRef(c)
	commit := c.Query("commit")
	text, err := middleware.GetAPI(c).FileChanges(c.Request.Context(), ref, commit)
	rows := diff.Parse(text)
	added, removed := diff.Stats(rows)
	h.renderFile(c, http.StatusOK, ref, "diff", diffData{
		CommitID: commit,
		Rows:     rows,
		Added:    added,
		Removed:  removed,
		BackHref: view.FileHistoryURL(ref.Namespace, ref.Path, ref.Name),
		LoadErr:  loadError(err),
	}, nil)
}

// RawFile handles GET /ns/:namespace/file/raw and sends the file as a download
func (h *FileHandler) RawFile(c *gin.Context) {
	ref := queryRef(c)
	fc, err := middleware.GetAPI(c).FetchFile(c.Request.Context(), ref, middleware.GetEmail(c))
	if err != nil {
		h.pages.Error(c, failureStatus(err), apperrors.Message(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ref.Name))
	c.Header("X-Commit-ID", fc.CommitID)
	c.Data(http.StatusOK, contentType(ref.Name), []byte(fc.Content))
}

// DeleteFile handles POST /ns/:namespace/file/delete
func (h *FileHandler) DeleteFile(c *gin.Context) {
	ref := formRef(c)
	message := strings.TrimSpace(c.PostForm("message"))
	if err := middleware.GetAPI(c).DeleteFile(c.Request.Context(), ref, message, middleware.GetEmail(c)); err != nil {
		Redirect(c, view.FileURL(ref.Namespace, ref.Path, ref.Name))
		return
	}
	Redirect(c, view.FilesURL(ref.Namespace, ref.Path))
}

func (h *FileHandler) renderFile(c *gin.Context, status int, ref models.FileRef, page string, data any, actions []view.Action) {
	h.pages.Render(c, status, page, Page{
		Title:     ref.Name,
		Namespace: ref.Namespace,
		Section:   "files",
		Header: view.Header{
			Title:   ref.Name,
			Crumbs:  tree.Breadcrumbs(ref.Path),
			Actions: actions,
		},
		Data: data,
	})
}

func queryRef(c *gin.Context) models.FileRef {
	return models.FileRef{
		Namespace: c.Param("namespace"),
		Path:      c.Query("path"),
		Name:      strings.TrimSpace(c.Query("name")),
	}
}

func formRef(c *gin.Context) models.FileRef {
	return models.FileRef{
		Namespace: c.Param("namespace"),
		Path:      c.PostForm("path"),
		Name:      strings.TrimSpace(c.PostForm("name")),
	}
}

// formText reads a multi-line form field. Browsers submit line breaks as CRLF.
func formText(c *gin.Context, key string) string {
	return strings.ReplaceAll(c.PostForm(key), "\r\n", "\n")
}

func newFileQuery(dir string) string {
	if dir == "" {
		return "?new=1"
	}
	return "&new=1"
}

func contentType(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return "application/yaml; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

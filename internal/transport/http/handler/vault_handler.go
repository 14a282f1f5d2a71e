package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/internal/transport/view"
)

// VaultHandler serves the per-namespace secrets vault
type VaultHandler struct {
	pages *Pages
}

// NewVaultHandler creates a new VaultHandler instance
func NewVaultHandler(pages *Pages) *VaultHandler {
	return &VaultHandler{pages: pages}
}

type secretForm struct {
	Key     string
	Value   string
	Message string
}

type vaultData struct {
	Items   []view.SecretItem
	Form    secretForm
	LoadErr string
}

// Vault handles GET /ns/:namespace/vault. Values stay masked unless the
// reveal parameter names their key.
func (h *VaultHandler) Vault(c *gin.Context) {
	ed := h.editor(c)
	err := ed.Load(c.Request.Context())
	h.render(c, http.StatusOK, ed, vaultData{LoadErr: loadError(err)}, c.QueryArray("reveal"))
}

// SetSecret handles POST /ns/:namespace/vault
func (h *VaultHandler) SetSecret(c *gin.Context) {
	form := secretForm{
		Key:     strings.TrimSpace(c.PostForm("key")),
		Value:   c.PostForm("value"),
		Message: strings.TrimSpace(c.PostForm("message")),
	}
	ed := h.editor(c)
	if err := ed.Load(c.Request.Context()); err != nil {
		h.render(c, failureStatus(err), ed, vaultData{Form: form, LoadErr: loadError(err)}, nil)
		return
	}
	if err := ed.Set(c.Request.Context(), form.Key, form.Value, form.Message); err != nil {
		h.render(c, failureStatus(err), ed, vaultData{Form: form}, nil)
		return
	}
	Redirect(c, view.VaultURL(c.Param("namespace")))
}

// DeleteSecret handles POST /ns/:namespace/vault/delete
func (h *VaultHandler) DeleteSecret(c *gin.Context) {
	ed := h.editor(c)
	if err := ed.Load(c.Request.Context()); err == nil {
		_ = ed.Delete(c.Request.Context(), c.PostForm("key"), strings.TrimSpace(c.PostForm("message")))
	}
	Redirect(c, view.VaultURL(c.Param("namespace")))
}

// History handles GET /ns/:namespace/vault/history
func (h *VaultHandler) History(c *gin.Context) {
	ns := c.Param("namespace")
	commits, err := middleware.GetAPI(c).VaultHistory(c.Request.Context(), ns)
	items := make([]view.CommitItem, 0, len(commits))
	for _, cm := range commits {
		items = append(items, view.CommitItem{Commit: cm, DiffHref: view.VaultDiffURL(ns, cm.CommitID)})
	}
	h.pages.Render(c, http.StatusOK, "history", Page{
		Title:     "Vault history",
		Namespace: ns,
		Section:   "vault",
		Header: view.Header{
			Title: "Vault history",
			Actions: []view.Action{
				{Label: "Back to vault", Href: view.VaultURL(ns), Method: http.MethodGet, Key: "b"},
			},
		},
		Data: historyData{Items: view.Items(items), LoadErr: loadError(err)},
	})
}

// Diff handles GET /ns/:namespace/vault/diff
func (h *VaultHandler) Diff(c *gin.Context) {
	ns := c.Param("namespace")
	commit := c.Query("commit")
	text, err := middleware.GetAPI(c).VaultChanges(c.Request.Context(), ns, commit)
	rows := diff.Parse(text)
	added, removed := diff.Stats(rows)
	h.pages.Render(c, http.StatusOK, "diff", Page{
		Title:     "Vault changes",
		Namespace: ns,
		Section:   "vault",
		Header:    view.Header{Title: "Vault changes"},
		Data: diffData{
			CommitID: commit,
			Rows:     rows,
			Added:    added,
			Removed:  removed,
			BackHref: view.VaultHistoryURL(ns),
			LoadErr:  loadError(err),
		},
	})
}

func (h *VaultHandler) editor(c *gin.Context) *service.VaultEditor {
	return service.NewVaultEditor(middleware.GetAPI(c), c.Param("namespace"), middleware.GetEmail(c))
}

func (h *VaultHandler) render(c *gin.Context, status int, ed *service.VaultEditor, data vaultData, reveal []string) {
	ns := c.Param("namespace")
	for _, key := range reveal {
		ed.ToggleReveal(key)
	}
	secrets := ed.Secrets()
	for _, key := range secrets.Keys() {
		data.Items = append(data.Items, view.SecretItem{
			Namespace: ns,
			Key:       key,
			Value:     ed.Display(key),
			Revealed:  ed.Revealed(key),
		})
	}

	h.pages.Render(c, status, "vault", Page{
		Title:     "Vault",
		Namespace: ns,
		Section:   "vault",
		Header: view.Header{
			Title:    "Vault",
			Subtitle: "Secrets of " + ns + ". Values are hidden until revealed.",
			Actions: []view.Action{
				{Label: "History", Href: view.VaultHistoryURL(ns), Method: http.MethodGet, Key: "h"},
			},
		},
		Data: data,
	})
}

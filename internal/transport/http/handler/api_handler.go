package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/internal/transport/view"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// APIHandler serves the JSON API under /api/v1. Every call is forwarded to
// the config server with the caller's bearer token.
type APIHandler struct {
	export *service.ExportService
	log    *logger.Logger
}

// NewAPIHandler creates a new APIHandler instance
func NewAPIHandler(export *service.ExportService) *APIHandler {
	return &APIHandler{
		export: export,
		log:    logger.Get().WithFields(logger.Component("api-handler")),
	}
}

// respondError writes err as an ErrorResponse with the status it carries
func respondError(c *gin.Context, err error) {
	status := failureStatus(err)
	c.JSON(status, dto.ErrorResponse{
		Error:   errorCode(status),
		Message: apperrors.Message(err),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request", Message: message})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return "backend_unavailable"
	}
	return "internal_error"
}

// Namespaces

// ListNamespaces handles GET /api/v1/namespaces
func (h *APIHandler) ListNamespaces(c *gin.Context) {
	names, err := middleware.GetAPI(c).ListNamespaces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]view.NamespaceItem, 0, len(names))
	for _, n := range names {
		items = append(items, view.NamespaceItem(n))
	}
	items = view.Search(items, c.Query("q"))
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it)
	}
	c.JSON(http.StatusOK, dto.NamespaceListResponse{Namespaces: out, Total: len(out)})
}

// CreateNamespace handles POST /api/v1/namespaces
func (h *APIHandler) CreateNamespace(c *gin.Context) {
	var req dto.CreateNamespaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "namespace is required")
		return
	}
	name := strings.TrimSpace(req.Namespace)
	if err := middleware.GetAPI(c).CreateNamespace(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Namespace " + name + " created"})
}

// DeleteNamespace handles DELETE /api/v1/namespaces/:namespace
func (h *APIHandler) DeleteNamespace(c *gin.Context) {
	name := c.Param("namespace")
	if err := middleware.GetAPI(c).DeleteNamespace(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Namespace " + name + " deleted"})
}

// Files

// ListFiles handles GET /api/v1/namespaces/:namespace/files?path=
func (h *APIHandler) ListFiles(c *gin.Context) {
	ns := c.Param("namespace")
	dir := c.Query("path")
	entries, err := middleware.GetAPI(c).ListFiles(c.Request.Context(), ns, dir)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []models.TreeEntry{}
	}
	c.JSON(http.StatusOK, dto.TreeResponse{Namespace: ns, Path: dir, Entries: entries})
}

func apiRef(c *gin.Context) models.FileRef {
	return models.FileRef{Namespace: c.Param("namespace"), Path: c.Query("path"), Name: c.Query("name")}
}

// GetFile handles GET /api/v1/namespaces/:namespace/file?path=&name=
func (h *APIHandler) GetFile(c *gin.Context) {
	ref := apiRef(c)
	fc, err := middleware.GetAPI(c).FetchFile(c.Request.Context(), ref, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FileResponse{
		Namespace: ref.Namespace,
		Path:      ref.Path,
		Name:      ref.Name,
		Content:   fc.Content,
		CommitID:  fc.CommitID,
	})
}

// CreateFile handles POST /api/v1/namespaces/:namespace/file
func (h *APIHandler) CreateFile(c *gin.Context) {
	var req dto.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and message are required")
		return
	}
	ref := models.FileRef{Namespace: c.Param("namespace"), Path: req.Path, Name: req.Name}
	res, err := middleware.GetAPI(c).CreateFile(c.Request.Context(), ref, req.Content, req.Message, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SaveResponse{CommitID: res.CommitID, Message: res.Message})
}

// UpdateFile handles PUT /api/v1/namespaces/:namespace/file. The commitId of
// the read the edit started from is required; a stale one is rejected by the
// config server.
func (h *APIHandler) UpdateFile(c *gin.Context) {
	var req dto.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, message and commitId are required")
		return
	}
	res, err := middleware.GetAPI(c).UpdateFile(c.Request.Context(), service.UpdateInput{
		Ref:      models.FileRef{Namespace: c.Param("namespace"), Path: req.Path, Name: req.Name},
		Content:  req.Content,
		Message:  req.Message,
		CommitID: req.CommitID,
		Email:    middleware.GetEmail(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SaveResponse{CommitID: res.CommitID, Message: res.Message})
}

// DeleteFile handles DELETE /api/v1/namespaces/:namespace/file?path=&name=&message=
func (h *APIHandler) DeleteFile(c *gin.Context) {
	ref := apiRef(c)
	if err := middleware.GetAPI(c).DeleteFile(c.Request.Context(), ref, c.Query("message"), middleware.GetEmail(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Deleted " + ref.FullPath()})
}

// FileHistory handles GET /api/v1/namespaces/:namespace/file/history
func (h *APIHandler) FileHistory(c *gin.Context) {
	commits, err := middleware.GetAPI(c).FileHistory(c.Request.Context(), apiRef(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if commits == nil {
		commits = []models.Commit{}
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Commits: commits})
}

// FileChanges handles GET /api/v1/namespaces/:namespace/file/changes?commit=
func (h *APIHandler) FileChanges(c *gin.Context) {
	commit := c.Query("commit")
	if commit == "" {
		badRequest(c, "commit is required")
		return
	}
	text, err := middleware.GetAPI(c).FileChanges(c.Request.Context(), apiRef(c), commit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewChangesResponse(commit, text))
}

// Vault

// GetVault handles GET /api/v1/namespaces/:namespace/vault. Values are
// masked unless reveal=true.
func (h *APIHandler) GetVault(c *gin.Context) {
	ns := c.Param("namespace")
	secrets, err := middleware.GetAPI(c).GetVaultSecrets(c.Request.Context(), ns, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	reveal := c.Query("reveal") == "true"
	out := secrets.Clone()
	if !reveal {
		for k := range out {
			out[k] = service.MaskedValue
		}
	}
	c.JSON(http.StatusOK, dto.VaultResponse{Namespace: ns, Secrets: out, Revealed: reveal})
}

// UpdateVault handles PUT /api/v1/namespaces/:namespace/vault. The body is
// the complete map; keys left out are removed.
func (h *APIHandler) UpdateVault(c *gin.Context) {
	var req dto.UpdateVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "secrets and message are required")
		return
	}
	api := middleware.GetAPI(c)
	validator := api.Validator()
	for key := range req.Secrets {
		if err := validator.SecretKey(key); err != nil {
			respondError(c, err)
			return
		}
	}
	ns := c.Param("namespace")
	if err := api.UpdateVaultSecrets(c.Request.Context(), ns, middleware.GetEmail(c), req.Message, req.Secrets); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Vault updated"})
}

// SetSecret handles PUT /api/v1/namespaces/:namespace/vault/:key
func (h *APIHandler) SetSecret(c *gin.Context) {
	var req dto.SetSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ed, ok := h.loadVault(c)
	if !ok {
		return
	}
	if err := ed.Set(c.Request.Context(), c.Param("key"), req.Value, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Secret " + c.Param("key") + " saved"})
}

// DeleteSecret handles DELETE /api/v1/namespaces/:namespace/vault/:key
func (h *APIHandler) DeleteSecret(c *gin.Context) {
	ed, ok := h.loadVault(c)
	if !ok {
		return
	}
	if err := ed.Delete(c.Request.Context(), c.Param("key"), c.Query("message")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Secret " + c.Param("key") + " deleted"})
}

func (h *APIHandler) loadVault(c *gin.Context) (*service.VaultEditor, bool) {
	ed := service.NewVaultEditor(middleware.GetAPI(c), c.Param("namespace"), middleware.GetEmail(c))
	if err := ed.Load(c.Request.Context()); err != nil {
		respondError(c, err)
		return nil, false
	}
	return ed, true
}

// VaultHistory handles GET /api/v1/namespaces/:namespace/vault/history
func (h *APIHandler) VaultHistory(c *gin.Context) {
	commits, err := middleware.GetAPI(c).VaultHistory(c.Request.Context(), c.Param("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	if commits == nil {
		commits = []models.Commit{}
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Commits: commits})
}

// VaultChanges handles GET /api/v1/namespaces/:namespace/vault/changes?commit=
func (h *APIHandler) VaultChanges(c *gin.Context) {
	commit := c.Query("commit")
	if commit == "" {
		badRequest(c, "commit is required")
		return
	}
	text, err := middleware.GetAPI(c).VaultChanges(c.Request.Context(), c.Param("namespace"), commit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewChangesResponse(commit, text))
}

// Feeds

// Events handles GET /api/v1/namespaces/:namespace/events
func (h *APIHandler) Events(c *gin.Context) {
	events, err := middleware.GetAPI(c).ListEvents(c.Request.Context(), c.Param("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, dto.EventListResponse{Events: events})
}

// Notifications handles GET /api/v1/namespaces/:namespace/notifications
func (h *APIHandler) Notifications(c *gin.Context) {
	records, err := middleware.GetAPI(c).ListNotifications(c.Request.Context(), c.Param("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []models.NotifyRecord{}
	}
	c.JSON(http.StatusOK, dto.NotificationListResponse{Notifications: records})
}

// Export handles POST /api/v1/namespaces/:namespace/export
func (h *APIHandler) Export(c *gin.Context) {
	ns := c.Param("namespace")
	res, err := h.export.Export(c.Request.Context(), middleware.GetAPI(c), ns, middleware.GetEmail(c))
	if err != nil {
		h.log.Warn("Export failed", logger.Namespace(ns), logger.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ExportResponse{
		Namespace: res.Namespace,
		Prefix:    res.Prefix,
		Files:     len(res.Files),
		Locations: res.Locations,
		Revision:  res.Revision,
	})
}

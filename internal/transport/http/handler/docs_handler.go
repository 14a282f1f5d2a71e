package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/transport/view"
)

// DocsHandler serves the config-server README
type DocsHandler struct {
	pages *Pages
	docs  *service.DocsService
}

// NewDocsHandler creates a new DocsHandler instance
func NewDocsHandler(pages *Pages, docs *service.DocsService) *DocsHandler {
	return &DocsHandler{pages: pages, docs: docs}
}

// Page handles GET /docs
func (h *DocsHandler) Page(c *gin.Context) {
	d := h.docs.Get(c.Request.Context())
	h.pages.Render(c, http.StatusOK, "docs", Page{
		Title:  "Documentation",
		Header: view.Header{Title: "Documentation"},
		Data:   d,
	})
}

// API handles GET /api/v1/docs
func (h *DocsHandler) API(c *gin.Context) {
	d := h.docs.Get(c.Request.Context())
	c.JSON(http.StatusOK, dto.DocsResponse{
		Markdown: d.Markdown,
		Source:   d.Source,
		Fallback: d.Fallback,
	})
}

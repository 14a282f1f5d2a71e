package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/dialog"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/internal/transport/view"
)

// DashboardHandler serves the namespace grid and its create and delete dialogs
type DashboardHandler struct {
	pages *Pages
	rules config.DashboardConfig
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(pages *Pages, rules config.DashboardConfig) *DashboardHandler {
	return &DashboardHandler{pages: pages, rules: rules}
}

type namespaceForm struct {
	Name string
}

type dashboardData struct {
	Items     []view.NamespaceItem
	Query     string
	Dialog    string
	Form      namespaceForm
	LoadErr   string
	MinLength int
	MaxLength int
}

// Index handles GET /
func (h *DashboardHandler) Index(c *gin.Context) {
	d := dialog.New(namespaceForm{})
	kind := c.Query("dialog")
	switch kind {
	case "create":
		d.Open()
	case "delete":
		d.OpenWith(namespaceForm{Name: c.Query("namespace")})
	default:
		kind = ""
	}
	h.render(c, http.StatusOK, kind, d)
}

// CreateNamespace handles POST /namespaces
func (h *DashboardHandler) CreateNamespace(c *gin.Context) {
	h.submit(c, "create", func(ctx context.Context, l *service.NamespaceList, name string) error {
		return l.Create(ctx, name)
	})
}

// DeleteNamespace handles POST /namespaces/delete
func (h *DashboardHandler) DeleteNamespace(c *gin.Context) {
	h.submit(c, "delete", func(ctx context.Context, l *service.NamespaceList, name string) error {
		return l.Delete(ctx, name)
	})
}

func (h *DashboardHandler) submit(c *gin.Context, kind string, action func(context.Context, *service.NamespaceList, string) error) {
	list := service.NewNamespaceList(middleware.GetAPI(c))
	d := dialog.New(namespaceForm{})
	// the form post reopens the dialog the user submitted
	d.OpenWith(namespaceForm{Name: strings.TrimSpace(c.PostForm("namespace"))})

	ok := d.HandleSubmit(c.Request.Context(), func(ctx context.Context, f namespaceForm) error {
		return action(ctx, list, f.Name)
	})
	if ok {
		Redirect(c, "/")
		return
	}
	h.render(c, failureStatus(d.Err()), kind, d)
}

func (h *DashboardHandler) render(c *gin.Context, status int, kind string, d *dialog.Dialog[namespaceForm]) {
	list := service.NewNamespaceList(middleware.GetAPI(c))
	_ = list.Refresh(c.Request.Context())

	query := strings.TrimSpace(c.Query("q"))
	items := make([]view.NamespaceItem, 0, len(list.Names()))
	for _, name := range list.Names() {
		items = append(items, view.NamespaceItem(name))
	}

	data := dashboardData{
		Items:     view.Search(items, query),
		Query:     query,
		LoadErr:   loadError(list.Err()),
		MinLength: h.rules.NamespaceMinLength,
		MaxLength: h.rules.NamespaceMaxLength,
	}
	if d.IsOpen() {
		data.Dialog = kind
		data.Form = d.Data()
	}

	h.pages.Render(c, status, "dashboard", Page{
		Title: "Namespaces",
		Header: view.Header{
			Title:    "Namespaces",
			Subtitle: "Each namespace holds its own configuration tree and vault.",
			Actions: []view.Action{
				{Label: "New namespace", Href: "/?dialog=create", Method: http.MethodGet, Key: "n"},
			},
		},
		Data: data,
	})
}

// Package templates holds the server-rendered pages of the web dashboard
// and a gin HTML renderer that pairs every page with its layout.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"

	"github.com/bravo68web/confdash/internal/diff"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/view"
)

//go:embed layouts/*.html pages/*.html partials/*.html
var files embed.FS

// Layout names. A page picks its layout with a {{/* layout: name */}} first line.
const (
	LayoutDashboard = "dashboard"
	LayoutNamespace = "namespace"
	LayoutBare      = "bare"
)

// Renderer implements gin's render.HTMLRender over the embedded pages
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// New parses every page together with the partials and its layout
func New() (*Renderer, error) {
	partials, err := fs.Glob(files, "partials/*.html")
	if err != nil {
		return nil, err
	}
	pages, err := fs.Glob(files, "pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		body, err := fs.ReadFile(files, p)
		if err != nil {
			return nil, err
		}
		layout := layoutOf(string(body))
		set := append([]string{"layouts/base.html", "layouts/" + layout + ".html"}, partials...)
		set = append(set, p)

		t, err := template.New(path.Base(p)).Funcs(Funcs()).ParseFS(files, set...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[strings.TrimSuffix(path.Base(p), ".html")] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages["error"]
		data = map[string]any{"Title": "Not found", "Message": "Unknown page " + name}
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}

// Has reports whether a page exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func layoutOf(body string) string {
	first, _, _ := strings.Cut(body, "\n")
	if _, after, ok := strings.Cut(first, "layout:"); ok {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(after), "*/}}"))
		switch name {
		case LayoutDashboard, LayoutNamespace, LayoutBare:
			return name
		}
	}
	return LayoutBare
}

// Funcs are the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lineNo": func(n int) string {
			if n == 0 {
				return ""
			}
			return fmt.Sprint(n)
		},
		"rowClass": func(r diff.Row) string {
			return "diff-" + string(r.Type)
		},
		"severityClass": func(n models.Notification) string {
			return "toast-" + string(n.Severity)
		},

		"filesURL":        view.FilesURL,
		"fileURL":         view.FileURL,
		"editURL":         view.FileEditURL,
		"historyURL":      view.FileHistoryURL,
		"rawURL":          view.FileRawURL,
		"vaultURL":        view.VaultURL,
		"vaultHistoryURL": view.VaultHistoryURL,
		"eventsURL":       view.EventsURL,
		"notifyURL":       view.NotifyURL,
		"exportURL":       view.ExportURL,
	}
}

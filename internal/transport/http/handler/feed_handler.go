package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/internal/transport/view"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// FeedHandler serves the read-only events and notification feeds and the
// namespace export
type FeedHandler struct {
	pages  *Pages
	export *service.ExportService
	log    *logger.Logger
}

// NewFeedHandler creates a new FeedHandler instance
func NewFeedHandler(pages *Pages, export *service.ExportService) *FeedHandler {
	return &FeedHandler{
		pages:  pages,
		export: export,
		log:    logger.Get().WithFields(logger.Component("feed-handler")),
	}
}

type feedData struct {
	Items   []view.ListItem
	Empty   string
	LoadErr string
}

// Events handles GET /ns/:namespace/events
func (h *FeedHandler) Events(c *gin.Context) {
	ns := c.Param("namespace")
	events, err := middleware.GetAPI(c).ListEvents(c.Request.Context(), ns)
	items := make([]view.EventItem, 0, len(events))
	for _, e := range events {
		items = append(items, view.EventItem(e))
	}
	h.render(c, ns, "events", "Events", feedData{
		Items:   view.Items(view.Search(items, c.Query("q"))),
		Empty:   "No events recorded for this namespace.",
		LoadErr: loadError(err),
	})
}

// Notifications handles GET /ns/:namespace/notify
func (h *FeedHandler) Notifications(c *gin.Context) {
	ns := c.Param("namespace")
	records, err := middleware.GetAPI(c).ListNotifications(c.Request.Context(), ns)
	items := make([]view.NotifyItem, 0, len(records))
	for _, r := range records {
		items = append(items, view.NotifyItem(r))
	}
	h.render(c, ns, "notify", "Notifications", feedData{
		Items:   view.Items(view.Search(items, c.Query("q"))),
		Empty:   "No notifications have been sent.",
		LoadErr: loadError(err),
	})
}

func (h *FeedHandler) render(c *gin.Context, ns, section, title string, data feedData) {
	h.pages.Render(c, http.StatusOK, "feed", Page{
		Title:     title,
		Namespace: ns,
		Section:   section,
		Header:    view.Header{Title: title},
		Data:      data,
	})
}

// Export handles POST /ns/:namespace/export
func (h *FeedHandler) Export(c *gin.Context) {
	ns := c.Param("namespace")
	res, err := h.export.Export(c.Request.Context(), middleware.GetAPI(c), ns, middleware.GetEmail(c))
	rec := middleware.GetRecorder(c)
	if err != nil {
		h.log.Warn("Export failed", logger.Namespace(ns), logger.Error(err))
		rec.Notify(notify.New(models.SeverityError, "Export failed: "+apperrors.Message(err)))
	} else {
		msg := fmt.Sprintf("Exported %d files to %s", len(res.Files), res.Prefix)
		if res.Revision != "" {
			msg += " at revision " + res.Revision
		}
		rec.Notify(notify.New(models.SeveritySuccess, msg))
	}
	Redirect(c, view.NamespaceURL(ns))
}

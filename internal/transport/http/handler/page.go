package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/internal/transport/view"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

// Page is the data every template receives
type Page struct {
	Title         string
	User          *models.User
	Namespace     string
	Section       string
	Header        view.Header
	Notifications []models.Notification
	Data          any
}

// Pages renders templates with the notifications of the request attached
type Pages struct {
	sessions *service.SessionService
}

// NewPages creates a page renderer that drains flash from sessions
func NewPages(sessions *service.SessionService) *Pages {
	return &Pages{sessions: sessions}
}

// Render writes page name. Flash stored by a previous redirect comes first,
// then whatever the current request reported.
func (p *Pages) Render(c *gin.Context, status int, name string, page Page) {
	if sess := middleware.GetSession(c); sess != nil {
		page.User = &sess.User
		if p.sessions != nil {
			page.Notifications = append(page.Notifications, p.sessions.TakeFlash(c.Request.Context(), sess)...)
		}
	}
	page.Notifications = append(page.Notifications, middleware.GetRecorder(c).Drain()...)
	c.HTML(status, name, page)
}

// Error renders the generic error page
func (p *Pages) Error(c *gin.Context, status int, message string) {
	p.Render(c, status, "error", Page{
		Title: http.StatusText(status),
		Data:  errorData{Message: message},
	})
}

// Redirect answers a form post with a 303 to target
func Redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
}

type errorData struct {
	Message string
}

// failureStatus is the status of a page re-rendered after a failed action
func failureStatus(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case apperrors.IsConnection(err):
		return http.StatusBadGateway
	}
	status := apperrors.Status(err)
	if status < 400 {
		return http.StatusBadGateway
	}
	return status
}

// loadError is the inline placeholder of a page whose data could not be
// fetched. The cause itself is already among the notifications.
func loadError(err error) string {
	if err == nil {
		return ""
	}
	return "Could not load this page. Reload to try again."
}

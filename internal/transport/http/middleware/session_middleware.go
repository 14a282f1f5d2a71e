package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// SessionContextKey holds the *models.Session of a cookie request
	SessionContextKey ContextKey = "session"

	// APIContextKey holds the *service.APIService authenticated for the request
	APIContextKey ContextKey = "api"

	// RecorderContextKey holds the *notify.Recorder collecting this request's notifications
	RecorderContextKey ContextKey = "recorder"

	// closedContextKey marks a session that was ended during the request
	closedContextKey ContextKey = "session_closed"
)

// CookieName is the browser cookie carrying the session id
const CookieName = "confdash_session"

// SessionMiddleware resolves the dashboard session of a request and hands the
// handlers an API service that authenticates as it.
type SessionMiddleware struct {
	sessions *service.SessionService
	secure   bool
	maxAge   int
	log      *logger.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware instance
func NewSessionMiddleware(sessions *service.SessionService, secureCookies bool, maxAge int) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		secure:   secureCookies,
		maxAge:   maxAge,
		log:      logger.Get().WithFields(logger.Component("session-middleware")),
	}
}

// RequirePage guards browser routes. Requests without a live session are
// redirected to the login page. Notifications left over when the handler
// redirects are stored in the session and shown on the next page.
func (m *SessionMiddleware) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(CookieName)
		sess, err := m.sessions.Resume(c.Request.Context(), id)
		if err != nil {
			if !apperrors.IsUnauthorized(err) {
				m.log.Error("Failed to resume session", logger.Error(err))
			}
			m.ClearCookie(c)
			target := "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			if errors.Is(err, apperrors.ErrSessionExpired) {
				target += "&expired=1"
			}
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}

		rec := notify.NewRecorder()
		c.Set(string(SessionContextKey), sess)
		c.Set(string(RecorderContextKey), rec)
		c.Set(string(APIContextKey), m.sessions.API(sess, notify.Multi{rec, notify.NewLog(m.log)}))

		c.Next()

		status := c.Writer.Status()
		if status < 300 || status >= 400 || c.GetBool(string(closedContextKey)) {
			return
		}
		if pending := rec.Drain(); len(pending) > 0 {
			if err := m.sessions.Flash(c.Request.Context(), sess, pending...); err != nil {
				m.log.Warn("Failed to store flash", logger.SessionID(sess.ID), logger.Error(err))
			}
		}
	}
}

// RequireAPI guards the JSON API. A bearer token is used as is; otherwise
// the session cookie is resolved the same way as for pages.
func (m *SessionMiddleware) RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := notify.NewRecorder()
		notifier := notify.Multi{rec, notify.NewLog(m.log)}

		var (
			api *service.APIService
			err error
		)
		if token := auth.TokenFromHeader(c.GetHeader("Authorization")); token != "" {
			api, err = m.sessions.Bearer(token, notifier)
		} else {
			id, _ := c.Cookie(CookieName)
			var sess *models.Session
			sess, err = m.sessions.Resume(c.Request.Context(), id)
			if err == nil {
				c.Set(string(SessionContextKey), sess)
				api = m.sessions.API(sess, notifier)
			}
		}
		if err != nil {
			m.log.Debug("API request rejected",
				logger.Path(c.Request.URL.Path),
				logger.ClientIP(c.ClientIP()),
				logger.Error(err),
			)
			c.AbortWithStatusJSON(apperrors.Status(err), gin.H{
				"error":   "unauthorized",
				"message": apperrors.Message(err),
			})
			return
		}

		c.Set(string(RecorderContextKey), rec)
		c.Set(string(APIContextKey), api)
		c.Next()
	}
}

// SetCookie stores the session id in the browser
func (m *SessionMiddleware) SetCookie(c *gin.Context, sess *models.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sess.ID, m.maxAge, "/", "", m.secure, true)
}

// ClearCookie removes the session cookie
func (m *SessionMiddleware) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}

// MarkClosed tells RequirePage not to write flash into a session that was just ended
func MarkClosed(c *gin.Context) {
	c.Set(string(closedContextKey), true)
}

// GetSession returns the session of the request, nil for bearer or anonymous requests
func GetSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(string(SessionContextKey)); ok {
		if sess, ok := v.(*models.Session); ok {
			return sess
		}
	}
	return nil
}

// GetAPI returns the API service authenticated for the request
func GetAPI(c *gin.Context) *service.APIService {
	if v, ok := c.Get(string(APIContextKey)); ok {
		if api, ok := v.(*service.APIService); ok {
			return api
		}
	}
	return nil
}

// GetRecorder returns the notifications collected during the request
func GetRecorder(c *gin.Context) *notify.Recorder {
	if v, ok := c.Get(string(RecorderContextKey)); ok {
		if rec, ok := v.(*notify.Recorder); ok {
			return rec
		}
	}
	return notify.NewRecorder()
}

// GetEmail returns the email file and vault operations are recorded under
func GetEmail(c *gin.Context) string {
	if sess := GetSession(c); sess != nil {
		return sess.User.Email
	}
	if api := GetAPI(c); api != nil {
		return auth.TokenEmail(api.Token())
	}
	return ""
}

package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	sessions *service.SessionService
	cookies  *middleware.SessionMiddleware
	pages    *Pages
	log      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(
	sessions *service.SessionService,
	cookies *middleware.SessionMiddleware,
	pages *Pages,
) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cookies:  cookies,
		pages:    pages,
		log:      logger.Get().WithFields(logger.Component("auth-handler")),
	}
}

type loginData struct {
	Username string
	Next     string
	Expired  bool
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if id, err := c.Cookie(middleware.CookieName); err == nil && id != "" {
		if _, err := h.sessions.Resume(c.Request.Context(), id); err == nil {
			Redirect(c, "/")
			return
		}
	}
	h.pages.Render(c, http.StatusOK, "login", Page{
		Title: "Sign in",
		Data: loginData{
			Next:    safeNext(c.Query("next")),
			Expired: c.Query("expired") != "",
		},
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	next := safeNext(c.PostForm("next"))
	if err := c.ShouldBind(&req); err != nil {
		h.pages.Render(c, http.StatusUnprocessableEntity, "login", Page{
			Title:         "Sign in",
			Notifications: []models.Notification{notify.New(models.SeverityWarning, "Username and password are required")},
			Data:          loginData{Username: req.Username, Next: next},
		})
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Info("Sign-in failed", logger.Username(req.Username), logger.Error(err))
		h.pages.Render(c, failureStatus(err), "login", Page{
			Title:         "Sign in",
			Notifications: []models.Notification{notify.New(models.SeverityError, apperrors.Message(err))},
			Data:          loginData{Username: req.Username, Next: next},
		})
		return
	}

	h.cookies.SetCookie(c, sess)
	Redirect(c, next)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.GetSession(c); sess != nil {
		if err := h.sessions.Logout(c.Request.Context(), sess); err != nil {
			h.log.Warn("Failed to delete session", logger.SessionID(sess.ID), logger.Error(err))
		}
	}
	middleware.MarkClosed(c)
	h.cookies.ClearCookie(c)
	Redirect(c, "/login")
}

// APILogin handles POST /api/v1/auth/login. The token is handed to the
// caller, who sends it back as a bearer token; no session is stored.
func (h *AuthHandler) APILogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "bad_request",
			Message: "username and password are required",
		})
		return
	}

	creds, err := h.sessions.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.LoginResponse{Token: creds.Token, User: creds.User}
	if exp, ok := auth.TokenExpiry(creds.Token); ok {
		resp.ExpiresAt = &exp
	}
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	api := middleware.GetAPI(c)
	user, err := api.Verify(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.MeResponse{User: user, Email: middleware.GetEmail(c)}
	if exp, ok := auth.TokenExpiry(api.Token()); ok {
		resp.ExpiresAt = &exp
	}
	c.JSON(http.StatusOK, resp)
}

// safeNext keeps redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

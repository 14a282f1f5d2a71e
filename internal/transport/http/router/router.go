package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/internal/injectable"
	"github.com/bravo68web/confdash/internal/server"
	"github.com/bravo68web/confdash/internal/transport/http/handler"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
	"github.com/bravo68web/confdash/pkg/logger"
)

type Router struct {
	server   *server.Server
	Deps     *injectable.Dependencies
	pages    *handler.Pages
	sessions *middleware.SessionMiddleware
}

// NewRouter creates a new Router instance.
func NewRouter(s *server.Server, deps *injectable.Dependencies) *Router {
	cfg := s.Config.Server
	return &Router{
		server:   s,
		Deps:     deps,
		pages:    handler.NewPages(deps.Sessions),
		sessions: middleware.NewSessionMiddleware(deps.Sessions, cfg.SecureCookies, int(cfg.SessionTTL.Seconds())),
	}
}

// RegisterRoutes sets up the routes and middleware for the server.
func (r *Router) RegisterRoutes() {
	log := logger.Get().WithFields(logger.Component("http"))

	r.server.Use(middleware.AccessLog(log))
	r.server.Use(middleware.Recover(log, r.pages.Error))
	r.server.Use(middleware.CORSMiddleware(r.server.Config.Server.AllowedOrigins))
	r.server.NoRoute(func(c *gin.Context) {
		if middleware.IsAPIRequest(c) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: "no such endpoint"})
			return
		}
		r.pages.Error(c, http.StatusNotFound, "Page not found")
	})

	r.healthRouter()
	r.authRouter()
	r.pageRouter()
	r.apiRouter()
	r.openAPIRouter()
}

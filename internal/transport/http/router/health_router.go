package router

import (
	"github.com/bravo68web/confdash/internal/transport/http/handler"
)

func (r *Router) healthRouter() {
	if r.Deps.DB != nil {
		r.server.GET("/healthz", handler.HealthHandler(r.Deps.DB))
		return
	}
	r.server.GET("/healthz", handler.HealthHandler(nil))
}

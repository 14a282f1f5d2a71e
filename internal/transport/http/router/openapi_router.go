package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/pkg/logger"
)

// openAPIRouter serves the generated API description. It is built lazily
// so every route registered before the first request is included.
func (r *Router) openAPIRouter() {
	r.server.GET("/api/openapi.json", func(c *gin.Context) {
		out, err := r.server.OpenAPIGenerator.Generate().JSON()
		if err != nil {
			logger.Warn("Failed to render OpenAPI document", logger.Error(err))
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "application/json", out)
	})
	r.server.GET("/api/openapi.yaml", func(c *gin.Context) {
		out, err := r.server.OpenAPIGenerator.Generate().YAML()
		if err != nil {
			logger.Warn("Failed to render OpenAPI document", logger.Error(err))
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "application/yaml", out)
	})
}

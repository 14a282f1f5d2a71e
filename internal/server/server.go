package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/transport/http/templates"
	"github.com/bravo68web/confdash/pkg/logger"
	"github.com/bravo68web/confdash/pkg/openapi"
)

// Server is the dashboard's HTTP server
type Server struct {
	*gin.Engine

	Config           *config.Config
	OpenAPIGenerator *openapi.Generator
	log              *logger.Logger
}

// New creates the engine with the HTML templates loaded. Routes are added
// by the router package.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	renderer, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	engine := gin.New()
	engine.HTMLRender = renderer
	engine.RedirectTrailingSlash = true

	gen := openapi.NewGenerator(engine, openapi.Info{
		Title:       "confdash API",
		Description: "JSON API of the config-server dashboard",
		Version:     "1.0.0",
	}, []openapi.Server{{URL: "/", Description: "this dashboard"}}, []openapi.Tag{
		{Name: "Auth"},
		{Name: "Namespaces"},
		{Name: "Files"},
		{Name: "Vault"},
		{Name: "Feeds"},
		{Name: "Docs"},
	}).WithPrefix("/api/")
	gen.AddSecurityScheme("bearerAuth", openapi.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
		Description:  "Token issued by the config server",
	})
	gen.AddSecurityScheme("sessionCookie", openapi.SecurityScheme{
		Type: "apiKey",
		In:   "cookie",
		Name: "confdash_session",
	})

	return &Server{
		Engine:           engine,
		Config:           cfg,
		OpenAPIGenerator: gen,
		log:              logger.Get().WithFields(logger.Component("http-server")),
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.ServerAddress(),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

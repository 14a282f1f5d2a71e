package router

import (
	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/internal/transport/http/handler"
	"github.com/bravo68web/confdash/pkg/openapi"
)

func (r *Router) authRouter() {
	h := handler.NewAuthHandler(r.Deps.Sessions, r.sessions, r.pages)

	// Browser sign-in
	r.server.GET("/login", h.LoginPage)
	r.server.POST("/login", h.Login)
	r.server.POST("/logout", r.sessions.RequirePage(), h.Logout)

	r.server.OpenAPIGenerator.RegisterDocs("POST", "/api/v1/auth/login", openapi.RouteDocs{
		Summary:     "Sign in",
		Description: "Exchange config-server credentials for a bearer token",
		Tags:        []string{"Auth"},
		RequestBody: dto.LoginRequest{},
		Public:      true,
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Signed in", Model: dto.LoginResponse{}},
			400: {Description: "Missing username or password", Model: dto.ErrorResponse{}},
			401: {Description: "Invalid credentials", Model: dto.ErrorResponse{}},
		},
	})
	r.server.OpenAPIGenerator.RegisterDocs("GET", "/api/v1/me", openapi.RouteDocs{
		Summary: "Current user",
		Tags:    []string{"Auth"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Successful response", Model: dto.MeResponse{}},
			401: {Description: "Unauthorized", Model: dto.ErrorResponse{}},
		},
	})

	v1 := r.server.Group("/api/v1")
	{
		v1.POST("/auth/login", h.APILogin)
		v1.GET("/me", r.sessions.RequireAPI(), h.Me)
	}
}

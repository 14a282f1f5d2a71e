package router

import (
	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/internal/transport/http/handler"
	"github.com/bravo68web/confdash/pkg/openapi"
)

var (
	fileQuery = []openapi.QueryParam{
		{Name: "path", Description: "Directory inside the namespace"},
		{Name: "name", Description: "File name", Required: true},
	}
	commitQuery = openapi.QueryParam{Name: "commit", Description: "Commit id", Required: true}

	unauthorized = openapi.ResponseDoc{Description: "Unauthorized", Model: dto.ErrorResponse{}}
	backendDown  = openapi.ResponseDoc{Description: "Config server unreachable", Model: dto.ErrorResponse{}}
)

func (r *Router) apiRouter() {
	h := handler.NewAPIHandler(r.Deps.Export)
	docs := handler.NewDocsHandler(r.pages, r.Deps.Docs)

	r.registerAPIDocs()

	v1 := r.server.Group("/api/v1")
	v1.Use(r.sessions.RequireAPI())
	{
		v1.GET("/namespaces", h.ListNamespaces)
		v1.POST("/namespaces", h.CreateNamespace)
		v1.DELETE("/namespaces/:namespace", h.DeleteNamespace)

		ns := v1.Group("/namespaces/:namespace")
		{
			ns.GET("/files", h.ListFiles)

			ns.GET("/file", h.GetFile)
			ns.POST("/file", h.CreateFile)
			ns.PUT("/file", h.UpdateFile)
			ns.DELETE("/file", h.DeleteFile)
			ns.GET("/file/history", h.FileHistory)
			ns.GET("/file/changes", h.FileChanges)

			ns.GET("/vault", h.GetVault)
			ns.PUT("/vault", h.UpdateVault)
			ns.GET("/vault/history", h.VaultHistory)
			ns.GET("/vault/changes", h.VaultChanges)
			ns.PUT("/vault/keys/:key", h.SetSecret)
			ns.DELETE("/vault/keys/:key", h.DeleteSecret)

			ns.GET("/events", h.Events)
			ns.GET("/notifications", h.Notifications)
			ns.POST("/export", h.Export)
		}

		v1.GET("/docs", docs.API)
	}
}

func (r *Router) registerAPIDocs() {
	gen := r.server.OpenAPIGenerator

	// Namespaces
	gen.RegisterDocs("GET", "/api/v1/namespaces", openapi.RouteDocs{
		Summary: "List namespaces",
		Tags:    []string{"Namespaces"},
		Query:   []openapi.QueryParam{{Name: "q", Description: "Case-insensitive substring filter"}},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Successful response", Model: dto.NamespaceListResponse{}},
			401: unauthorized,
			502: backendDown,
		},
	})
	gen.RegisterDocs("POST", "/api/v1/namespaces", openapi.RouteDocs{
		Summary:     "Create namespace",
		Description: "Names are lowercase letters, digits and hyphens and may not start or end with a hyphen",
		Tags:        []string{"Namespaces"},
		RequestBody: dto.CreateNamespaceRequest{},
		Responses: map[int]openapi.ResponseDoc{
			201: {Description: "Namespace created", Model: dto.MessageResponse{}},
			422: {Description: "Invalid name", Model: dto.ErrorResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("DELETE", "/api/v1/namespaces/:namespace", openapi.RouteDocs{
		Summary: "Delete namespace",
		Tags:    []string{"Namespaces"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Namespace deleted", Model: dto.MessageResponse{}},
			401: unauthorized,
		},
	})

	// Files
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/files", openapi.RouteDocs{
		Summary:     "List directory",
		Description: "Directories carry a trailing slash",
		Tags:        []string{"Files"},
		Query:       fileQuery[:1],
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Successful response", Model: dto.TreeResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/file", openapi.RouteDocs{
		Summary: "Read file",
		Tags:    []string{"Files"},
		Query:   fileQuery,
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "File content and the commit it was read at", Model: dto.FileResponse{}},
			401: unauthorized,
			404: {Description: "File not found", Model: dto.ErrorResponse{}},
		},
	})
	gen.RegisterDocs("POST", "/api/v1/namespaces/:namespace/file", openapi.RouteDocs{
		Summary:     "Create file",
		Tags:        []string{"Files"},
		RequestBody: dto.CreateFileRequest{},
		Responses: map[int]openapi.ResponseDoc{
			201: {Description: "File created", Model: dto.SaveResponse{}},
			422: {Description: "Invalid name, message or YAML", Model: dto.ErrorResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("PUT", "/api/v1/namespaces/:namespace/file", openapi.RouteDocs{
		Summary:     "Update file",
		Description: "commitId must be the commit the edit started from",
		Tags:        []string{"Files"},
		RequestBody: dto.UpdateFileRequest{},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Changes committed", Model: dto.SaveResponse{}},
			409: {Description: "File changed since it was read", Model: dto.ErrorResponse{}},
			422: {Description: "Invalid message or YAML", Model: dto.ErrorResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("DELETE", "/api/v1/namespaces/:namespace/file", openapi.RouteDocs{
		Summary: "Delete file",
		Tags:    []string{"Files"},
		Query:   append(append([]openapi.QueryParam{}, fileQuery...), openapi.QueryParam{Name: "message"}),
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "File deleted", Model: dto.MessageResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/file/history", openapi.RouteDocs{
		Summary: "File history",
		Tags:    []string{"Files"},
		Query:   fileQuery,
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Commits, newest first", Model: dto.HistoryResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/file/changes", openapi.RouteDocs{
		Summary: "File changes of one commit",
		Tags:    []string{"Files"},
		Query:   append(append([]openapi.QueryParam{}, fileQuery...), commitQuery),
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Unified diff and parsed rows", Model: dto.ChangesResponse{}},
			401: unauthorized,
		},
	})

	// Vault
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/vault", openapi.RouteDocs{
		Summary: "Read vault",
		Tags:    []string{"Vault"},
		Query:   []openapi.QueryParam{{Name: "reveal", Description: "true to return values in clear text"}},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Secrets", Model: dto.VaultResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("PUT", "/api/v1/namespaces/:namespace/vault", openapi.RouteDocs{
		Summary:     "Replace vault",
		Description: "The body is the complete map; keys left out are removed",
		Tags:        []string{"Vault"},
		RequestBody: dto.UpdateVaultRequest{},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Vault updated", Model: dto.MessageResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("PUT", "/api/v1/namespaces/:namespace/vault/keys/:key", openapi.RouteDocs{
		Summary:     "Set secret",
		Tags:        []string{"Vault"},
		RequestBody: dto.SetSecretRequest{},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Secret saved", Model: dto.MessageResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("DELETE", "/api/v1/namespaces/:namespace/vault/keys/:key", openapi.RouteDocs{
		Summary: "Delete secret",
		Tags:    []string{"Vault"},
		Query:   []openapi.QueryParam{{Name: "message"}},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Secret deleted", Model: dto.MessageResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/vault/history", openapi.RouteDocs{
		Summary: "Vault history",
		Tags:    []string{"Vault"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Commits, newest first", Model: dto.HistoryResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/vault/changes", openapi.RouteDocs{
		Summary: "Vault changes of one commit",
		Tags:    []string{"Vault"},
		Query:   []openapi.QueryParam{commitQuery},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Unified diff and parsed rows", Model: dto.ChangesResponse{}},
			401: unauthorized,
		},
	})

	// Feeds
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/events", openapi.RouteDocs{
		Summary: "Events feed",
		Tags:    []string{"Feeds"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Successful response", Model: dto.EventListResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("GET", "/api/v1/namespaces/:namespace/notifications", openapi.RouteDocs{
		Summary: "Notification deliveries",
		Tags:    []string{"Feeds"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Successful response", Model: dto.NotificationListResponse{}},
			401: unauthorized,
		},
	})
	gen.RegisterDocs("POST", "/api/v1/namespaces/:namespace/export", openapi.RouteDocs{
		Summary:     "Export namespace",
		Description: "Copies every file of the namespace into export storage",
		Tags:        []string{"Feeds"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "Export written", Model: dto.ExportResponse{}},
			401: unauthorized,
		},
	})

	gen.RegisterDocs("GET", "/api/v1/docs", openapi.RouteDocs{
		Summary: "Documentation",
		Tags:    []string{"Docs"},
		Responses: map[int]openapi.ResponseDoc{
			200: {Description: "README markdown", Model: dto.DocsResponse{}},
		},
	})
}

package router

import (
	"github.com/bravo68web/confdash/internal/transport/http/handler"
)

func (r *Router) pageRouter() {
	dashboard := handler.NewDashboardHandler(r.pages, r.server.Config.Dashboard)
	files := handler.NewFileHandler(r.pages)
	vault := handler.NewVaultHandler(r.pages)
	feeds := handler.NewFeedHandler(r.pages, r.Deps.Export)
	docs := handler.NewDocsHandler(r.pages, r.Deps.Docs)

	pages := r.server.Group("/")
	pages.Use(r.sessions.RequirePage())
	{
		pages.GET("/", dashboard.Index)
		pages.POST("/namespaces", dashboard.CreateNamespace)
		pages.POST("/namespaces/delete", dashboard.DeleteNamespace)
		pages.GET("/docs", docs.Page)

		ns := pages.Group("/ns/:namespace")
		{
			ns.GET("", files.Index)
			ns.GET("/files", files.Files)
			ns.POST("/files", files.CreateFile)

			ns.GET("/file", files.ViewFile)
			ns.GET("/file/edit", files.EditFile)
			ns.POST("/file/edit", files.EditFile)
			ns.POST("/file/preview", files.PreviewFile)
			ns.POST("/file/commit", files.CommitFile)
			ns.GET("/file/history", files.FileHistory)
			ns.GET("/file/diff", files.FileDiff)
			ns.GET("/file/raw", files.RawFile)
			ns.POST("/file/delete", files.DeleteFile)

			ns.GET("/vault", vault.Vault)
			ns.POST("/vault", vault.SetSecret)
			ns.POST("/vault/delete", vault.DeleteSecret)
			ns.GET("/vault/history", vault.History)
			ns.GET("/vault/diff", vault.Diff)

			ns.GET("/events", feeds.Events)
			ns.GET("/notify", feeds.Notifications)
			ns.POST("/export", feeds.Export)
		}
	}
}

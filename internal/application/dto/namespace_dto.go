package dto

import (
	"github.com/bravo68web/confdash/internal/domain/models"
)

// CreateNamespaceRequest creates a namespace
type CreateNamespaceRequest struct {
	Namespace string `json:"namespace" form:"namespace" binding:"required"`
}

// NamespaceListResponse lists namespace names, filtered by the q parameter
type NamespaceListResponse struct {
	Namespaces []string `json:"namespaces"`
	Total      int      `json:"total"`
}

// TreeResponse lists one directory of a namespace
type TreeResponse struct {
	Namespace string             `json:"namespace"`
	Path      string             `json:"path"`
	Entries   []models.TreeEntry `json:"entries"`
}

// EventListResponse lists the commits of a namespace
type EventListResponse struct {
	Events []models.Event `json:"events"`
}

// NotificationListResponse lists change notification deliveries
type NotificationListResponse struct {
	Notifications []models.NotifyRecord `json:"notifications"`
}

// ExportResponse reports where a namespace export was written
type ExportResponse struct {
	Namespace string   `json:"namespace"`
	Prefix    string   `json:"prefix"`
	Files     int      `json:"files"`
	Locations []string `json:"locations"`
	// Revision is the commit recorded by git export storage
	Revision string `json:"revision,omitempty"`
}

// DocsResponse carries the documentation markdown
type DocsResponse struct {
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
	Fallback bool   `json:"fallback"`
}

package service

import (
	"context"
	"sync"
)

// NamespaceList keeps the namespace names shown on the dashboard together
// with their loading and error state. Mutations go through the API service
// and are followed by a refetch.
type NamespaceList struct {
	api *APIService

	mu      sync.RWMutex
	names   []string
	loading bool
	err     error
}

// NewNamespaceList creates an empty list backed by api
func NewNamespaceList(api *APIService) *NamespaceList {
	return &NamespaceList{api: api}
}

// Refresh refetches the list
func (l *NamespaceList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	names, err := l.api.ListNamespaces(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.err = err
	if err == nil {
		l.names = names
	}
	return err
}

// Create creates a namespace and refetches
func (l *NamespaceList) Create(ctx context.Context, name string) error {
	if err := l.api.CreateNamespace(ctx, name); err != nil {
		return err
	}
	_ = l.Refresh(ctx)
	return nil
}

// Delete deletes a namespace and refetches
func (l *NamespaceList) Delete(ctx context.Context, name string) error {
	if err := l.api.DeleteNamespace(ctx, name); err != nil {
		return err
	}
	_ = l.Refresh(ctx)
	return nil
}

// Names returns a copy of the last fetched names
func (l *NamespaceList) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Loading reports whether a fetch is in flight
func (l *NamespaceList) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err returns the error of the last fetch
func (l *NamespaceList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

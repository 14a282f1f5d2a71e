package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]string
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	m.objects[key] = string(data)
	return "mem://" + key, nil
}

func (m *memoryStorage) Type() string { return "memory" }

func TestExportWalksTree(t *testing.T) {
	fb := newFakeBackend(t)
	fb.handle("/namespace/files", func(r recordedRequest) (int, string) {
		switch r.Body["path"] {
		case "":
			return http.StatusOK, `["app.yaml","services/"]`
		case "services":
			return http.StatusOK, `["db.yaml"]`
		}
		return http.StatusOK, `[]`
	})
	fb.handle("/config/fetch", func(r recordedRequest) (int, string) {
		return http.StatusOK, `{"content":"name: ` + r.Body["appName"].(string) + `\n","commitId":"c1"}`
	})
	api, _ := newTestAPI(t, fb)

	store := &memoryStorage{}
	svc := NewExportService(store)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	res, err := svc.Export(context.Background(), api, "dev", "ana@example.com")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if diff := cmp.Diff([]string{"app.yaml", "services/db.yaml"}, res.Files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
	want := map[string]string{
		"dev/20240501T120000Z/app.yaml":          "name: app.yaml\n",
		"dev/20240501T120000Z/services/db.yaml": "name: db.yaml\n",
	}
	if diff := cmp.Diff(want, store.objects); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
}

func TestExportStopsOnError(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/namespace/files", http.StatusOK, `["app.yaml"]`)
	fb.on("/config/fetch", http.StatusNotFound, `{"message":"File not found"}`)
	api, _ := newTestAPI(t, fb)

	store := &memoryStorage{}
	if _, err := NewExportService(store).Export(context.Background(), api, "dev", ""); err == nil {
		t.Fatal("Export() error = nil, want error")
	}
	if len(store.objects) != 0 {
		t.Errorf("stored %d objects, want 0", len(store.objects))
	}
}

type committingStorage struct {
	memoryStorage
	messages []string
}

func (c *committingStorage) Commit(_ context.Context, message, _ string) (string, error) {
	c.messages = append(c.messages, message)
	return "abc123", nil
}

func TestExportCommitsSnapshot(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/namespace/files", http.StatusOK, `["app.yaml"]`)
	fb.on("/config/fetch", http.StatusOK, `{"content":"a: 1\n","commitId":"c1"}`)
	api, _ := newTestAPI(t, fb)

	store := &committingStorage{}
	res, err := NewExportService(store).Export(context.Background(), api, "dev", "ana@example.com")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Revision != "abc123" {
		t.Errorf("Revision = %q, want abc123", res.Revision)
	}
	if diff := cmp.Diff([]string{"Export dev (1 files)"}, store.messages); diff != "" {
		t.Errorf("commit messages mismatch (-want +got):\n%s", diff)
	}
}

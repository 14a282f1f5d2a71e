package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bravo68web/confdash/internal/config"
)

func TestDocsServiceFetchesReadme(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/BRAVO68WEB/config-server/readme" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"file","encoding":"base64","content":"` +
			base64.StdEncoding.EncodeToString([]byte("# config-server\n")) +
			`","html_url":"https://github.com/BRAVO68WEB/config-server/blob/main/README.md"}`))
	}))
	defer srv.Close()

	svc := NewDocsService(config.DocsConfig{
		Owner:    "BRAVO68WEB",
		Repo:     "config-server",
		Fallback: "fallback",
		APIURL:   srv.URL,
	}, srv.Client())

	docs := svc.Get(context.Background())
	if docs.Fallback || docs.Markdown != "# config-server\n" {
		t.Fatalf("Get() = %+v", docs)
	}
	svc.Get(context.Background())
	if hits.Load() != 1 {
		t.Errorf("readme fetched %d times, want 1 (cached)", hits.Load())
	}
}

func TestDocsServiceFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewDocsService(config.DocsConfig{
		Owner:    "BRAVO68WEB",
		Repo:     "config-server",
		Fallback: "# Built-in docs",
		APIURL:   srv.URL,
	}, srv.Client())

	docs := svc.Get(context.Background())
	if !docs.Fallback || docs.Markdown != "# Built-in docs" {
		t.Errorf("Get() = %+v, want fallback", docs)
	}
}

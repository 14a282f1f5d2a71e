package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/infrastructure/configserver"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/validation"
)

type recordedRequest struct {
	Path   string
	Auth   string
	Body   map[string]any
	Form   url.Values
	Method string
}

// fakeBackend is an in-process config server answering each endpoint with a
// canned status and body
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(recordedRequest) (int, string)
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, routes: make(map[string]func(recordedRequest) (int, string))}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/config-server")
	rec := recordedRequest{Path: path, Auth: r.Header.Get("Authorization"), Method: r.Method}

	raw, _ := io.ReadAll(r.Body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		rec.Form, _ = url.ParseQuery(string(raw))
	} else if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	h := fb.routes[path]
	fb.mu.Unlock()

	if h == nil {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	status, body := h(rec)
	if strings.HasPrefix(strings.TrimSpace(body), "{") || strings.HasPrefix(strings.TrimSpace(body), "[") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (fb *fakeBackend) on(path string, status int, body string) {
	fb.handle(path, func(recordedRequest) (int, string) { return status, body })
}

func (fb *fakeBackend) handle(path string, h func(recordedRequest) (int, string)) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[path] = h
}

func (fb *fakeBackend) calls(path string) []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []recordedRequest
	for _, r := range fb.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (fb *fakeBackend) total() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

// newTestAPI returns an authenticated API service talking to fb and the
// recorder it notifies
func newTestAPI(t *testing.T, fb *fakeBackend) (*APIService, *notify.Recorder) {
	t.Helper()
	client := configserver.New(&config.BackendConfig{
		BaseURL: fb.srv.URL + "/config-server",
		Timeout: 2 * time.Second,
	})
	rec := notify.NewRecorder()
	api := NewAPIService(client, validation.New(3, 63), rec).WithToken("test-token")
	return api, rec
}

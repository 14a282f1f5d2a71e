package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/injectable"
	"github.com/bravo68web/confdash/internal/server"
	"github.com/bravo68web/confdash/internal/transport/http/middleware"
)

// configServer is a minimal in-memory config server
type configServer struct {
	mu         sync.Mutex
	namespaces []string
	creates    []map[string]string
}

func (cs *configServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch strings.TrimPrefix(r.URL.Path, "/config-server") {
	case "/namespace/list":
		_ = json.NewEncoder(w).Encode(map[string]any{"namespaces": cs.namespaces})
	case "/namespace/create":
		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		_ = json.Unmarshal(raw, &body)
		cs.creates = append(cs.creates, body)
		cs.namespaces = append(cs.namespaces, body["namespace"])
		_, _ = io.WriteString(w, `{"message":"created"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"no route"}`)
	}
}

func (cs *configServer) createCalls() []map[string]string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]map[string]string(nil), cs.creates...)
}

type testApp struct {
	engine  http.Handler
	backend *configServer
	cookie  *http.Cookie
	token   string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	backend := &configServer{namespaces: []string{"payments"}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Backend.BaseURL = srv.URL + "/config-server"
	cfg.Backend.Timeout = 2 * time.Second
	cfg.Storage.BasePath = t.TempDir()

	s, err := server.New(cfg)
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	deps, err := injectable.LoadDependencies(context.Background(), cfg)
	if err != nil {
		t.Fatalf("LoadDependencies() error = %v", err)
	}
	t.Cleanup(deps.Close)
	NewRouter(s, deps).RegisterRoutes()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "alice@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	sess, err := deps.Sessions.Open(context.Background(), &models.Credentials{
		Token: token,
		User:  &models.User{Username: "alice", Email: "alice@example.com"},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	return &testApp{
		engine:  s.Engine,
		backend: backend,
		cookie:  &http.Cookie{Name: middleware.CookieName, Value: sess.ID},
		token:   token,
	}
}

func (a *testApp) do(req *http.Request, withCookie bool) *httptest.ResponseRecorder {
	if withCookie {
		req.AddCookie(a.cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateNamespaceFromDashboard(t *testing.T) {
	app := newTestApp(t)

	w := app.do(postForm("/namespaces", url.Values{"namespace": {"qa-env"}}), true)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /namespaces status = %d, want 303; body: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	want := []map[string]string{{"namespace": "qa-env"}}
	if diff := cmp.Diff(want, app.backend.createCalls()); diff != "" {
		t.Errorf("create calls mismatch (-want +got):\n%s", diff)
	}

	w = app.do(httptest.NewRequest(http.MethodGet, "/", nil), true)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}
	body := w.Body.String()
	for _, s := range []string{"payments", "qa-env"} {
		if !strings.Contains(body, s) {
			t.Errorf("dashboard does not list %q", s)
		}
	}
}

func TestCreateNamespaceRejectsInvalidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"illegal characters", "qa env!"},
		{"too short", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			w := app.do(postForm("/namespaces", url.Values{"namespace": {tt.input}}), true)
			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", w.Code)
			}
			if n := len(app.backend.createCalls()); n != 0 {
				t.Errorf("backend received %d create calls, want 0", n)
			}
			// the create dialog is re-rendered with what the user typed
			if want := `name="namespace" value="` + tt.input + `"`; !strings.Contains(w.Body.String(), want) {
				t.Errorf("body does not keep the input %q", tt.input)
			}
		})
	}
}

func TestPagesRequireSession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/ns/payments/files", nil), false)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Errorf("Location = %q, want a /login redirect", loc)
	}
}

func TestAPIWithBearerToken(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/namespaces?q=PAY", nil)
	req.Header.Set("Authorization", "Bearer "+app.token)
	w := app.do(req, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Namespaces []string `json:"namespaces"`
		Total      int      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"payments"}, resp.Namespaces); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/v1/namespaces", nil), false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}
}

func TestPublicEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), false)
	if w.Code != http.StatusOK {
		t.Errorf("/healthz status = %d", w.Code)
	}

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil), false)
	if w.Code != http.StatusOK {
		t.Fatalf("/api/openapi.json status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/v1/namespaces/{namespace}/file") {
		t.Error("OpenAPI document is missing the file endpoint")
	}

	w = app.do(httptest.NewRequest(http.MethodGet, "/login", nil), false)
	if w.Code != http.StatusOK {
		t.Errorf("/login status = %d", w.Code)
	}
}

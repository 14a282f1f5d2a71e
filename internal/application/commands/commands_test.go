package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/application/service"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type backend struct {
	srv *httptest.Server

	mu     sync.Mutex
	routes map[string]string
	bodies map[string][]map[string]any
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{routes: make(map[string]string), bodies: make(map[string][]map[string]any)}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/config-server")
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		b.mu.Lock()
		b.bodies[path] = append(b.bodies[path], body)
		resp, ok := b.routes[path]
		b.mu.Unlock()

		if !ok {
			http.Error(w, "no route", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) on(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[path] = body
}

func (b *backend) calls(path string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[path]
}

type harness struct {
	t       *testing.T
	backend *backend
	config  string
	creds   string
}

// newHarness writes a config pointing at a fake backend. signedIn stores a
// valid token for ops@example.com.
func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()
	dir := t.TempDir()
	b := newBackend(t)
	h := &harness{
		t:       t,
		backend: b,
		config:  filepath.Join(dir, "config.yaml"),
		creds:   filepath.Join(dir, "credentials.json"),
	}
	cfg := fmt.Sprintf("backend:\n  base_url: %s/config-server\n  timeout: 2s\nauth:\n  credentials_file: %s\nstorage:\n  base_path: %s\n",
		b.srv.URL, h.creds, filepath.Join(dir, "exports"))
	if err := os.WriteFile(h.config, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if signedIn {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "ops@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		data, _ := json.Marshal(map[string]any{"authToken": tok, "user": map[string]string{"username": "ops"}})
		if err := os.WriteFile(h.creds, data, 0o600); err != nil {
			t.Fatalf("write credentials: %v", err)
		}
	}
	return h
}

// run executes the CLI with args and returns stdout, stderr and the error
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewCommandRegistry().WithIO(strings.NewReader(stdin), &out, &errOut).RegisterCLI()
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	argv := append([]string{"confdash", "--config", h.config}, args...)
	err := cmd.Run(context.Background(), argv)
	return out.String(), errOut.String(), err
}

func TestNamespaceListSearch(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/namespace/list", `["dev","payments","pay-later"]`)

	out, _, err := h.run("", "ns", "list", "--search", " PAY ")
	if err != nil {
		t.Fatalf("ns list error = %v", err)
	}
	lines := strings.Fields(out)
	if diff := cmp.Diff([]string{"payments", "pay-later"}, lines); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNamespaceListJSON(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/namespace/list", `{"namespaces":["dev","prod"]}`)

	out, _, err := h.run("", "--json", "ns", "list")
	if err != nil {
		t.Fatalf("ns list error = %v", err)
	}
	var got []string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if diff := cmp.Diff([]string{"dev", "prod"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNotSignedIn(t *testing.T) {
	h := newHarness(t, false)
	h.backend.on("/namespace/list", `[]`)

	_, _, err := h.run("", "ns", "list")
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("error = %v, want unauthorized", err)
	}
	if n := len(h.backend.calls("/namespace/list")); n != 0 {
		t.Errorf("backend list calls = %d, want 0", n)
	}
}

func TestNamespaceDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/namespace/delete", `{}`)

	if _, _, err := h.run("", "ns", "delete", "prod"); err == nil {
		t.Fatal("delete without --yes returned nil error")
	}
	if n := len(h.backend.calls("/namespace/delete")); n != 0 {
		t.Fatalf("delete calls = %d, want 0", n)
	}

	_, errOut, err := h.run("", "ns", "delete", "--yes", "prod")
	if err != nil {
		t.Fatalf("delete --yes error = %v", err)
	}
	calls := h.backend.calls("/namespace/delete")
	if len(calls) != 1 || calls[0]["namespace"] != "prod" {
		t.Errorf("delete bodies = %v", calls)
	}
	if errOut == "" {
		t.Error("no success notice printed")
	}
}

func TestFilePutSendsBaseCommit(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/config/fetch", `{"content":"replicas: 1\n","commitId":"c1"}`)
	h.backend.on("/config/update", `{"commitId":"c2"}`)

	out, _, err := h.run("replicas: 3\n", "files", "put", "--file", "-", "-m", "Scale api", "prod", "apps/api.yaml")
	if err != nil {
		t.Fatalf("files put error = %v", err)
	}
	if strings.TrimSpace(out) != "c2" {
		t.Errorf("output = %q, want c2", out)
	}

	calls := h.backend.calls("/config/update")
	if len(calls) != 1 {
		t.Fatalf("update calls = %d, want 1", len(calls))
	}
	want := map[string]any{
		"action":    "update",
		"appName":   "api.yaml",
		"namespace": "prod",
		"path":      "apps",
		"email":     "ops@example.com",
		"content":   "replicas: 3\n",
		"message":   "Scale api",
		"commitId":  "c1",
	}
	if diff := cmp.Diff(want, calls[0]); diff != "" {
		t.Errorf("update body mismatch (-want +got):\n%s", diff)
	}
}

func TestFilePutWithoutChanges(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/config/fetch", `{"content":"a: 1\n","commitId":"c1"}`)
	h.backend.on("/config/update", `{"commitId":"c2"}`)

	_, errOut, err := h.run("a: 1\n", "files", "put", "-f", "-", "prod", "a.yaml")
	if err != nil {
		t.Fatalf("files put error = %v", err)
	}
	if !strings.Contains(errOut, "No changes") {
		t.Errorf("stderr = %q, want a no changes notice", errOut)
	}
	if n := len(h.backend.calls("/config/update")); n != 0 {
		t.Errorf("update calls = %d, want 0", n)
	}
}

func TestFileCreateRejectsInvalidYAML(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/config/create", `{"commitId":"c1"}`)

	_, _, err := h.run("a: [1, 2\n", "files", "create", "-f", "-", "prod", "broken.yaml")
	if !apperrors.IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if n := len(h.backend.calls("/config/create")); n != 0 {
		t.Errorf("create calls = %d, want 0", n)
	}
}

func TestVaultSetWritesWholeMap(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/vault/get", `{"DB_USER":"app","DB_PASS":"hunter2"}`)
	h.backend.on("/vault/update", `{}`)

	if _, _, err := h.run("s3cret\n", "vault", "set", "prod", "API_KEY", "-"); err != nil {
		t.Fatalf("vault set error = %v", err)
	}
	calls := h.backend.calls("/vault/update")
	if len(calls) != 1 {
		t.Fatalf("update calls = %d, want 1", len(calls))
	}
	want := map[string]any{"DB_USER": "app", "DB_PASS": "hunter2", "API_KEY": "s3cret"}
	if diff := cmp.Diff(want, calls[0]["secrets"]); diff != "" {
		t.Errorf("secrets mismatch (-want +got):\n%s", diff)
	}
	if calls[0]["message"] != "Add secret API_KEY" {
		t.Errorf("message = %v", calls[0]["message"])
	}
}

func TestVaultListMasksValues(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/vault/get", `{"secrets":{"DB_PASS":"hunter2"}}`)

	out, _, err := h.run("", "vault", "list", "prod")
	if err != nil {
		t.Fatalf("vault list error = %v", err)
	}
	if strings.Contains(out, "hunter2") || !strings.Contains(out, service.MaskedValue) {
		t.Errorf("masked output = %q", out)
	}

	out, _, err = h.run("", "vault", "list", "--reveal", "prod")
	if err != nil {
		t.Fatalf("vault list --reveal error = %v", err)
	}
	if !strings.Contains(out, "hunter2") {
		t.Errorf("revealed output = %q", out)
	}
}

func TestVaultRemoveUnknownKey(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/vault/get", `{"A":"1"}`)
	h.backend.on("/vault/update", `{}`)

	_, _, err := h.run("", "vault", "rm", "prod", "B")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
	if n := len(h.backend.calls("/vault/update")); n != 0 {
		t.Errorf("update calls = %d, want 0", n)
	}
}

func TestRequireArgs(t *testing.T) {
	h := newHarness(t, true)

	_, _, err := h.run("", "files", "cat", "prod")
	if err == nil || !strings.Contains(err.Error(), "<namespace> <path>") {
		t.Fatalf("error = %v, want usage", err)
	}
}

func TestExportWritesFiles(t *testing.T) {
	h := newHarness(t, true)
	h.backend.on("/namespace/files", `["app.yaml"]`)
	h.backend.on("/config/fetch", `{"content":"a: 1\n","commitId":"c1"}`)

	out, _, err := h.run("", "export", "prod")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "Exported 1 files to prod/") {
		t.Errorf("output = %q", out)
	}
}

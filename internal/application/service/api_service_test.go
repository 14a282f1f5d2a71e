package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/configserver"
	"github.com/bravo68web/confdash/internal/validation"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

func TestCreateNamespaceSendsOneRequestThenRefetches(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/namespace/create", http.StatusOK, `{"message":"Namespace qa-env created"}`)
	fb.on("/namespace/list", http.StatusOK, `["dev","qa-env"]`)
	api, rec := newTestAPI(t, fb)

	list := NewNamespaceList(api)
	if err := list.Create(context.Background(), "qa-env"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	creates := fb.calls("/namespace/create")
	if len(creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(creates))
	}
	if diff := cmp.Diff(map[string]any{"namespace": "qa-env"}, creates[0].Body); diff != "" {
		t.Errorf("create body mismatch (-want +got):\n%s", diff)
	}
	if creates[0].Auth != "Bearer test-token" {
		t.Errorf("Authorization = %q", creates[0].Auth)
	}
	if creates[0].Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", creates[0].Method)
	}
	if n := len(fb.calls("/namespace/list")); n != 1 {
		t.Errorf("list calls = %d, want 1", n)
	}
	if diff := cmp.Diff([]string{"dev", "qa-env"}, list.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	got := rec.All()
	if len(got) != 1 || got[0].Severity != models.SeveritySuccess || got[0].Message != "Namespace qa-env created" {
		t.Errorf("notifications = %+v", got)
	}
}

func TestCreateNamespaceValidationSendsNothing(t *testing.T) {
	tests := []struct {
		name string
		ns   string
	}{
		{"too short", "ab"},
		{"bad characters", "qa env!"},
		{"empty", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			api, rec := newTestAPI(t, fb)

			err := api.CreateNamespace(context.Background(), tt.ns)
			if !apperrors.IsValidation(err) {
				t.Fatalf("CreateNamespace(%q) error = %v, want validation error", tt.ns, err)
			}
			if fb.total() != 0 {
				t.Errorf("backend received %d requests, want 0", fb.total())
			}
			got := rec.All()
			if len(got) != 1 || got[0].Severity != models.SeverityWarning {
				t.Errorf("notifications = %+v, want one warning", got)
			}
		})
	}
}

func TestHTTPErrorIsNotified(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/namespace/delete", http.StatusForbidden, `{"error":{"message":"Admins only"}}`)
	api, rec := newTestAPI(t, fb)

	err := api.DeleteNamespace(context.Background(), "prod")
	if apperrors.Status(err) != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (err = %v)", apperrors.Status(err), err)
	}
	got := rec.All()
	if len(got) != 1 || got[0].Severity != models.SeverityError || got[0].Message != "Admins only" {
		t.Errorf("notifications = %+v", got)
	}
}

func TestConnectionErrorIsNotified(t *testing.T) {
	fb := newFakeBackend(t)
	api, rec := newTestAPI(t, fb)
	fb.srv.Close()

	_, err := api.ListNamespaces(context.Background())
	if !apperrors.IsConnection(err) {
		t.Fatalf("error = %v, want connection error", err)
	}
	got := rec.All()
	if len(got) != 1 || got[0].Message != apperrors.ConnectionMessage {
		t.Errorf("notifications = %+v", got)
	}
}

func TestListNamespacesShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"bare array", `["a","b"]`, []string{"a", "b"}},
		{"wrapped", `{"namespaces":["a"]}`, []string{"a"}},
		{"data", `{"data":{"namespaces":["x","y"]}}`, []string{"x", "y"}},
		{"empty", ``, []string{}},
		{"null", `null`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.on("/namespace/list", http.StatusOK, tt.body)
			api, _ := newTestAPI(t, fb)

			got, err := api.ListNamespaces(context.Background())
			if err != nil {
				t.Fatalf("ListNamespaces() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListFilesMarksDirectories(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/namespace/files", http.StatusOK, `["app.yaml","services/"]`)
	api, _ := newTestAPI(t, fb)

	entries, err := api.ListFiles(context.Background(), "dev", "/")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(entries) != 2 || entries[0].IsDir() || !entries[1].IsDir() {
		t.Fatalf("entries = %+v", entries)
	}
	body := fb.calls("/namespace/files")[0].Body
	if body["path"] != "" || body["namespace"] != "dev" {
		t.Errorf("body = %v", body)
	}
}

func TestFetchFile(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.FileContent
	}{
		{"json", `{"content":"a: 1\n","commitId":"abc123"}`, models.FileContent{Content: "a: 1\n", CommitID: "abc123"}},
		{"snake case", `{"content":"a: 1\n","commit_id":"abc123"}`, models.FileContent{Content: "a: 1\n", CommitID: "abc123"}},
		{"wrapped", `{"data":{"content":"b","commitId":"c1"}}`, models.FileContent{Content: "b", CommitID: "c1"}},
		{"plain text", "key: value\n", models.FileContent{Content: "key: value\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.on("/config/fetch", http.StatusOK, tt.body)
			api, _ := newTestAPI(t, fb)

			ref := models.FileRef{Namespace: "dev", Path: "services", Name: "app.yaml"}
			got, err := api.FetchFile(context.Background(), ref, "dev@example.com")
			if err != nil {
				t.Fatalf("FetchFile() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}

			body := fb.calls("/config/fetch")[0].Body
			want := map[string]any{
				"action":    configserver.ActionFetch,
				"appName":   "app.yaml",
				"namespace": "dev",
				"path":      "services",
				"email":     "dev@example.com",
			}
			if diff := cmp.Diff(want, body); diff != "" {
				t.Errorf("request body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateFileRejectsInvalidYAML(t *testing.T) {
	fb := newFakeBackend(t)
	api, rec := newTestAPI(t, fb)

	_, err := api.UpdateFile(context.Background(), UpdateInput{
		Ref:      models.FileRef{Namespace: "dev", Name: "app.yaml"},
		Content:  "a: [1, 2",
		Message:  "break it",
		CommitID: "abc123",
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if fb.total() != 0 {
		t.Errorf("backend received %d requests, want 0", fb.total())
	}
	if got := rec.All(); len(got) != 1 || got[0].Severity != models.SeverityWarning {
		t.Errorf("notifications = %+v", got)
	}
}

func TestUpdateFileRequiresMessage(t *testing.T) {
	fb := newFakeBackend(t)
	api, _ := newTestAPI(t, fb)

	_, err := api.UpdateFile(context.Background(), UpdateInput{
		Ref:     models.FileRef{Namespace: "dev", Name: "notes.txt"},
		Content: "anything",
		Message: "  ",
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if fb.total() != 0 {
		t.Errorf("backend received %d requests, want 0", fb.total())
	}
}

func TestFileHistoryAndChanges(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/config/history", http.StatusOK,
		`{"history":[{"hash":"abcdef123456","commitMessage":"init","author":"ana","date":"2024-01-02"}]}`)
	fb.on("/config/changes", http.StatusOK, `{"diff":"@@ -1 +1 @@\n-a\n+b\n"}`)
	api, _ := newTestAPI(t, fb)
	ref := models.FileRef{Namespace: "dev", Name: "app.yaml"}

	history, err := api.FileHistory(context.Background(), ref)
	if err != nil {
		t.Fatalf("FileHistory() error = %v", err)
	}
	want := []models.Commit{{CommitID: "abcdef123456", Message: "init", Author: "ana", Date: "2024-01-02"}}
	if diff := cmp.Diff(want, history); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if history[0].ShortID() != "abcdef1" {
		t.Errorf("ShortID() = %q", history[0].ShortID())
	}

	text, err := api.FileChanges(context.Background(), ref, "abcdef123456")
	if err != nil {
		t.Fatalf("FileChanges() error = %v", err)
	}
	if text != "@@ -1 +1 @@\n-a\n+b\n" {
		t.Errorf("FileChanges() = %q", text)
	}
	if got := fb.calls("/config/changes")[0].Body["commitId"]; got != "abcdef123456" {
		t.Errorf("commitId sent = %v", got)
	}
}

func TestGetVaultSecretsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.Secrets
	}{
		{"bare", `{"A":"1","B":"2"}`, models.Secrets{"A": "1", "B": "2"}},
		{"wrapped", `{"secrets":{"A":"1"},"namespace":"dev"}`, models.Secrets{"A": "1"}},
		{"non string", `{"PORT":5432,"DEBUG":true}`, models.Secrets{"PORT": "5432", "DEBUG": "true"}},
		{"empty", `{}`, models.Secrets{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.on("/vault/get", http.StatusOK, tt.body)
			api, _ := newTestAPI(t, fb)

			got, err := api.GetVaultSecrets(context.Background(), "dev", "")
			if err != nil {
				t.Fatalf("GetVaultSecrets() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoginSendsForm(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/auth/login", http.StatusOK, `{"token":"jwt-token","user":{"username":"ana","email":"ana@example.com"}}`)
	client := configserver.New(&config.BackendConfig{BaseURL: fb.srv.URL + "/config-server", Timeout: 0})
	api := NewAPIService(client, validation.New(3, 63), nil)

	creds, err := api.Login(context.Background(), "ana", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if creds.Token != "jwt-token" || creds.User.Email != "ana@example.com" {
		t.Errorf("credentials = %+v", creds)
	}

	call := fb.calls("/auth/login")[0]
	if call.Form.Get("username") != "ana" || call.Form.Get("password") != "hunter2" {
		t.Errorf("form = %v", call.Form)
	}
	if call.Auth != "" {
		t.Errorf("login sent Authorization %q", call.Auth)
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/auth/login", http.StatusOK, `{"user":{"username":"ana"}}`)
	api, rec := newTestAPI(t, fb)

	if _, err := api.Login(context.Background(), "ana", "pw"); err == nil {
		t.Fatal("Login() error = nil, want error")
	}
	if got := rec.All(); len(got) != 1 || got[0].Severity != models.SeverityError {
		t.Errorf("notifications = %+v", got)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"valid", http.StatusOK, `{"valid":true,"user":{"username":"ana"}}`, false},
		{"plain ok", http.StatusOK, `OK`, false},
		{"invalid flag", http.StatusOK, `{"valid":false}`, true},
		{"unauthorized", http.StatusUnauthorized, `{"message":"Token expired"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.on("/auth/verify", tt.status, tt.body)
			api, rec := newTestAPI(t, fb)

			_, err := api.Verify(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !apperrors.IsUnauthorized(err) {
				t.Errorf("Verify() error = %v, want unauthorized", err)
			}
			if n := len(rec.All()); n != 0 {
				t.Errorf("Verify() produced %d notifications, want 0", n)
			}
		})
	}
}

func TestListEventsAndNotifications(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("/events/list", http.StatusOK,
		`[{"commitId":"c1","author":"ana","commitMessage":"tune pool","date":"2024-03-01"}]`)
	fb.on("/notify/list", http.StatusOK,
		`{"notifications":[{"id":"n1","status":"delivered","initiatedTime":"2024-03-01T10:00:00Z"}]}`)
	api, _ := newTestAPI(t, fb)

	events, err := api.ListEvents(context.Background(), "dev")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if diff := cmp.Diff([]models.Event{{CommitID: "c1", Author: "ana", CommitMessage: "tune pool", Date: "2024-03-01"}}, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	records, err := api.ListNotifications(context.Background(), "dev")
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(records) != 1 || records[0].Status != "delivered" {
		t.Errorf("records = %+v", records)
	}
}

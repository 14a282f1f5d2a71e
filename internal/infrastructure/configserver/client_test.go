package configserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bravo68web/confdash/internal/config"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(&config.BackendConfig{BaseURL: srv.URL + "/config-server/", Timeout: time.Second})
}

func TestDoSendsJSONWithBearer(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["dev","prod"]`))
	})

	var out []string
	_, err := c.Do(context.Background(), Request{
		Endpoint: EndpointNamespaceFiles,
		Token:    "tok",
		Body:     map[string]string{"namespace": "dev"},
	}, &out)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if gotPath != "/config-server/namespace/files" {
		t.Errorf("path = %q, want /config-server/namespace/files", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotType)
	}
	if gotBody["namespace"] != "dev" {
		t.Errorf("body namespace = %q, want dev", gotBody["namespace"])
	}
	if len(out) != 2 || out[0] != "dev" {
		t.Errorf("out = %v", out)
	}
}

func TestDoSendsForm(t *testing.T) {
	var user, pass, gotType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		user, pass = r.PostForm.Get("username"), r.PostForm.Get("password")
		_, _ = w.Write([]byte(`{"token":"t"}`))
	})

	_, err := c.Do(context.Background(), Request{
		Endpoint: EndpointAuthLogin,
		Form:     map[string]string{"username": "alice", "password": "s3cret"},
	}, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if user != "alice" || pass != "s3cret" {
		t.Errorf("form = %q/%q", user, pass)
	}
}

func TestDoHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"commit id is stale"}`))
	})

	_, err := c.Do(context.Background(), Request{Endpoint: EndpointConfigUpdate}, nil)
	if err == nil {
		t.Fatal("Do() error = nil, want conflict")
	}
	if got := apperrors.Status(err); got != http.StatusConflict {
		t.Errorf("Status() = %d, want 409", got)
	}
	if got := apperrors.Message(err); got != "commit id is stale" {
		t.Errorf("Message() = %q", got)
	}
	if apperrors.IsConnection(err) {
		t.Error("HTTP error classified as connection error")
	}
}

func TestDoConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(&config.BackendConfig{BaseURL: url, Timeout: time.Second})
	_, err := c.Do(context.Background(), Request{Endpoint: EndpointNamespaceList}, nil)
	if !apperrors.IsConnection(err) {
		t.Fatalf("err = %v, want connection error", err)
	}
	if got := apperrors.Message(err); got != apperrors.ConnectionMessage {
		t.Errorf("Message() = %q", got)
	}
}

func TestDoTimeoutIsConnectionError(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := New(&config.BackendConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Endpoint: EndpointNamespaceList}, nil)
	if !apperrors.IsConnection(err) {
		t.Fatalf("err = %v, want connection error", err)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 400, `{"message":"namespace exists"}`, "namespace exists"},
		{"error field", 400, `{"error":"bad path"}`, "bad path"},
		{"nested error", 500, `{"error":{"message":"disk full"}}`, "disk full"},
		{"detail field", 422, `{"detail":"missing appName"}`, "missing appName"},
		{"json string", 400, `"plain json string"`, "plain json string"},
		{"text body", 500, "backend exploded\n", "backend exploded"},
		{"empty body", 404, "", "Request failed with status 404 (Not Found)"},
		{"html body", 502, "<html>bad gateway</html>", "Request failed with status 502 (Bad Gateway)"},
		{"json without message", 500, `{"code":1}`, "Request failed with status 500 (Internal Server Error)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

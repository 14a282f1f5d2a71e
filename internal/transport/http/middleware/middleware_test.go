package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bravo68web/confdash/pkg/logger"
)

func observed() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewWithCore(&logger.Config{}, core), logs
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := observed()

	e := gin.New()
	e.Use(AccessLog(log))
	e.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/api/v1/namespaces/:namespace/vault", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("quiet path did not get a request id")
	}
	if logs.Len() != 0 {
		t.Fatalf("quiet path logged %d entries", logs.Len())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/namespaces/payments/vault?reveal=true", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", got)
	}
	entries := logs.AllUntimed()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["namespace"] != "payments" {
		t.Errorf("namespace = %v", fields["namespace"])
	}
	if fields["revealed"] != true {
		t.Errorf("revealed = %v", fields["revealed"])
	}
	if _, ok := fields["query"]; ok {
		t.Error("reveal query logged verbatim")
	}
}

func TestRecover(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := observed()

	e := gin.New()
	e.Use(Recover(log, func(c *gin.Context, status int, message string) {
		c.String(status, "page: "+message)
	}))
	boom := func(*gin.Context) { panic("boom") }
	e.GET("/api/v1/namespaces", boom)
	e.GET("/ns/payments", boom)

	tests := []struct {
		path     string
		wantBody string
	}{
		{"/api/v1/namespaces", `"error":"internal_server_error"`},
		{"/ns/payments", "page: Something went wrong"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", tt.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), tt.wantBody) {
			t.Errorf("%s body = %q, want it to contain %q", tt.path, w.Body.String(), tt.wantBody)
		}
	}
	if n := logs.FilterMessage("Panic recovered").Len(); n != 2 {
		t.Errorf("logged %d panics, want 2", n)
	}
}

package validation

import (
	"strings"
	"testing"

	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

func TestNamespace(t *testing.T) {
	v := New(3, 10)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", true},
		{"exactly min", "abc", false},
		{"exactly max", "abcdefghij", false},
		{"below min", "ab", true},
		{"above max", "abcdefghijk", true},
		{"mixed charset", "Prod_eu-1", false},
		{"space", "prod eu", true},
		{"dot", "prod.eu", true},
		{"slash", "prod/eu", true},
		{"unicode", "prodé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Namespace(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Namespace(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !apperrors.IsValidation(err) {
				t.Errorf("Namespace(%q) error is not a validation error: %v", tt.input, err)
			}
		})
	}
}

func TestNamespaceMessages(t *testing.T) {
	v := New(3, 5)

	if msg := apperrors.Message(v.Namespace("ab")); !strings.Contains(msg, "at least 3") {
		t.Errorf("short message = %q", msg)
	}
	if msg := apperrors.Message(v.Namespace("abcdef")); !strings.Contains(msg, "at most 5") {
		t.Errorf("long message = %q", msg)
	}
	if msg := apperrors.Message(v.Namespace("a b c")); !strings.Contains(msg, "letters, numbers") {
		t.Errorf("charset message = %q", msg)
	}
}

func TestCommitMessage(t *testing.T) {
	v := New(1, 10)
	if err := v.CommitMessage("   "); err == nil {
		t.Error("CommitMessage(blank) = nil, want error")
	}
	if err := v.CommitMessage("bump replicas"); err != nil {
		t.Errorf("CommitMessage() = %v", err)
	}
}

func TestFileName(t *testing.T) {
	v := New(1, 10)
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := v.FileName(bad); err == nil {
			t.Errorf("FileName(%q) = nil, want error", bad)
		}
	}
	if err := v.FileName("app.yaml"); err != nil {
		t.Errorf("FileName(app.yaml) = %v", err)
	}
}

func TestSecretKey(t *testing.T) {
	v := New(1, 10)
	for _, bad := range []string{"", " ", "A B", "A=B"} {
		if err := v.SecretKey(bad); err == nil {
			t.Errorf("SecretKey(%q) = nil, want error", bad)
		}
	}
	if err := v.SecretKey("DB_PASSWORD"); err != nil {
		t.Errorf("SecretKey(DB_PASSWORD) = %v", err)
	}
}

func TestYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty", "", false},
		{"mapping", "server:\n  port: 8080\n", false},
		{"multi document", "a: 1\n---\nb: 2\n", false},
		{"bad indent", "server:\n  port: 8080\n bad: x\n", true},
		{"unclosed flow", "list: [1, 2\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := YAML(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("YAML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsYAML(t *testing.T) {
	if !IsYAML("app.YML") || !IsYAML("app.yaml") {
		t.Error("IsYAML rejected a yaml extension")
	}
	if IsYAML("app.properties") {
		t.Error("IsYAML accepted .properties")
	}
}

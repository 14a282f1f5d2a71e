package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
)

func TestStatusLineExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStatusLine(5 * time.Second)
	s.now = func() time.Time { return now }

	if _, ok := s.Current(); ok {
		t.Fatal("new status line has a notification")
	}

	s.Notify(models.Notification{Severity: models.SeverityError, Message: "Cannot connect"})
	n, ok := s.Current()
	if !ok || n.Message != "Cannot connect" {
		t.Fatalf("Current() = %+v, %v", n, ok)
	}
	if !strings.Contains(s.View(), "Cannot connect") {
		t.Errorf("View() = %q", s.View())
	}

	now = now.Add(5 * time.Second)
	if _, ok := s.Current(); ok {
		t.Error("notification still shown after ttl")
	}
	if s.View() != "" {
		t.Errorf("View() after ttl = %q", s.View())
	}
}

func TestStatusLineReplaces(t *testing.T) {
	s := NewStatusLine(time.Minute)
	s.Notify(models.Notification{Severity: models.SeverityInfo, Message: "first"})
	s.Notify(models.Notification{Severity: models.SeveritySuccess, Message: "second"})
	n, _ := s.Current()
	if n.Message != "second" {
		t.Errorf("Current().Message = %q, want second", n.Message)
	}
	s.Clear()
	if _, ok := s.Current(); ok {
		t.Error("Clear() left a notification")
	}
}
